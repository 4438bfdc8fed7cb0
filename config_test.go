package liquet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Root != "templates" || cfg.Extension != ".liquid" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.DefaultLayout != "layouts/app" {
		t.Errorf("unexpected default layout %q", cfg.DefaultLayout)
	}
}

func TestWithDefaultsFillsZeroFields(t *testing.T) {
	got := Config{Root: "views"}.withDefaults()
	want := Config{
		Root:          "views",
		Extension:     ".liquid",
		DefaultLayout: "layouts/app",
		BasePath:      "/",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestWithDefaultsNormalizesExtension(t *testing.T) {
	got := Config{Extension: "html"}.withDefaults()
	if got.Extension != ".html" {
		t.Errorf("expected leading dot, got %q", got.Extension)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liquet.yaml")
	source := "root: views\nsite_title: Example\nbase_path: /app/\n"
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	want := Config{
		Root:          "views",
		Extension:     ".liquid",
		DefaultLayout: "layouts/app",
		SiteTitle:     "Example",
		BasePath:      "/app/",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liquet.yaml")
	if err := os.WriteFile(path, []byte("root: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestWriteDefaultConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liquet.yaml")
	if err := WriteDefaultConfig(path); err != nil {
		t.Fatalf("write error: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
