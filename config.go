package liquet

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Config holds the engine settings shared by stores and page
// rendering.
type Config struct {
	// Root is the directory holding template sources.
	Root string `yaml:"root"`

	// Extension is the filename suffix identifying template sources,
	// including the leading dot.
	Extension string `yaml:"extension"`

	// DefaultLayout names the layout template page rendering wraps
	// bodies in when no layout is given explicitly.
	DefaultLayout string `yaml:"default_layout"`

	// SiteTitle seeds the conventional title binding when the caller
	// does not supply one.
	SiteTitle string `yaml:"site_title"`

	// BasePath seeds the conventional basePath binding used by
	// templates to build absolute links.
	BasePath string `yaml:"base_path"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Root:          "templates",
		Extension:     ".liquid",
		DefaultLayout: "layouts/app",
		BasePath:      "/",
	}
}

// withDefaults fills zero-valued fields from DefaultConfig and
// normalizes the extension to carry its leading dot.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Root == "" {
		c.Root = d.Root
	}
	if c.Extension == "" {
		c.Extension = d.Extension
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	if c.DefaultLayout == "" {
		c.DefaultLayout = d.DefaultLayout
	}
	if c.BasePath == "" {
		c.BasePath = d.BasePath
	}
	return c
}

// LoadConfig reads a YAML configuration file and applies defaults to
// any fields it leaves unset.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

// WriteDefaultConfig writes a starter configuration file atomically.
func WriteDefaultConfig(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
