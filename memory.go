package liquet

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/quicksilt/liquet/parser"
)

// MemoryStore serves templates from an immutable cache built once at
// construction. After the build no filesystem access happens on the
// render path, which makes it the store of choice in production.
type MemoryStore struct {
	templates map[string]*parser.Template
	names     []string
}

// NewMemoryStore walks the configured template root, parses every
// template it finds and publishes the result as an immutable cache.
// Any single template failing to parse aborts the whole build; a
// partially populated cache is never observable.
func NewMemoryStore(logger *slog.Logger, cfg Config) (*MemoryStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	names, err := discoverNames(cfg.Root, cfg.Extension)
	if err != nil {
		return nil, fmt.Errorf("scanning template root %s: %w", cfg.Root, err)
	}

	templates := make(map[string]*parser.Template, len(names))
	for _, name := range names {
		path := filepath.Join(cfg.Root, filepath.FromSlash(name)+cfg.Extension)
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", name, err)
		}
		tmpl, perr := parser.Parse(string(source), name, tagParsers())
		if perr != nil {
			return nil, fromParseError(perr)
		}
		templates[name] = tmpl
	}

	logger.Info("precompiled templates", "root", cfg.Root, "count", len(names))
	return &MemoryStore{templates: templates, names: names}, nil
}

// Get returns the cached template registered under name. The
// not-found error lists the names the store does know.
func (m *MemoryStore) Get(name string) (*parser.Template, error) {
	tmpl, ok := m.templates[name]
	if !ok {
		return nil, NewError(ErrTemplateNotFound,
			fmt.Sprintf("%s (known templates: %s)", name, strings.Join(m.names, ", ")))
	}
	return tmpl, nil
}

// RenderNamed resolves name and renders it with the given data.
func (m *MemoryStore) RenderNamed(name string, data map[string]any, opts *Options) (string, error) {
	return renderNamed(m, name, data, opts)
}

// Names lists the cached template names, sorted.
func (m *MemoryStore) Names() []string {
	return append([]string(nil), m.names...)
}
