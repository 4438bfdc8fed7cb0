package liquet

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/quicksilt/liquet/parser"
)

// DiskStore resolves templates straight from the filesystem, reading
// and parsing the source on every call. Edits to template files take
// effect immediately, which makes it the store of choice during
// development.
type DiskStore struct {
	logger *slog.Logger
	root   string
	ext    string
}

// NewDiskStore creates a store over the configured template root. A
// nil logger falls back to slog.Default.
func NewDiskStore(logger *slog.Logger, cfg Config) *DiskStore {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &DiskStore{logger: logger, root: cfg.Root, ext: cfg.Extension}
}

func (d *DiskStore) path(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(name)+d.ext)
}

// Get reads and parses the named template. The source is never cached.
func (d *DiskStore) Get(name string) (*parser.Template, error) {
	source, err := os.ReadFile(d.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewError(ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("reading template %s: %w", name, err)
	}
	tmpl, perr := parser.Parse(string(source), name, tagParsers())
	if perr != nil {
		return nil, fromParseError(perr)
	}
	return tmpl, nil
}

// RenderNamed resolves name and renders it with the given data.
func (d *DiskStore) RenderNamed(name string, data map[string]any, opts *Options) (string, error) {
	return renderNamed(d, name, data, opts)
}

// Names walks the template root and lists every resolvable template
// name, sorted. Like Get, the walk happens fresh on every call.
func (d *DiskStore) Names() []string {
	names, err := discoverNames(d.root, d.ext)
	if err != nil {
		d.logger.Warn("listing templates", "root", d.root, "error", err)
		return nil
	}
	return names
}

// SaveTemplate validates source and writes it under name, creating
// parent directories as needed. The write is atomic: readers never see
// a half-written template, and a template that fails to parse is never
// written at all.
func (d *DiskStore) SaveTemplate(name, source string) error {
	if _, err := parser.Parse(source, name, tagParsers()); err != nil {
		return fromParseError(err)
	}
	path := d.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating template directory: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(source)); err != nil {
		return fmt.Errorf("writing template %s: %w", name, err)
	}
	d.logger.Info("saved template", "name", name, "bytes", len(source))
	return nil
}

// discoverNames walks root collecting the slash-separated template
// names of every file carrying ext.
func discoverNames(root, ext string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(path, ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), ext))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
