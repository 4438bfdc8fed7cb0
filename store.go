package liquet

import "github.com/quicksilt/liquet/parser"

// Store resolves template names to parsed templates. The two
// implementations trade freshness for speed: DiskStore re-reads the
// source on every resolution, MemoryStore serves a cache built once at
// startup.
type Store interface {
	// Get returns the parsed template registered under name. The error
	// satisfies IsNotFound when no such template exists.
	Get(name string) (*parser.Template, error)

	// RenderNamed resolves name and renders it with the given data.
	RenderNamed(name string, data map[string]any, opts *Options) (string, error)

	// Names lists the template names the store can currently resolve,
	// sorted.
	Names() []string
}

// renderNamed is the shared RenderNamed implementation. It threads the
// store into the render options so slot composition can resolve
// further templates.
func renderNamed(s Store, name string, data map[string]any, opts *Options) (string, error) {
	tmpl, err := s.Get(name)
	if err != nil {
		return "", err
	}
	return renderTemplate(tmpl, NewContext(data), opts.withStore(s))
}
