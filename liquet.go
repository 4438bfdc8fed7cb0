// Package liquet is a small HTML template engine with a Liquid-style
// surface syntax.
//
// Templates interleave raw output with {{ variable }} interpolation,
// {% for %} loops, {% if %} conditionals and a fixed set of custom
// tags for server-rendered pages: csrf_token, get, html and slot.
// Variable bindings live in isolated tiers (caller data, loop
// bindings, control values) that never bleed into each other.
//
// Parsed templates come out of a Store. DiskStore re-reads sources on
// every render for development; MemoryStore precompiles everything
// once for production. Engine layers layout composition on top.
//
//	cfg := liquet.DefaultConfig()
//	store, err := liquet.NewMemoryStore(nil, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	eng := liquet.NewEngine(store, cfg, session.CsrfToken)
//	html, err := eng.RenderPage("posts/index", map[string]any{
//		"posts": posts,
//	})
package liquet

import "github.com/quicksilt/liquet/parser"

// Version is the current version of the liquet library.
const Version = "0.4.1"

// Render parses source as a one-off template and renders it with the
// given data. Templates using the slot tag need a store and must go
// through one of the Store implementations instead.
func Render(source string, data map[string]any) (string, error) {
	tmpl, err := parser.Parse(source, "<string>", tagParsers())
	if err != nil {
		return "", fromParseError(err)
	}
	return renderTemplate(tmpl, NewContext(data), &Options{})
}
