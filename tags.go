package liquet

import (
	"fmt"
	"regexp"

	"github.com/quicksilt/liquet/parser"
)

// Tag is a custom grammar extension point: a compile-time parse step
// that validates an invocation and produces a spec, and a render step
// that turns the spec into output text. Tag output is spliced into the
// surrounding template verbatim; the renderer applies no further
// escaping, so each tag owns its own escaping contract.
type Tag interface {
	Parse(call *parser.TagCall) (any, error)
	Render(spec any, ctx *Context, opts *Options) (string, error)
}

// builtinTags is the static tag registry consulted by both the parser
// and the renderer. It is built once at package init and never
// mutated.
var builtinTags = map[string]Tag{
	"csrf_token": csrfTokenTag{},
	"get":        accessorTag{escape: false},
	"html":       accessorTag{escape: true},
	"slot":       slotTag{},
}

// tagParsers adapts the registry into the parser's callback table.
func tagParsers() map[string]parser.TagParser {
	parsers := make(map[string]parser.TagParser, len(builtinTags))
	for name, tag := range builtinTags {
		parsers[name] = tag.Parse
	}
	return parsers
}

// --- csrf_token ---

// csrfTokenTag emits a hidden input carrying the session's
// anti-forgery token. The token value is always attribute-escaped,
// whatever its alphabet.
type csrfTokenTag struct{}

func (csrfTokenTag) Parse(call *parser.TagCall) (any, error) {
	if call.Path != nil || call.HasLiteral || len(call.Args) > 0 {
		return nil, fmt.Errorf("takes no arguments")
	}
	return nil, nil
}

func (csrfTokenTag) Render(_ any, _ *Context, opts *Options) (string, error) {
	if opts == nil || opts.CsrfToken == nil {
		return "", NewError(ErrInvalidOperation, "csrf_token: no token source configured")
	}
	token := EscapeHTML(opts.CsrfToken())
	return `<input type="hidden" name="_csrf_token" value="` + token + `">`, nil
}

// --- get / html ---

// accessorSpec is the parse result of a get or html invocation.
type accessorSpec struct {
	path []string
	at   string
}

// accessorTag reads a field out of a record bound in the iteration
// vars. The dotted path does not index into the record directly: it is
// first resolved inside the iteration vars to obtain the field key to
// use, and only that resolved key indexes the record. The path says
// which field name to read, sourced from loop context.
type accessorTag struct {
	escape bool
}

func (accessorTag) Parse(call *parser.TagCall) (any, error) {
	if call.HasLiteral {
		return nil, fmt.Errorf("expects a field path, not a string literal")
	}
	if call.Path == nil {
		return nil, fmt.Errorf("missing field path argument")
	}
	at, ok := call.Args["at"]
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", "at")
	}
	for key := range call.Args {
		if key != "at" {
			return nil, fmt.Errorf("unexpected argument %q", key)
		}
	}
	return accessorSpec{path: call.Path, at: at}, nil
}

func (t accessorTag) Render(spec any, ctx *Context, _ *Options) (string, error) {
	s := spec.(accessorSpec)

	target, ok := ctx.IterationVars[s.at]
	if !ok {
		return "", NewError(ErrMissingBinding, fmt.Sprintf("no such tag argument %q", s.at))
	}
	record, ok := target.(map[string]any)
	if !ok {
		return "", NewError(ErrInvalidOperation, fmt.Sprintf("tag argument %q is not a record", s.at))
	}

	// A bare key is used directly; a dotted path resolves inside the
	// iteration vars to the field key. Unresolvable paths read as the
	// empty key and fall through to the empty value.
	var prop string
	if len(s.path) == 1 {
		prop = s.path[0]
	} else {
		prop, _ = ctx.lookupIteration(s.path).(string)
	}

	out, err := formatValue(record[prop], t.escape)
	if err != nil {
		return "", err
	}

	// get compiles a literal search string case-insensitively; html
	// applies an already compiled pattern after escaping.
	if t.escape {
		re, _ := ctx.CounterVars["highlight"].(*regexp.Regexp)
		out = highlightPattern(out, re)
	} else {
		needle, _ := ctx.CounterVars["searchText"].(string)
		out = highlightLiteral(out, needle)
	}
	return out, nil
}

// --- slot ---

// slotSpec is the parse result of a slot invocation.
type slotSpec struct {
	key string
}

// slotTag defers to a caller-supplied sub-template at render time. The
// positional argument names a counter-var key to pop, not a template:
// when the key is bound, its SlotContent says which template fills the
// slot and with what data; when absent the literal name itself is
// rendered with empty data. This lets a layout declare a slot without
// compile-time knowledge of which template fills it.
type slotTag struct{}

func (slotTag) Parse(call *parser.TagCall) (any, error) {
	if len(call.Args) > 0 {
		return nil, fmt.Errorf("takes no named arguments")
	}
	switch {
	case call.HasLiteral:
		return slotSpec{key: call.Literal}, nil
	case len(call.Path) == 1:
		return slotSpec{key: call.Path[0]}, nil
	case len(call.Path) > 1:
		return nil, fmt.Errorf("slot name must be a plain identifier or string")
	default:
		return nil, fmt.Errorf("missing slot name argument")
	}
}

func (slotTag) Render(spec any, ctx *Context, opts *Options) (string, error) {
	s := spec.(slotSpec)
	if opts == nil || opts.Store == nil {
		return "", NewError(ErrInvalidOperation, fmt.Sprintf("slot %q: no template store configured", s.key))
	}

	name := s.key
	data := map[string]any{}
	var counters map[string]any

	if v, remaining, ok := ctx.popCounterVar(s.key); ok {
		content, ok := v.(SlotContent)
		if !ok {
			return "", NewError(ErrInvalidOperation, fmt.Sprintf("slot %q: counter var does not hold slot content", s.key))
		}
		name = content.Template
		data = content.Data
		counters = remaining
	}

	return renderSlot(name, data, counters, opts)
}
