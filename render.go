package liquet

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/quicksilt/liquet/parser"
)

// maxSlotDepth bounds slot nesting; a slot resolving back to its own
// template is cut off here.
const maxSlotDepth = 50

// State carries the mutable rendering state for one template walk.
type State struct {
	name string
	ctx  *Context
	opts *Options
	out  *strings.Builder
}

// renderTemplate walks a parsed template and returns the rendered
// text. Rendering is all-or-nothing: on error no partial output is
// returned.
func renderTemplate(tmpl *parser.Template, ctx *Context, opts *Options) (string, error) {
	s := &State{name: tmpl.Name, ctx: ctx, opts: opts, out: &strings.Builder{}}
	if err := s.evalBody(tmpl.Children); err != nil {
		return "", err
	}
	return s.out.String(), nil
}

func (s *State) evalBody(body []parser.Stmt) error {
	for _, stmt := range body {
		if err := s.evalStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) evalStmt(stmt parser.Stmt) error {
	switch st := stmt.(type) {
	case *parser.EmitRaw:
		s.out.WriteString(st.Raw)
		return nil
	case *parser.EmitExpr:
		s.out.WriteString(stringify(s.evalExpr(st.Expr)))
		return nil
	case *parser.ForLoop:
		return s.evalForLoop(st)
	case *parser.IfCond:
		if truthy(s.evalExpr(st.Expr)) {
			return s.evalBody(st.TrueBody)
		}
		return s.evalBody(st.FalseBody)
	case *parser.TagStmt:
		return s.evalTag(st)
	default:
		return NewError(ErrInvalidOperation, fmt.Sprintf("unsupported statement %T", stmt)).WithName(s.name)
	}
}

// evalForLoop binds the loop variable into the iteration vars for each
// element, restoring any shadowed binding afterwards so sibling loops
// reusing a variable name do not leak into each other.
func (s *State) evalForLoop(loop *parser.ForLoop) error {
	prev, had := s.ctx.IterationVars[loop.VarName]
	defer func() {
		if had {
			s.ctx.IterationVars[loop.VarName] = prev
		} else {
			delete(s.ctx.IterationVars, loop.VarName)
		}
	}()

	for _, item := range iterate(s.evalExpr(loop.Iter)) {
		s.ctx.IterationVars[loop.VarName] = item
		if err := s.evalBody(loop.Body); err != nil {
			return err
		}
	}
	return nil
}

// evalTag dispatches a custom tag invocation and splices its output
// verbatim. Tag errors are annotated with the template position unless
// they already carry one from a nested render.
func (s *State) evalTag(st *parser.TagStmt) error {
	tag, ok := builtinTags[st.Name]
	if !ok {
		return NewError(ErrUnknownTag, st.Name).WithName(s.name).WithLine(st.Line())
	}
	frag, err := tag.Render(st.Spec, s.ctx, s.opts)
	if err != nil {
		if e, ok := err.(*Error); ok && e.Name == "" {
			return e.WithName(s.name).WithLine(st.Line())
		}
		return err
	}
	s.out.WriteString(frag)
	return nil
}

// evalExpr resolves an expression against the current context. Missing
// variables resolve to nil rather than failing; templates routinely
// probe for optional data.
func (s *State) evalExpr(expr parser.Expr) any {
	switch e := expr.(type) {
	case *parser.Path:
		return s.ctx.lookup(e.Keys)
	case *parser.Const:
		return e.Value
	case *parser.BinOp:
		eq := equalValues(s.evalExpr(e.Left), s.evalExpr(e.Right))
		if e.Op == parser.BinOpNe {
			return !eq
		}
		return eq
	default:
		return nil
	}
}

// equalValues compares two resolved values, normalizing numeric types
// so 3 == 3.0 holds regardless of how either side was produced.
func equalValues(a, b any) bool {
	if an, aok := asFloat(a); aok {
		bn, bok := asFloat(b)
		return bok && an == bn
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// truthy implements condition semantics: nil, false, the empty string
// and empty collections are falsy, everything else (including zero
// numbers) is truthy.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	}
	return true
}

// iterate normalizes a loop target to a slice of elements. Non-iterable
// values iterate zero times rather than failing.
func iterate(v any) []any {
	switch seq := v.(type) {
	case nil:
		return nil
	case []any:
		return seq
	case []map[string]any:
		items := make([]any, len(seq))
		for i, m := range seq {
			items[i] = m
		}
		return items
	case []string:
		items := make([]any, len(seq))
		for i, s := range seq {
			items[i] = s
		}
		return items
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items
	}
	return nil
}

// renderSlot resolves and renders the template filling a slot. The
// remaining counter vars (those not consumed by the slot itself) are
// passed through so nested slots and highlight state survive the hop.
func renderSlot(name string, data map[string]any, counters map[string]any, opts *Options) (string, error) {
	if opts.depth >= maxSlotDepth {
		return "", NewError(ErrInvalidOperation, "slot nesting too deep").WithName(name)
	}
	tmpl, err := opts.Store.Get(name)
	if err != nil {
		return "", err
	}
	ctx := NewContext(data)
	if counters != nil {
		ctx.CounterVars = counters
	}
	nested := *opts
	nested.depth++
	return renderTemplate(tmpl, ctx, &nested)
}
