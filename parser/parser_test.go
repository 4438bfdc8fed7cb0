package parser

import (
	"fmt"
	"strings"
	"testing"
)

// noopTags builds a tag table whose parsers accept anything and store
// the raw call.
func noopTags(names ...string) map[string]TagParser {
	tags := make(map[string]TagParser, len(names))
	for _, name := range names {
		tags[name] = func(call *TagCall) (any, error) { return call, nil }
	}
	return tags
}

func TestParseRawAndVariable(t *testing.T) {
	tmpl, err := Parse("Hello {{ user.name }}!", "greet", nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if tmpl.Name != "greet" {
		t.Errorf("expected template name greet, got %q", tmpl.Name)
	}
	if len(tmpl.Children) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(tmpl.Children))
	}

	emit, ok := tmpl.Children[1].(*EmitExpr)
	if !ok {
		t.Fatalf("expected EmitExpr, got %T", tmpl.Children[1])
	}
	path, ok := emit.Expr.(*Path)
	if !ok {
		t.Fatalf("expected Path expression, got %T", emit.Expr)
	}
	if len(path.Keys) != 2 || path.Keys[0] != "user" || path.Keys[1] != "name" {
		t.Errorf("unexpected path keys %v", path.Keys)
	}
}

func TestParseForLoop(t *testing.T) {
	tmpl, err := Parse("{% for post in blog.posts %}{{ post.title }}{% endfor %}", "t", nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	loop, ok := tmpl.Children[0].(*ForLoop)
	if !ok {
		t.Fatalf("expected ForLoop, got %T", tmpl.Children[0])
	}
	if loop.VarName != "post" {
		t.Errorf("expected loop variable post, got %q", loop.VarName)
	}
	iter, ok := loop.Iter.(*Path)
	if !ok || len(iter.Keys) != 2 {
		t.Fatalf("unexpected iteration target %#v", loop.Iter)
	}
	if len(loop.Body) != 1 {
		t.Errorf("expected 1 body statement, got %d", len(loop.Body))
	}
}

func TestParseIfElsifElse(t *testing.T) {
	source := `{% if a %}1{% elsif b %}2{% else %}3{% endif %}`
	tmpl, err := Parse(source, "t", nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	cond, ok := tmpl.Children[0].(*IfCond)
	if !ok {
		t.Fatalf("expected IfCond, got %T", tmpl.Children[0])
	}
	if len(cond.TrueBody) != 1 {
		t.Errorf("expected 1 true statement, got %d", len(cond.TrueBody))
	}

	// elsif parses as a nested IfCond in the false branch
	if len(cond.FalseBody) != 1 {
		t.Fatalf("expected nested condition, got %d statements", len(cond.FalseBody))
	}
	nested, ok := cond.FalseBody[0].(*IfCond)
	if !ok {
		t.Fatalf("expected nested IfCond, got %T", cond.FalseBody[0])
	}
	if len(nested.TrueBody) != 1 || len(nested.FalseBody) != 1 {
		t.Errorf("unexpected nested branches: %d true, %d false",
			len(nested.TrueBody), len(nested.FalseBody))
	}
}

func TestParseComparison(t *testing.T) {
	tmpl, err := Parse(`{% if status != "open" %}x{% endif %}`, "t", nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	cond := tmpl.Children[0].(*IfCond)
	binop, ok := cond.Expr.(*BinOp)
	if !ok {
		t.Fatalf("expected BinOp condition, got %T", cond.Expr)
	}
	if binop.Op != BinOpNe {
		t.Errorf("expected Ne, got %v", binop.Op)
	}
	if right, ok := binop.Right.(*Const); !ok || right.Value != "open" {
		t.Errorf("unexpected right operand %#v", binop.Right)
	}
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		source string
		value  any
	}{
		{`{% if x == 42 %}{% endif %}`, int64(42)},
		{`{% if x == 3.5 %}{% endif %}`, 3.5},
		{`{% if x == true %}{% endif %}`, true},
		{`{% if x == "s" %}{% endif %}`, "s"},
	}
	for _, tt := range tests {
		tmpl, err := Parse(tt.source, "t", nil)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.source, err)
		}
		binop := tmpl.Children[0].(*IfCond).Expr.(*BinOp)
		c, ok := binop.Right.(*Const)
		if !ok || c.Value != tt.value {
			t.Errorf("parse %q: expected constant %v (%T), got %#v", tt.source, tt.value, tt.value, binop.Right)
		}
	}
}

func TestParseCustomTagPositionalAndNamed(t *testing.T) {
	var got *TagCall
	tags := map[string]TagParser{
		"html": func(call *TagCall) (any, error) {
			got = call
			return nil, nil
		},
	}

	_, err := Parse(`{% html field.key, at: "comment" %}`, "row", tags)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got == nil {
		t.Fatal("tag parser was not invoked")
	}
	if len(got.Path) != 2 || got.Path[0] != "field" || got.Path[1] != "key" {
		t.Errorf("unexpected positional path %v", got.Path)
	}
	if got.Args["at"] != "comment" {
		t.Errorf("unexpected named args %v", got.Args)
	}
	if got.Template != "row" || got.Line != 1 {
		t.Errorf("unexpected call position %q line %d", got.Template, got.Line)
	}
}

func TestParseCustomTagStringPositional(t *testing.T) {
	var got *TagCall
	tags := map[string]TagParser{
		"slot": func(call *TagCall) (any, error) {
			got = call
			return nil, nil
		},
	}
	if _, err := Parse(`{% slot "main" %}`, "t", tags); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if !got.HasLiteral || got.Literal != "main" {
		t.Errorf("expected string positional main, got %#v", got)
	}
}

func TestParseCustomTagNamedOnly(t *testing.T) {
	var got *TagCall
	tags := map[string]TagParser{
		"widget": func(call *TagCall) (any, error) {
			got = call
			return nil, nil
		},
	}
	if _, err := Parse(`{% widget size: "large", color: red %}`, "t", tags); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got.Path != nil || got.HasLiteral {
		t.Errorf("expected no positional argument, got %#v", got)
	}
	if got.Args["size"] != "large" || got.Args["color"] != "red" {
		t.Errorf("unexpected args %v", got.Args)
	}
}

func TestParseUnknownTag(t *testing.T) {
	_, err := Parse(`{% bogus %}`, "t", noopTags("slot"))
	perr, ok := err.(*Error)
	if !ok || perr.Kind != "UnknownTag" {
		t.Fatalf("expected UnknownTag error, got %v", err)
	}
	if perr.Name != "t" || perr.Line != 1 {
		t.Errorf("unexpected error position %q line %d", perr.Name, perr.Line)
	}
}

func TestParseTagParserRejection(t *testing.T) {
	tags := map[string]TagParser{
		"get": func(call *TagCall) (any, error) {
			return nil, fmt.Errorf("missing required argument %q", "at")
		},
	}
	_, err := Parse(`{% get name %}`, "t", tags)
	perr, ok := err.(*Error)
	if !ok || perr.Kind != "BadTagArgs" {
		t.Fatalf("expected BadTagArgs error, got %v", err)
	}
	if !strings.Contains(perr.Detail, `"at"`) {
		t.Errorf("expected detail to name the argument, got %q", perr.Detail)
	}
}

func TestParseDuplicateArgument(t *testing.T) {
	_, err := Parse(`{% slot a: "1", a: "2" %}`, "t", noopTags("slot"))
	perr, ok := err.(*Error)
	if !ok || perr.Kind != "BadTagArgs" {
		t.Fatalf("expected BadTagArgs error, got %v", err)
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	sources := []string{
		"{% for %}",
		"{% for x xs %}{% endfor %}",
		"{% for in in xs %}{% endfor %}",
		"{% if a %}never closed",
		"{% endif %}",
		"{% endfor %}",
		"{{ user. }}",
		"{{ }}",
	}
	for _, source := range sources {
		_, err := Parse(source, "t", nil)
		if err == nil {
			t.Errorf("expected error for %q", source)
			continue
		}
		if perr, ok := err.(*Error); !ok || perr.Kind != "SyntaxError" {
			t.Errorf("expected SyntaxError for %q, got %v", source, err)
		}
	}
}

func TestParseErrorCarriesLine(t *testing.T) {
	_, err := Parse("line one\nline two\n{% endfor %}", "broken", nil)
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected parse error, got %v", err)
	}
	if perr.Line != 3 {
		t.Errorf("expected error on line 3, got %d", perr.Line)
	}
	if !strings.Contains(perr.Error(), "broken") {
		t.Errorf("expected error to name the template: %v", perr)
	}
}

func TestParseDeepNesting(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < maxRecursion+10; i++ {
		sb.WriteString("{% if a %}")
	}
	for i := 0; i < maxRecursion+10; i++ {
		sb.WriteString("{% endif %}")
	}
	if _, err := Parse(sb.String(), "t", nil); err == nil {
		t.Error("expected nesting depth error")
	}
}
