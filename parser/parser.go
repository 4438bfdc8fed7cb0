package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quicksilt/liquet/lexer"
)

const maxRecursion = 150

// Tag keywords of the base grammar. Custom tags may not shadow these.
var reservedTags = map[string]bool{
	"for": true, "endfor": true, "in": true,
	"if": true, "elsif": true, "else": true, "endif": true,
}

// TagCall describes a custom tag invocation as found in the source:
// the tag name, an optional positional argument (either a dotted path
// split into keys, or a quoted string literal) and the named arguments.
type TagCall struct {
	Name       string
	Path       []string
	Literal    string
	HasLiteral bool
	Args       map[string]string
	Template   string
	Line       int
}

// TagParser validates a custom tag invocation at compile time and
// returns an opaque spec that is stored in the AST for rendering.
// A returned error fails template compilation.
type TagParser func(call *TagCall) (any, error)

// Error represents a parse error.
type Error struct {
	Kind   string
	Detail string
	Name   string
	Line   int
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (in %s line %d)", e.Kind, e.Detail, e.Name, e.Line)
	}
	return fmt.Sprintf("%s: %s (line %d)", e.Kind, e.Detail, e.Line)
}

// Parser parses liquet templates.
type Parser struct {
	tokens []lexer.Token
	pos    int
	name   string
	tags   map[string]TagParser
	depth  int
}

// Parse parses a template string and returns the AST or an error.
// The tags map supplies the custom tag grammar extensions; an
// invocation of a tag not present in the map is a compile error.
func Parse(source, name string, tags map[string]TagParser) (*Template, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, &Error{Kind: "SyntaxError", Detail: err.Error(), Name: name, Line: 1}
	}

	p := &Parser{tokens: tokens, name: name, tags: tags}
	children, _, perr := p.parseStatements()
	if perr != nil {
		return nil, perr
	}
	return &Template{Name: name, Children: children}, nil
}

func (p *Parser) current() *lexer.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) peek(n int) *lexer.Token {
	if p.pos+n >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos+n]
}

func (p *Parser) advance() *lexer.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	tok := &p.tokens[p.pos]
	p.pos++
	return tok
}

func (p *Parser) currentLine() int {
	if tok := p.current(); tok != nil {
		return tok.Line
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Line
	}
	return 1
}

func (p *Parser) matches(typ lexer.TokenType) bool {
	tok := p.current()
	return tok != nil && tok.Type == typ
}

func (p *Parser) skip(typ lexer.TokenType) bool {
	if p.matches(typ) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(typ lexer.TokenType, expected string) (*lexer.Token, *Error) {
	tok := p.advance()
	if tok == nil {
		return nil, p.syntaxError(fmt.Sprintf("unexpected end of input, expected %s", expected))
	}
	if tok.Type != typ {
		return nil, p.syntaxError(fmt.Sprintf("unexpected %s, expected %s", tokenDescription(tok), expected))
	}
	return tok, nil
}

func (p *Parser) expectKeyword(kw string) *Error {
	tok := p.advance()
	if tok == nil {
		return p.syntaxError(fmt.Sprintf("unexpected end of input, expected `%s`", kw))
	}
	if tok.Type != lexer.TokenIdent || tok.Value != kw {
		return p.syntaxError(fmt.Sprintf("unexpected %s, expected `%s`", tokenDescription(tok), kw))
	}
	return nil
}

func (p *Parser) syntaxError(msg string) *Error {
	return &Error{Kind: "SyntaxError", Detail: msg, Name: p.name, Line: p.currentLine()}
}

func tokenDescription(tok *lexer.Token) string {
	switch tok.Type {
	case lexer.TokenIdent:
		return fmt.Sprintf("identifier `%s`", tok.Value)
	case lexer.TokenString:
		return "string"
	case lexer.TokenNumber:
		return "number"
	case lexer.TokenTagEnd:
		return "end of tag"
	case lexer.TokenVariableEnd:
		return "end of variable block"
	case lexer.TokenTemplateData:
		return "template data"
	default:
		return fmt.Sprintf("`%s`", tok.Value)
	}
}

// parseStatements parses statements until one of the stop tags is
// encountered or input ends. When a stop tag is hit, the tag keyword is
// returned with the tag's arguments (and closing %}) left unconsumed.
func (p *Parser) parseStatements(stopTags ...string) ([]Stmt, string, *Error) {
	var stmts []Stmt

	for {
		tok := p.current()
		if tok == nil {
			if len(stopTags) > 0 {
				return nil, "", p.syntaxError(fmt.Sprintf("unexpected end of template, expected {%% %s %%}", stopTags[len(stopTags)-1]))
			}
			return stmts, "", nil
		}

		switch tok.Type {
		case lexer.TokenTemplateData:
			p.advance()
			stmts = append(stmts, &EmitRaw{Raw: tok.Value, line: tok.Line})

		case lexer.TokenVariableStart:
			p.advance()
			expr, err := p.parseOperand()
			if err != nil {
				return nil, "", err
			}
			if _, err := p.expect(lexer.TokenVariableEnd, "`}}`"); err != nil {
				return nil, "", err
			}
			stmts = append(stmts, &EmitExpr{Expr: expr, line: tok.Line})

		case lexer.TokenTagStart:
			p.advance()
			nameTok, err := p.expect(lexer.TokenIdent, "tag name")
			if err != nil {
				return nil, "", err
			}
			for _, stop := range stopTags {
				if nameTok.Value == stop {
					return stmts, stop, nil
				}
			}
			stmt, err := p.parseTag(nameTok.Value, nameTok.Line)
			if err != nil {
				return nil, "", err
			}
			stmts = append(stmts, stmt)

		default:
			return nil, "", p.syntaxError(fmt.Sprintf("unexpected %s", tokenDescription(tok)))
		}
	}
}

// parseTag parses a single {% ... %} statement whose keyword has
// already been consumed.
func (p *Parser) parseTag(name string, line int) (Stmt, *Error) {
	p.depth++
	if p.depth > maxRecursion {
		return nil, p.syntaxError("template exceeds maximum nesting depth")
	}
	defer func() { p.depth-- }()

	switch name {
	case "for":
		return p.parseFor(line)
	case "if":
		return p.parseIf(line)
	case "elsif", "else", "endif", "endfor", "in":
		return nil, p.syntaxError(fmt.Sprintf("unexpected {%% %s %%}", name))
	default:
		return p.parseCustomTag(name, line)
	}
}

func (p *Parser) parseFor(line int) (Stmt, *Error) {
	varTok, err := p.expect(lexer.TokenIdent, "loop variable")
	if err != nil {
		return nil, err
	}
	if reservedTags[varTok.Value] {
		return nil, p.syntaxError(fmt.Sprintf("cannot use reserved word `%s` as loop variable", varTok.Value))
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	iter, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenTagEnd, "`%}`"); err != nil {
		return nil, err
	}

	body, _, err := p.parseStatements("endfor")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenTagEnd, "`%}`"); err != nil {
		return nil, err
	}

	return &ForLoop{VarName: varTok.Value, Iter: iter, Body: body, line: line}, nil
}

func (p *Parser) parseIf(line int) (Stmt, *Error) {
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenTagEnd, "`%}`"); err != nil {
		return nil, err
	}

	trueBody, stop, err := p.parseStatements("elsif", "else", "endif")
	if err != nil {
		return nil, err
	}

	var falseBody []Stmt
	switch stop {
	case "elsif":
		nested, err := p.parseIf(p.currentLine())
		if err != nil {
			return nil, err
		}
		falseBody = []Stmt{nested}

	case "else":
		if _, err := p.expect(lexer.TokenTagEnd, "`%}`"); err != nil {
			return nil, err
		}
		falseBody, _, err = p.parseStatements("endif")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenTagEnd, "`%}`"); err != nil {
			return nil, err
		}

	case "endif":
		if _, err := p.expect(lexer.TokenTagEnd, "`%}`"); err != nil {
			return nil, err
		}
	}

	return &IfCond{Expr: cond, TrueBody: trueBody, FalseBody: falseBody, line: line}, nil
}

func (p *Parser) parseCustomTag(name string, line int) (Stmt, *Error) {
	tagParser, ok := p.tags[name]
	if !ok {
		return nil, &Error{
			Kind:   "UnknownTag",
			Detail: fmt.Sprintf("unknown tag %q", name),
			Name:   p.name,
			Line:   line,
		}
	}

	call := &TagCall{Name: name, Template: p.name, Line: line}

	if !p.matches(lexer.TokenTagEnd) {
		// Positional argument, unless the first identifier opens a
		// named argument list.
		if p.matches(lexer.TokenString) {
			call.Literal = p.advance().Value
			call.HasLiteral = true
		} else if p.matches(lexer.TokenIdent) && !p.nextIsColon() {
			path, err := p.parsePath()
			if err != nil {
				return nil, err
			}
			call.Path = path.Keys
		}

		for !p.matches(lexer.TokenTagEnd) {
			if len(call.Args) > 0 || call.Path != nil || call.HasLiteral {
				if _, err := p.expect(lexer.TokenComma, "`,` or `%}`"); err != nil {
					return nil, err
				}
			}
			key, err := p.expect(lexer.TokenIdent, "argument name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.TokenColon, "`:`"); err != nil {
				return nil, err
			}
			valTok := p.advance()
			if valTok == nil || (valTok.Type != lexer.TokenIdent && valTok.Type != lexer.TokenString) {
				return nil, p.syntaxError(fmt.Sprintf("invalid value for argument %q", key.Value))
			}
			if call.Args == nil {
				call.Args = make(map[string]string)
			}
			if _, dup := call.Args[key.Value]; dup {
				return nil, p.badTagArgs(name, line, fmt.Sprintf("duplicate argument %q", key.Value))
			}
			call.Args[key.Value] = valTok.Value
		}
	}

	if _, err := p.expect(lexer.TokenTagEnd, "`%}`"); err != nil {
		return nil, err
	}

	spec, err := tagParser(call)
	if err != nil {
		return nil, p.badTagArgs(name, line, err.Error())
	}
	return &TagStmt{Name: name, Spec: spec, line: line}, nil
}

func (p *Parser) badTagArgs(tag string, line int, detail string) *Error {
	return &Error{
		Kind:   "BadTagArgs",
		Detail: fmt.Sprintf("tag %q: %s", tag, detail),
		Name:   p.name,
		Line:   line,
	}
}

func (p *Parser) nextIsColon() bool {
	next := p.peek(1)
	return next != nil && next.Type == lexer.TokenColon
}

// --- Expression Parsing ---

// parseCondition parses `operand [== operand | != operand]`.
func (p *Parser) parseCondition() (Expr, *Error) {
	line := p.currentLine()
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	var op BinOpKind
	switch {
	case p.skip(lexer.TokenEq):
		op = BinOpEq
	case p.skip(lexer.TokenNe):
		op = BinOpNe
	default:
		return left, nil
	}

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &BinOp{Op: op, Left: left, Right: right, line: line}, nil
}

// parseOperand parses a dotted path or a literal.
func (p *Parser) parseOperand() (Expr, *Error) {
	tok := p.current()
	if tok == nil {
		return nil, p.syntaxError("unexpected end of input, expected expression")
	}

	switch tok.Type {
	case lexer.TokenString:
		p.advance()
		return &Const{Value: tok.Value, line: tok.Line}, nil

	case lexer.TokenNumber:
		p.advance()
		if !strings.Contains(tok.Value, ".") {
			n, err := strconv.ParseInt(tok.Value, 10, 64)
			if err == nil {
				return &Const{Value: n, line: tok.Line}, nil
			}
		}
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.syntaxError(fmt.Sprintf("invalid number %q", tok.Value))
		}
		return &Const{Value: f, line: tok.Line}, nil

	case lexer.TokenIdent:
		switch tok.Value {
		case "true":
			p.advance()
			return &Const{Value: true, line: tok.Line}, nil
		case "false":
			p.advance()
			return &Const{Value: false, line: tok.Line}, nil
		}
		return p.parsePath()

	default:
		return nil, p.syntaxError(fmt.Sprintf("unexpected %s, expected expression", tokenDescription(tok)))
	}
}

// parsePath parses a dotted path into its ordered key sequence.
func (p *Parser) parsePath() (*Path, *Error) {
	first, err := p.expect(lexer.TokenIdent, "identifier")
	if err != nil {
		return nil, err
	}
	keys := []string{first.Value}
	for p.skip(lexer.TokenDot) {
		part, err := p.expect(lexer.TokenIdent, "identifier after `.`")
		if err != nil {
			return nil, err
		}
		keys = append(keys, part.Value)
	}
	return &Path{Keys: keys, line: first.Line}, nil
}
