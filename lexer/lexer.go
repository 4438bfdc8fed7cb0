package lexer

import (
	"fmt"
	"strings"
)

// Syntax delimiters. The grammar recognizes variable blocks, tag blocks
// and comments; comments are consumed by the lexer and never surface as
// tokens.
const (
	tagStart      = "{%"
	tagEnd        = "%}"
	variableStart = "{{"
	variableEnd   = "}}"
	commentStart  = "{#"
	commentEnd    = "#}"
)

type lexerState int

const (
	stateTemplate lexerState = iota
	stateVariable
	stateTag
)

// Lexer tokenizes liquet template source code.
type Lexer struct {
	source string
	pos    int
	line   int // current line (1-indexed)
	state  lexerState
}

// New creates a new Lexer for the given input.
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		state:  stateTemplate,
	}
}

// Tokenize returns all tokens from the input.
func Tokenize(source string) ([]Token, error) {
	l := New(source)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			break
		}
		tokens = append(tokens, *tok)
	}
	return tokens, nil
}

// Next returns the next token, or nil at end of input.
func (l *Lexer) Next() (*Token, error) {
	for {
		if l.atEnd() {
			if l.state != stateTemplate {
				return nil, l.syntaxError("unexpected end of template inside block")
			}
			return nil, nil
		}

		var tok *Token
		var cont bool
		var err error

		switch l.state {
		case stateTemplate:
			tok, cont, err = l.tokenizeTemplate()
		case stateVariable:
			tok, cont, err = l.tokenizeBlock(variableEnd, TokenVariableEnd)
		case stateTag:
			tok, cont, err = l.tokenizeBlock(tagEnd, TokenTagEnd)
		}

		if err != nil {
			return nil, err
		}
		if cont {
			continue
		}
		if tok != nil {
			return tok, nil
		}
	}
}

// tokenizeTemplate handles raw template data up to the next block marker.
func (l *Lexer) tokenizeTemplate() (*Token, bool, error) {
	line := l.line
	rest := l.rest()

	offset := findMarker(rest)
	if offset < 0 {
		offset = len(rest)
	}

	if offset > 0 {
		data := l.advance(offset)
		tok := Token{Type: TokenTemplateData, Value: data, Line: line}
		return &tok, false, nil
	}

	// Positioned directly on a marker.
	switch {
	case strings.HasPrefix(rest, commentStart):
		end := strings.Index(rest, commentEnd)
		if end < 0 {
			l.advance(len(rest))
			return nil, false, l.syntaxError("unclosed comment")
		}
		l.advance(end + len(commentEnd))
		return nil, true, nil

	case strings.HasPrefix(rest, variableStart):
		l.advance(len(variableStart))
		l.state = stateVariable
		tok := Token{Type: TokenVariableStart, Value: variableStart, Line: line}
		return &tok, false, nil

	default:
		l.advance(len(tagStart))
		l.state = stateTag
		tok := Token{Type: TokenTagStart, Value: tagStart, Line: line}
		return &tok, false, nil
	}
}

// findMarker returns the offset of the earliest block marker in rest,
// or -1 if none remains.
func findMarker(rest string) int {
	for idx := strings.IndexByte(rest, '{'); idx >= 0 && idx+1 < len(rest); {
		switch rest[idx+1] {
		case '{', '%', '#':
			return idx
		}
		next := strings.IndexByte(rest[idx+1:], '{')
		if next < 0 {
			return -1
		}
		idx += 1 + next
	}
	return -1
}

// tokenizeBlock handles tokens inside {{ }} or {% %}.
func (l *Lexer) tokenizeBlock(endDelim string, endType TokenType) (*Token, bool, error) {
	l.skipWhitespace()
	if l.atEnd() {
		return nil, false, nil
	}

	line := l.line
	rest := l.rest()

	if strings.HasPrefix(rest, endDelim) {
		l.advance(len(endDelim))
		l.state = stateTemplate
		tok := Token{Type: endType, Value: endDelim, Line: line}
		return &tok, false, nil
	}

	if len(rest) >= 2 {
		switch rest[:2] {
		case "==":
			l.advance(2)
			tok := Token{Type: TokenEq, Value: "==", Line: line}
			return &tok, false, nil
		case "!=":
			l.advance(2)
			tok := Token{Type: TokenNe, Value: "!=", Line: line}
			return &tok, false, nil
		}
	}

	ch := rest[0]
	switch ch {
	case '.':
		l.advance(1)
		tok := Token{Type: TokenDot, Value: ".", Line: line}
		return &tok, false, nil
	case ',':
		l.advance(1)
		tok := Token{Type: TokenComma, Value: ",", Line: line}
		return &tok, false, nil
	case ':':
		l.advance(1)
		tok := Token{Type: TokenColon, Value: ":", Line: line}
		return &tok, false, nil
	case '"', '\'':
		return l.lexString(ch)
	}

	if isDigit(ch) || (ch == '-' && len(rest) > 1 && isDigit(rest[1])) {
		return l.lexNumber()
	}
	if isIdentStart(ch) {
		return l.lexIdent()
	}

	return nil, false, l.syntaxError(fmt.Sprintf("unexpected character %q", ch))
}

// lexString lexes a quoted string literal.
func (l *Lexer) lexString(quote byte) (*Token, bool, error) {
	line := l.line
	l.advance(1) // skip opening quote

	var sb strings.Builder
	for !l.atEnd() {
		ch := l.rest()[0]
		if ch == quote {
			l.advance(1)
			tok := Token{Type: TokenString, Value: sb.String(), Line: line}
			return &tok, false, nil
		}
		if ch == '\\' {
			l.advance(1)
			if l.atEnd() {
				return nil, false, l.syntaxError("unexpected end of string")
			}
			escaped := l.rest()[0]
			l.advance(1)
			switch escaped {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '\'', '"':
				sb.WriteByte(escaped)
			default:
				sb.WriteByte('\\')
				sb.WriteByte(escaped)
			}
			continue
		}
		sb.WriteByte(ch)
		l.advance(1)
	}
	return nil, false, l.syntaxError("unexpected end of string")
}

// lexNumber lexes an integer or float literal.
func (l *Lexer) lexNumber() (*Token, bool, error) {
	line := l.line
	rest := l.rest()

	numLen := 0
	if rest[0] == '-' {
		numLen = 1
	}
	sawDot := false
	for numLen < len(rest) {
		c := rest[numLen]
		if isDigit(c) {
			numLen++
			continue
		}
		if c == '.' && !sawDot && numLen+1 < len(rest) && isDigit(rest[numLen+1]) {
			sawDot = true
			numLen++
			continue
		}
		break
	}

	value := l.advance(numLen)
	tok := Token{Type: TokenNumber, Value: value, Line: line}
	return &tok, false, nil
}

// lexIdent lexes an identifier.
func (l *Lexer) lexIdent() (*Token, bool, error) {
	line := l.line
	rest := l.rest()

	end := 0
	for end < len(rest) && isIdentPart(rest[end]) {
		end++
	}

	value := l.advance(end)
	tok := Token{Type: TokenIdent, Value: value, Line: line}
	return &tok, false, nil
}

// Helper methods

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.source)
}

func (l *Lexer) rest() string {
	if l.pos >= len(l.source) {
		return ""
	}
	return l.source[l.pos:]
}

func (l *Lexer) advance(n int) string {
	if n <= 0 {
		return ""
	}
	end := l.pos + n
	if end > len(l.source) {
		end = len(l.source)
	}
	skipped := l.source[l.pos:end]
	l.line += strings.Count(skipped, "\n")
	l.pos = end
	return skipped
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() {
		c := l.rest()[0]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			l.advance(1)
		} else {
			break
		}
	}
}

func (l *Lexer) syntaxError(msg string) error {
	return fmt.Errorf("syntax error at line %d: %s", l.line, msg)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
