// Package lexer provides tokenization for liquet templates.
package lexer

import "fmt"

// TokenType represents the type of a token.
type TokenType int

const (
	// Template data (raw text between tags)
	TokenTemplateData TokenType = iota

	// Delimiters
	TokenVariableStart // {{
	TokenVariableEnd   // }}
	TokenTagStart      // {%
	TokenTagEnd        // %}

	// Literals
	TokenIdent  // identifier
	TokenString // "string" or 'string'
	TokenNumber // 123 or 123.45

	// Punctuation
	TokenDot   // .
	TokenComma // ,
	TokenColon // :

	// Comparison
	TokenEq // ==
	TokenNe // !=
)

// Token represents a single token from the lexer.
type Token struct {
	Type  TokenType
	Value string // the token value (for idents, strings, numbers, template data)
	Line  int    // 1-indexed source line the token starts on
}

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

var tokenTypeNames = map[TokenType]string{
	TokenTemplateData:  "TemplateData",
	TokenVariableStart: "VariableStart",
	TokenVariableEnd:   "VariableEnd",
	TokenTagStart:      "TagStart",
	TokenTagEnd:        "TagEnd",
	TokenIdent:         "Ident",
	TokenString:        "String",
	TokenNumber:        "Number",
	TokenDot:           "Dot",
	TokenComma:         "Comma",
	TokenColon:         "Colon",
	TokenEq:            "Eq",
	TokenNe:            "Ne",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}
