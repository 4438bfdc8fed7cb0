package liquet

import (
	"fmt"

	"github.com/quicksilt/liquet/parser"
)

// ErrorKind describes the type of error.
type ErrorKind int

const (
	// Compile-time failures.
	ErrSyntax ErrorKind = iota
	ErrUnknownTag
	ErrBadTagArgs

	// Resolution failures.
	ErrTemplateNotFound

	// Render-time contract violations.
	ErrMissingBinding
	ErrInvalidOperation
)

func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax error"
	case ErrUnknownTag:
		return "unknown tag"
	case ErrBadTagArgs:
		return "bad tag arguments"
	case ErrTemplateNotFound:
		return "template not found"
	case ErrMissingBinding:
		return "missing binding"
	case ErrInvalidOperation:
		return "invalid operation"
	default:
		return "error"
	}
}

// Error represents an error that occurred during template processing.
// Every error names the failing template where one is known.
type Error struct {
	Kind    ErrorKind
	Message string
	Name    string // template name
	Line    int    // 1-indexed source line, 0 if unknown
}

func (e *Error) Error() string {
	if e.Name != "" && e.Line > 0 {
		return fmt.Sprintf("%s: %s (in %s line %d)", e.Kind, e.Message, e.Name, e.Line)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (in %s)", e.Kind, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError creates a new error.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WithName adds the template name to an error.
func (e *Error) WithName(name string) *Error {
	e.Name = name
	return e
}

// WithLine adds line information to an error.
func (e *Error) WithLine(line int) *Error {
	e.Line = line
	return e
}

// IsNotFound reports whether err is a template resolution failure.
func IsNotFound(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == ErrTemplateNotFound
	}
	return false
}

// fromParseError converts a parser error into the engine error type.
func fromParseError(err error) *Error {
	pe, ok := err.(*parser.Error)
	if !ok {
		return &Error{Kind: ErrSyntax, Message: err.Error()}
	}
	kind := ErrSyntax
	switch pe.Kind {
	case "UnknownTag":
		kind = ErrUnknownTag
	case "BadTagArgs":
		kind = ErrBadTagArgs
	}
	return &Error{Kind: kind, Message: pe.Detail, Name: pe.Name, Line: pe.Line}
}
