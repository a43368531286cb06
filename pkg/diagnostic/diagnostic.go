// Package diagnostic defines the error taxonomy shared by the lexer, parser,
// and interpreter: LexError, ParseError, and RuntimeError, each carrying
// zero-based byte offsets into the original source.
//
// The three kinds are distinct types so callers can branch with errors.As;
// control-flow signals inside the interpreter are deliberately not part of
// this package.
package diagnostic

import "fmt"

// Span marks a half-open [Start, End) byte range in the source text.
type Span struct {
	Start int
	End   int
}

// LexErrorKind classifies why tokenization stopped.
type LexErrorKind int

const (
	// UnrecognizedCharacter means no lexical rule matched at the offset.
	UnrecognizedCharacter LexErrorKind = iota
	// UnterminatedString means a quoted literal was opened but never closed.
	UnterminatedString
)

func (k LexErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "unterminated string literal"
	default:
		return "unrecognized character"
	}
}

// LexError reports a failure to tokenize the source.
type LexError struct {
	Kind LexErrorKind
	Text string
	Span Span
}

func (e *LexError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("lex error: %s %q at offset %d", e.Kind, e.Text, e.Span.Start)
	}
	return fmt.Sprintf("lex error: %s at offset %d", e.Kind, e.Span.Start)
}

// ParseError reports the first grammar violation encountered. Parsing stops
// immediately; no partial AST is produced.
type ParseError struct {
	Expected string
	Actual   string
	Span     Span
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: expected %s, found %s at offset %d", e.Expected, e.Actual, e.Span.Start)
}

// RuntimeCode is the closed set of runtime failure categories.
type RuntimeCode int

const (
	UndefinedVariable RuntimeCode = iota
	NotCallable
	ArityMismatch
	TypeMismatch
	OperandMustBeNumber
	DivisionByZero
	StackOverflow
)

func (c RuntimeCode) String() string {
	switch c {
	case UndefinedVariable:
		return "UndefinedVariable"
	case NotCallable:
		return "NotCallable"
	case ArityMismatch:
		return "ArityMismatch"
	case TypeMismatch:
		return "TypeMismatch"
	case OperandMustBeNumber:
		return "OperandMustBeNumber"
	case DivisionByZero:
		return "DivisionByZero"
	case StackOverflow:
		return "StackOverflow"
	default:
		return fmt.Sprintf("RuntimeCode(%d)", int(c))
	}
}

// RuntimeError aborts an execution. Span locates the AST node that was being
// evaluated when the failure occurred.
type RuntimeError struct {
	Code    RuntimeCode
	Message string
	Span    Span
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error [%s]: %s", e.Code, e.Message)
}

// NewRuntimeError builds a RuntimeError with a formatted message.
func NewRuntimeError(code RuntimeCode, span Span, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...), Span: span}
}
