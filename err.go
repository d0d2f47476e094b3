package jsode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind classifies an Error.
type ErrorKind int

const (
	// LexicalError is raised by the tokenizer: bad escapes, unterminated
	// strings or comments, malformed numbers, unsupported bytes.
	LexicalError ErrorKind = iota + 1
	// StructuralError is raised by the parser when a token appears where a
	// key, colon, value, comma or closing punctuation was expected.
	StructuralError
	// ConversionError is raised when a value cannot be converted to the
	// requested Go type.
	ConversionError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical"
	case StructuralError:
		return "structural"
	case ConversionError:
		return "conversion"
	default:
		return "unknown"
	}
}

var (
	ErrSyntax           = errors.New("syntax error")
	ErrEmptyInput       = errors.New("json input is empty")
	ErrUnexpectedEOF    = errors.New("unexpected end of input")
	ErrInvalidJSON      = errors.New("invalid JSON")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrMaxDepth         = errors.New("max depth exceeded")
	ErrMissingKey       = errors.New("missing key")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrNegativeUnsigned = errors.New("negative number for unsigned type")
	ErrOverflow         = errors.New("value out of range")
)

// Error is the error returned by parsing and conversion. Err holds one of the
// package sentinels (or a strconv error) and is exposed through Unwrap.
type Error struct {
	Kind ErrorKind
	Msg  string
	Span Span
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("jsode: ")
	if e.Span.Row > 0 {
		b.WriteString(strconv.Itoa(e.Span.Row))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(e.Span.Col))
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DecodeError reports which record field failed to decode.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// errorf builds an Error whose span carries the row and column in the source.
func (p *Parser) errorf(kind ErrorKind, sentinel error, span Span, format string, args ...any) *Error {
	return &Error{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		Span: span.Locate(p.tz.Source()),
		Err:  sentinel,
	}
}
