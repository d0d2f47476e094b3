package lexer

import "fmt"

// TokenKind classifies a Token.
type TokenKind uint8

const (
	PunctToken TokenKind = iota + 1
	DataToken
	CommentToken
	ErrorToken
)

func (k TokenKind) String() string {
	switch k {
	case PunctToken:
		return "punct"
	case DataToken:
		return "data"
	case CommentToken:
		return "comment"
	case ErrorToken:
		return "error"
	default:
		return "unknown"
	}
}

// Punct enumerates the punctuation tokens.
type Punct uint8

const (
	OpenCurly Punct = iota + 1
	CloseCurly
	OpenSquare
	CloseSquare
	Colon
	Comma
	WhiteSpace
	Plus
	Minus
)

func (p Punct) String() string {
	switch p {
	case OpenCurly:
		return "{"
	case CloseCurly:
		return "}"
	case OpenSquare:
		return "["
	case CloseSquare:
		return "]"
	case Colon:
		return ":"
	case Comma:
		return ","
	case WhiteSpace:
		return "whitespace"
	case Plus:
		return "+"
	case Minus:
		return "-"
	default:
		return "unknown"
	}
}

// IsSign reports whether p is a unary + or -.
func (p Punct) IsSign() bool {
	return p == Plus || p == Minus
}

// Token is the smallest lexical unit produced by the Tokenizer. Only the fields
// that match Kind are meaningful.
type Token struct {
	Kind  TokenKind
	Punct Punct    // PunctToken
	Data  JsonType // DataToken
	Msg   string   // ErrorToken
	Span  Span
}

func punctToken(p Punct, start, end int) Token {
	return Token{Kind: PunctToken, Punct: p, Span: NewSpan(start, end)}
}

func dataToken(t JsonType, start, end int) Token {
	return Token{Kind: DataToken, Data: t, Span: NewSpan(start, end)}
}

func errorToken(msg string, start, end int) Token {
	return Token{Kind: ErrorToken, Msg: msg, Span: NewSpan(start, end)}
}

// IsPunct reports whether t is the punctuation p.
func (t Token) IsPunct(p Punct) bool {
	return t.Kind == PunctToken && t.Punct == p
}

func (t Token) String() string {
	switch t.Kind {
	case PunctToken:
		return fmt.Sprintf("punct(%s)@%d:%d", t.Punct, t.Span.Start, t.Span.End)
	case DataToken:
		return fmt.Sprintf("data(%s)@%d:%d", t.Data.Kind, t.Span.Start, t.Span.End)
	case CommentToken:
		return fmt.Sprintf("comment@%d:%d", t.Span.Start, t.Span.End)
	case ErrorToken:
		return fmt.Sprintf("error(%q)@%d:%d", t.Msg, t.Span.Start, t.Span.End)
	default:
		return "invalid token"
	}
}

// DataKind classifies a data token.
type DataKind uint8

const (
	Ident DataKind = iota + 1
	Str
	Num
	Bool
	Null
)

func (k DataKind) String() string {
	switch k {
	case Ident:
		return "identifier"
	case Str:
		return "string"
	case Num:
		return "number"
	case Bool:
		return "boolean"
	case Null:
		return "null"
	default:
		return "unknown"
	}
}

// JsonType is the tagged shape of a data token.
type JsonType struct {
	Kind DataKind
	Str  []StrType // Kind == Str, in source order
	Num  NumType   // Kind == Num
	Bool bool      // Kind == Bool
}

// Name describes the type for error messages, e.g. "negative integer".
func (t JsonType) Name() string {
	if t.Kind == Num {
		return t.Num.Name()
	}
	return t.Kind.String()
}

// StrKind classifies a string fragment.
type StrKind uint8

const (
	// StrLiteral is a run of characters copied as-is.
	StrLiteral StrKind = iota + 1
	// StrAscii is \xHH; the span covers the two hex digits.
	StrAscii
	// StrUnicode is \uHHHH; the span covers the four hex digits.
	StrUnicode
	// StrSpecial is one of \' \" \\ \b \f \n \r \t \v \0; the span covers
	// the character after the backslash.
	StrSpecial
	// StrEscape is any other backslash-prefixed character, passed through.
	StrEscape
)

// StrType is one fragment of a string literal.
type StrType struct {
	Kind StrKind
	Span Span
}

// NumKind classifies a number literal.
type NumKind uint8

const (
	Integer NumKind = iota + 1
	Decimal
	Hex
	Infinity
	NaN
)

// NumPart flags the optional parts of a number literal.
type NumPart uint8

const (
	HasInt NumPart = 1 << iota
	HasFrac
	HasExp
)

// NumType describes a number literal. Spans never include the sign; the sign
// is folded into the enclosing token span instead.
type NumType struct {
	Kind     NumKind
	Negative bool
	Parts    NumPart
	Int      Span // integer digits; for Hex the digits after the prefix
	Frac     Span // fraction digits, may be empty when HasFrac is set
	Exp      Span // exponent, including its own sign
	Prefix   Span // the "0x" of a hex literal
}

func (n NumType) Has(p NumPart) bool {
	return n.Parts&p != 0
}

func (n NumType) Name() string {
	var kind string
	switch n.Kind {
	case Integer:
		kind = "integer"
	case Decimal:
		kind = "decimal"
	case Hex:
		kind = "hexadecimal"
	case Infinity:
		return "Infinity"
	case NaN:
		return "NaN"
	default:
		return "number"
	}
	if n.Negative {
		return "negative " + kind
	}
	return kind
}
