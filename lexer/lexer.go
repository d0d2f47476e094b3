// Package lexer implements the byte-level tokenizer for JSON5-like text.
//
// The Tokenizer never copies the source: every Token refers back to it by
// Span. Escape sequences and the number grammar are validated while scanning,
// so a DataToken is always well formed; problems are reported as ErrorToken
// and end the token stream.
package lexer

import (
	"strings"
	"unicode/utf8"
)

// Messages carried by ErrorToken.
const (
	MsgMissingSingleQuote  = "missing string's close character '"
	MsgMissingDoubleQuote  = "missing string's close character \""
	MsgNotSupported        = "token not supported"
	MsgInvalidComment      = "invalid comment"
	MsgUnterminatedComment = "unterminated comment"
	MsgInvalidEscape       = "invalid escape"
	MsgSoonEOF             = "soon EOF"
	MsgCannotSatisfy       = "cannot satisfy condition"
	MsgLeadingZero         = "leading zero not allowed"
	MsgInvalidHex          = "invalid hexadecimal"
	MsgInvalidExp          = "invalid exponential number"
	MsgInvalidDecimal      = "invalid decimal number"
	MsgInvalidSign         = "sign must be followed by a digit"
)

// A Tokenizer scans a source text and yields one Token per call to Next.
type Tokenizer struct {
	// src is the text being scanned.
	src string
	// pos is the offset of the next unread byte.
	pos int
	// sign is the + or - emitted right before the current position, if any.
	// The following number folds it into its own span.
	sign   Punct
	signAt int
	// done is set once an ErrorToken was produced.
	done bool
}

// New returns a Tokenizer over src.
func New(src string) *Tokenizer {
	return &Tokenizer{src: src}
}

// Source returns the complete text being scanned.
func (t *Tokenizer) Source() string {
	return t.src
}

// Pos returns the offset of the next unread byte.
func (t *Tokenizer) Pos() int {
	return t.pos
}

// Text returns the source text under s, clamped to the bounds of the source.
func (t *Tokenizer) Text(s Span) string {
	start, end := s.Start, s.End
	if start < 0 {
		start = 0
	}
	if end > len(t.src) {
		end = len(t.src)
	}
	if start >= end {
		return ""
	}
	return t.src[start:end]
}

// peek returns the byte at pos+off, or 0 past the end of the source.
func (t *Tokenizer) peek(off int) byte {
	if i := t.pos + off; i >= 0 && i < len(t.src) {
		return t.src[i]
	}
	return 0
}

func (t *Tokenizer) fail(msg string, start, end int) (Token, bool) {
	t.done = true
	if end > len(t.src) {
		end = len(t.src)
	}
	return errorToken(msg, start, end), true
}

// Next scans the next token. It returns false at the end of input and after an
// ErrorToken has been returned.
func (t *Tokenizer) Next() (Token, bool) {
	if t.done || t.pos >= len(t.src) {
		return Token{}, false
	}
	start := t.pos
	c := t.src[start]

	if t.spaceWidth(start) > 0 {
		return t.scanSpace()
	}

	switch {
	case c == '{':
		return t.punct(OpenCurly)
	case c == '}':
		return t.punct(CloseCurly)
	case c == '[':
		return t.punct(OpenSquare)
	case c == ']':
		return t.punct(CloseSquare)
	case c == ':':
		return t.punct(Colon)
	case c == ',':
		return t.punct(Comma)
	case c == '/':
		return t.scanComment()
	case c == '\'' || c == '"':
		return t.scanString(c)
	case c == '+' || c == '-':
		if !isDigit(t.peek(1)) {
			return t.fail(MsgInvalidSign, start, start+1)
		}
		p := Plus
		if c == '-' {
			p = Minus
		}
		t.sign, t.signAt = p, start
		return t.punct(p)
	case c == '0':
		return t.scanZero()
	case c == '.' || isDigit(c):
		return t.scanDecimal()
	case isIdentStart(c):
		return t.scanIdent()
	default:
		_, w := utf8.DecodeRuneInString(t.src[start:])
		return t.fail(MsgNotSupported, start, start+w)
	}
}

func (t *Tokenizer) punct(p Punct) (Token, bool) {
	start := t.pos
	t.pos++
	return punctToken(p, start, t.pos), true
}

// spaceWidth returns the byte width of the whitespace character at i, or 0.
func (t *Tokenizer) spaceWidth(i int) int {
	switch c := t.src[i]; c {
	case ' ', '\t', '\n', '\r', '\f', '\b', 0xA0:
		return 1
	case 0xC2:
		if strings.HasPrefix(t.src[i:], "\u00a0") {
			return 2
		}
	case 0xE2:
		if strings.HasPrefix(t.src[i:], "\u2028") || strings.HasPrefix(t.src[i:], "\u2029") {
			return 3
		}
	case 0xEF:
		if strings.HasPrefix(t.src[i:], "\ufeff") {
			return 3
		}
	}
	return 0
}

func (t *Tokenizer) scanSpace() (Token, bool) {
	start := t.pos
	for t.pos < len(t.src) {
		w := t.spaceWidth(t.pos)
		if w == 0 {
			break
		}
		t.pos += w
	}
	return punctToken(WhiteSpace, start, t.pos), true
}

func (t *Tokenizer) scanComment() (Token, bool) {
	start := t.pos
	switch t.peek(1) {
	case '/':
		end := len(t.src)
		if i := strings.IndexByte(t.src[start+2:], '\n'); i >= 0 {
			end = start + 2 + i
		}
		t.pos = end
	case '*':
		i := strings.Index(t.src[start+2:], "*/")
		if i < 0 {
			return t.fail(MsgUnterminatedComment, start, len(t.src))
		}
		t.pos = start + 2 + i + 2
	default:
		return t.fail(MsgInvalidComment, start, start+2)
	}
	return Token{Kind: CommentToken, Span: NewSpan(start, t.pos)}, true
}

func (t *Tokenizer) scanString(quote byte) (Token, bool) {
	start := t.pos
	t.pos++

	var frags []StrType
	lit := t.pos
	flush := func() {
		if t.pos > lit {
			frags = append(frags, StrType{Kind: StrLiteral, Span: NewSpan(lit, t.pos)})
		}
	}

	for t.pos < len(t.src) {
		switch t.src[t.pos] {
		case quote:
			flush()
			t.pos++
			return dataToken(JsonType{Kind: Str, Str: frags}, start, t.pos), true
		case '\\':
			flush()
			frag, msg := t.scanEscape()
			if msg != "" {
				return t.fail(msg, start, t.pos)
			}
			frags = append(frags, frag)
			lit = t.pos
		default:
			t.pos++
		}
	}

	if quote == '\'' {
		return t.fail(MsgMissingSingleQuote, start, len(t.src))
	}
	return t.fail(MsgMissingDoubleQuote, start, len(t.src))
}

// scanEscape scans the escape sequence at t.pos, which holds the backslash.
// On failure it returns a message and leaves t.pos past the offending bytes.
func (t *Tokenizer) scanEscape() (StrType, string) {
	esc := t.pos
	if esc+1 >= len(t.src) {
		t.pos = len(t.src)
		return StrType{}, MsgSoonEOF
	}
	switch c := t.src[esc+1]; {
	case c == 'x':
		return t.scanHexEscape(StrAscii, 2)
	case c == 'u':
		return t.scanHexEscape(StrUnicode, 4)
	case strings.IndexByte(`'"\bfnrtv0`, c) >= 0:
		t.pos = esc + 2
		return StrType{Kind: StrSpecial, Span: NewSpan(esc+1, esc+2)}, ""
	case isDigit(c):
		t.pos = esc + 2
		return StrType{}, MsgInvalidEscape
	default:
		_, w := utf8.DecodeRuneInString(t.src[esc+1:])
		t.pos = esc + 1 + w
		return StrType{Kind: StrEscape, Span: NewSpan(esc+1, t.pos)}, ""
	}
}

func (t *Tokenizer) scanHexEscape(kind StrKind, digits int) (StrType, string) {
	from := t.pos + 2
	to := from + digits
	if to > len(t.src) {
		t.pos = len(t.src)
		return StrType{}, MsgSoonEOF
	}
	for i := from; i < to; i++ {
		if !isHex(t.src[i]) {
			t.pos = i + 1
			return StrType{}, MsgCannotSatisfy
		}
	}
	t.pos = to
	return StrType{Kind: kind, Span: NewSpan(from, to)}, ""
}

// numberStart consumes the pending sign, if it immediately precedes start, and
// returns where the number token begins.
func (t *Tokenizer) numberStart(start int) (int, bool) {
	sign := t.sign
	t.sign = 0
	if sign != 0 && t.signAt == start-1 {
		return t.signAt, sign == Minus
	}
	return start, false
}

func (t *Tokenizer) scanZero() (Token, bool) {
	start := t.pos
	switch next := t.peek(1); {
	case next == 'x' || next == 'X':
		tokStart, neg := t.numberStart(start)
		t.pos += 2
		digits := t.pos
		for t.pos < len(t.src) && isHex(t.src[t.pos]) {
			t.pos++
		}
		if t.pos-digits < 2 {
			return t.fail(MsgInvalidHex, tokStart, t.pos)
		}
		n := NumType{
			Kind:     Hex,
			Negative: neg,
			Parts:    HasInt,
			Int:      NewSpan(digits, t.pos),
			Prefix:   NewSpan(start, start+2),
		}
		return dataToken(JsonType{Kind: Num, Num: n}, tokStart, t.pos), true
	case isDigit(next):
		tokStart, _ := t.numberStart(start)
		return t.fail(MsgLeadingZero, tokStart, start+2)
	default:
		return t.scanDecimal()
	}
}

// scanDecimal scans an integer or decimal number starting at t.pos, which is
// either a digit or the dot of a number with an empty integer part.
func (t *Tokenizer) scanDecimal() (Token, bool) {
	start := t.pos
	tokStart, neg := t.numberStart(start)
	n := NumType{Kind: Integer, Negative: neg}

	if isDigit(t.peek(0)) {
		t.skipDigits()
		n.Int = NewSpan(start, t.pos)
		n.Parts |= HasInt
	}
	if t.peek(0) == '.' {
		t.pos++
		frac := t.pos
		t.skipDigits()
		if !n.Has(HasInt) && t.pos == frac {
			return t.fail(MsgInvalidDecimal, tokStart, t.pos)
		}
		n.Kind = Decimal
		n.Frac = NewSpan(frac, t.pos)
		n.Parts |= HasFrac
	}
	if c := t.peek(0); c == 'e' || c == 'E' {
		t.pos++
		exp := t.pos
		if c := t.peek(0); c == '+' || c == '-' {
			t.pos++
		}
		digits := t.pos
		t.skipDigits()
		if t.pos == digits {
			return t.fail(MsgInvalidExp, tokStart, t.pos)
		}
		n.Exp = NewSpan(exp, t.pos)
		n.Parts |= HasExp
	}
	return dataToken(JsonType{Kind: Num, Num: n}, tokStart, t.pos), true
}

func (t *Tokenizer) skipDigits() {
	for t.pos < len(t.src) && isDigit(t.src[t.pos]) {
		t.pos++
	}
}

func (t *Tokenizer) scanIdent() (Token, bool) {
	start := t.pos
	for t.pos < len(t.src) && isIdentPart(t.src[t.pos]) {
		t.pos++
	}
	var typ JsonType
	switch t.src[start:t.pos] {
	case "true":
		typ = JsonType{Kind: Bool, Bool: true}
	case "false":
		typ = JsonType{Kind: Bool}
	case "null":
		typ = JsonType{Kind: Null}
	case "Infinity":
		typ = JsonType{Kind: Num, Num: NumType{Kind: Infinity}}
	case "NaN":
		typ = JsonType{Kind: Num, Num: NumType{Kind: NaN}}
	default:
		typ = JsonType{Kind: Ident}
	}
	return dataToken(typ, start, t.pos), true
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
