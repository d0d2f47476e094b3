package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(src string) []Token {
	var toks []Token
	tz := New(src)
	for {
		tok, ok := tz.Next()
		if !ok {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestTokenizer_Punctuation(t *testing.T) {
	got := collect("{ one:1}")

	want := []Token{
		punctToken(OpenCurly, 0, 1),
		punctToken(WhiteSpace, 1, 2),
		dataToken(JsonType{Kind: Ident}, 2, 5),
		punctToken(Colon, 5, 6),
		dataToken(JsonType{Kind: Num, Num: NumType{Kind: Integer, Parts: HasInt, Int: NewSpan(6, 7)}}, 6, 7),
		punctToken(CloseCurly, 7, 8),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens diff (-want +got):\n%s", diff)
	}
}

func TestTokenizer_WhitespaceRun(t *testing.T) {
	src := " \t\r\n\f\b\u00a0\ufeff\u2028\u2029["
	got := collect(src)
	require.Len(t, got, 2)
	assert.Equal(t, punctToken(WhiteSpace, 0, len(src)-1), got[0])
	assert.True(t, got[1].IsPunct(OpenSquare))
}

func TestTokenizer_Comments(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Span
		wantErr string
	}{
		{name: "line", input: "// hello\n1", want: NewSpan(0, 8)},
		{name: "line at eof", input: "// hello", want: NewSpan(0, 8)},
		{name: "block", input: "/* a * b */1", want: NewSpan(0, 11)},
		{name: "unterminated block", input: "/* a", wantErr: MsgUnterminatedComment},
		{name: "lonely slash", input: "/", wantErr: MsgInvalidComment},
		{name: "bad opener", input: "/x", wantErr: MsgInvalidComment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, ok := New(tt.input).Next()
			require.True(t, ok)
			if tt.wantErr != "" {
				assert.Equal(t, ErrorToken, tok.Kind)
				assert.Equal(t, tt.wantErr, tok.Msg)
				return
			}
			assert.Equal(t, CommentToken, tok.Kind)
			assert.Equal(t, tt.want, tok.Span)
		})
	}
}

func TestTokenizer_Strings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []StrType
	}{
		{
			name:  "empty",
			input: `""`,
			want:  nil,
		},
		{
			name:  "plain single quoted",
			input: `'abc'`,
			want:  []StrType{{Kind: StrLiteral, Span: NewSpan(1, 4)}},
		},
		{
			name:  "other quote inside",
			input: `"it's"`,
			want:  []StrType{{Kind: StrLiteral, Span: NewSpan(1, 5)}},
		},
		{
			name:  "all escape kinds",
			input: `"\x41\u0042\n\\\'z\/"`,
			want: []StrType{
				{Kind: StrAscii, Span: NewSpan(3, 5)},
				{Kind: StrUnicode, Span: NewSpan(7, 11)},
				{Kind: StrSpecial, Span: NewSpan(12, 13)},
				{Kind: StrSpecial, Span: NewSpan(14, 15)},
				{Kind: StrSpecial, Span: NewSpan(16, 17)},
				{Kind: StrLiteral, Span: NewSpan(17, 18)},
				{Kind: StrEscape, Span: NewSpan(19, 20)},
			},
		},
		{
			name:  "nul escape",
			input: `"a\0"`,
			want: []StrType{
				{Kind: StrLiteral, Span: NewSpan(1, 2)},
				{Kind: StrSpecial, Span: NewSpan(3, 4)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := collect(tt.input)
			require.Len(t, toks, 1)
			tok := toks[0]
			require.Equal(t, DataToken, tok.Kind, tok.Msg)
			assert.Equal(t, Str, tok.Data.Kind)
			assert.Equal(t, NewSpan(0, len(tt.input)), tok.Span)
			if diff := cmp.Diff(tt.want, tok.Data.Str); diff != "" {
				t.Errorf("fragments diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenizer_StringErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`'abc`, MsgMissingSingleQuote},
		{`"abc`, MsgMissingDoubleQuote},
		{`"\1"`, MsgInvalidEscape},
		{`"\x4"`, MsgCannotSatisfy},
		{`"\x4`, MsgSoonEOF},
		{`"\u12G4"`, MsgCannotSatisfy},
		{`"\u12`, MsgSoonEOF},
		{`"\`, MsgSoonEOF},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := collect(tt.input)
			require.NotEmpty(t, toks)
			last := toks[len(toks)-1]
			assert.Equal(t, ErrorToken, last.Kind)
			assert.Equal(t, tt.want, last.Msg)
		})
	}
}

func TestTokenizer_Numbers(t *testing.T) {
	tests := []struct {
		input string
		want  NumType
	}{
		{"0", NumType{Kind: Integer, Parts: HasInt, Int: NewSpan(0, 1)}},
		{"100", NumType{Kind: Integer, Parts: HasInt, Int: NewSpan(0, 3)}},
		{"1e10", NumType{Kind: Integer, Parts: HasInt | HasExp, Int: NewSpan(0, 1), Exp: NewSpan(2, 4)}},
		{"1E-10", NumType{Kind: Integer, Parts: HasInt | HasExp, Int: NewSpan(0, 1), Exp: NewSpan(2, 5)}},
		{"0e5", NumType{Kind: Integer, Parts: HasInt | HasExp, Int: NewSpan(0, 1), Exp: NewSpan(2, 3)}},
		{"99.99", NumType{Kind: Decimal, Parts: HasInt | HasFrac, Int: NewSpan(0, 2), Frac: NewSpan(3, 5)}},
		{"1.", NumType{Kind: Decimal, Parts: HasInt | HasFrac, Int: NewSpan(0, 1), Frac: NewSpan(2, 2)}},
		{"0.5", NumType{Kind: Decimal, Parts: HasInt | HasFrac, Int: NewSpan(0, 1), Frac: NewSpan(2, 3)}},
		{".5", NumType{Kind: Decimal, Parts: HasFrac, Frac: NewSpan(1, 2)}},
		{"1.5e+3", NumType{Kind: Decimal, Parts: HasInt | HasFrac | HasExp, Int: NewSpan(0, 1), Frac: NewSpan(2, 3), Exp: NewSpan(4, 6)}},
		{"0x20", NumType{Kind: Hex, Parts: HasInt, Int: NewSpan(2, 4), Prefix: NewSpan(0, 2)}},
		{"0XfF", NumType{Kind: Hex, Parts: HasInt, Int: NewSpan(2, 4), Prefix: NewSpan(0, 2)}},
		{"Infinity", NumType{Kind: Infinity}},
		{"NaN", NumType{Kind: NaN}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := collect(tt.input)
			require.Len(t, toks, 1)
			require.Equal(t, DataToken, toks[0].Kind, toks[0].Msg)
			assert.Equal(t, Num, toks[0].Data.Kind)
			assert.Equal(t, tt.want, toks[0].Data.Num)
			assert.Equal(t, NewSpan(0, len(tt.input)), toks[0].Span)
		})
	}
}

func TestTokenizer_SignedNumbers(t *testing.T) {
	tests := []struct {
		input    string
		sign     Punct
		negative bool
	}{
		{"-100", Minus, true},
		{"+100", Plus, false},
		{"-0x20", Minus, true},
		{"+99.99", Plus, false},
		{"-1e-10", Minus, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := collect(tt.input)
			require.Len(t, toks, 2)
			assert.True(t, toks[0].IsPunct(tt.sign))
			assert.Equal(t, NewSpan(0, 1), toks[0].Span)
			num := toks[1]
			require.Equal(t, DataToken, num.Kind, num.Msg)
			assert.Equal(t, tt.negative, num.Data.Num.Negative)
			// the sign is folded into the number span
			assert.Equal(t, NewSpan(0, len(tt.input)), num.Span)
		})
	}
}

func TestTokenizer_NumberErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"01", MsgLeadingZero},
		{"0x", MsgInvalidHex},
		{"0x1", MsgInvalidHex},
		{".", MsgInvalidDecimal},
		{".e5", MsgInvalidDecimal},
		{"1e", MsgInvalidExp},
		{"1e+", MsgInvalidExp},
		{"1.5E-x", MsgInvalidExp},
		{"-a", MsgInvalidSign},
		{"+", MsgInvalidSign},
		{"- 1", MsgInvalidSign},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := collect(tt.input)
			require.NotEmpty(t, toks)
			last := toks[len(toks)-1]
			assert.Equal(t, ErrorToken, last.Kind)
			assert.Equal(t, tt.want, last.Msg)
		})
	}
}

func TestTokenizer_Keywords(t *testing.T) {
	tests := []struct {
		input string
		want  JsonType
	}{
		{"true", JsonType{Kind: Bool, Bool: true}},
		{"false", JsonType{Kind: Bool}},
		{"null", JsonType{Kind: Null}},
		{"nan", JsonType{Kind: Ident}},
		{"infinity", JsonType{Kind: Ident}},
		{"trueish", JsonType{Kind: Ident}},
		{"_key$1", JsonType{Kind: Ident}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			toks := collect(tt.input)
			require.Len(t, toks, 1)
			assert.Equal(t, tt.want, toks[0].Data)
			assert.Equal(t, NewSpan(0, len(tt.input)), toks[0].Span)
		})
	}
}

func TestTokenizer_StopsAfterError(t *testing.T) {
	tz := New("[#, 1]")
	tok, ok := tz.Next()
	require.True(t, ok)
	assert.True(t, tok.IsPunct(OpenSquare))

	tok, ok = tz.Next()
	require.True(t, ok)
	assert.Equal(t, ErrorToken, tok.Kind)
	assert.Equal(t, MsgNotSupported, tok.Msg)
	assert.Equal(t, NewSpan(1, 2), tok.Span)

	_, ok = tz.Next()
	assert.False(t, ok)
}

func TestTokenizer_Text(t *testing.T) {
	tz := New("hello")
	assert.Equal(t, "ell", tz.Text(NewSpan(1, 4)))
	assert.Equal(t, "lo", tz.Text(NewSpan(3, 42)))
	assert.Equal(t, "", tz.Text(NewSpan(4, 2)))
}
