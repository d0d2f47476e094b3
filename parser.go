package jsode

import (
	"errors"
	"io"
	"log/slog"

	"github.com/dpotapov/go-jsode/lexer"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Parser turns JSON5 text into a flat AST of Blocks.
//
// Parsing does not recurse: open containers are kept on an explicit stack of
// frames, and each step consumes a few tokens for the frame on top. When a
// container closes, its collected keys and items are patched into its block.
type Parser struct {
	// Logger receives debug records about the parse. Defaults to a discard
	// logger.
	Logger *slog.Logger

	// MaxDepth limits container nesting when positive.
	MaxDepth int

	tz     *lexer.Tokenizer
	blocks []Block
	stack  []frame

	peeked  lexer.Token
	hasPeek bool

	done bool
	out  Output
	err  error
}

type frameKind uint8

const (
	objectFrame frameKind = iota + 1
	arrayFrame
	valueFrame
)

func (k frameKind) String() string {
	switch k {
	case objectFrame:
		return "object"
	case arrayFrame:
		return "array"
	case valueFrame:
		return "value"
	}
	return "unknown"
}

// frame is an open container, or the bare scalar of a scalar document.
type frame struct {
	kind   frameKind
	anchor int // index of the container block
	index  keyIndex
	fields []int
	items  []int
	value  lexer.Token // valueFrame
}

type step uint8

const (
	stepValue  step = iota + 1 // a scalar was appended to the top frame
	stepPushed                 // a nested container was opened
	stepClosed                 // the top frame was closed and popped
)

// skip is the set of tokens next passes over.
type skip uint8

const (
	skipSpace skip = 1 << iota
	skipComment
	skipSign

	skipBlank = skipSpace | skipComment
)

// NewParser returns a parser for text.
func NewParser(text string) *Parser {
	return &Parser{tz: lexer.New(text)}
}

// Parse parses text with the default parser settings.
func Parse(text string) (Output, error) {
	return NewParser(text).Parse()
}

// ParseBytes is like Parse but takes a byte slice.
func ParseBytes(data []byte) (Output, error) {
	return Parse(string(data))
}

// Parse builds the AST and returns a handle to the root. Calling it again
// returns the same result.
func (p *Parser) Parse() (Output, error) {
	if p.tz == nil {
		p.tz = lexer.New("")
	}
	if p.done {
		return p.out, p.err
	}
	p.done = true

	out, err := p.parse()
	if err != nil {
		attrs := []any{"error", err}
		var perr *Error
		if errors.As(err, &perr) {
			attrs = append(attrs, "kind", perr.Kind.String(), "start", perr.Span.Start, "end", perr.Span.End)
		}
		p.logger().Debug("parse failed", attrs...)
		p.err = err
		return Output{}, err
	}
	p.logger().Debug("parse done",
		"bytes", len(p.tz.Source()),
		"blocks", len(p.blocks),
		"root", out.Kind().String())
	p.out = out
	return out, nil
}

// Source returns the text being parsed.
func (p *Parser) Source() string {
	return p.tz.Source()
}

// Text returns the source text under s.
func (p *Parser) Text(s Span) string {
	return p.tz.Text(s)
}

// Blocks returns the parsed AST. The slice is owned by the parser.
func (p *Parser) Blocks() []Block {
	return p.blocks
}

func (p *Parser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return discardLogger
}

func (p *Parser) parse() (Output, error) {
	tok, ok, err := p.next(skipBlank | skipSign)
	if err != nil {
		return Output{}, err
	}
	if !ok {
		return Output{}, p.errorf(StructuralError, ErrEmptyInput, p.eofSpan(), "json input is empty")
	}

	switch {
	case tok.IsPunct(lexer.OpenCurly):
		err = p.open(objectFrame, tok, lexer.Span{}, tok.Span.Start)
	case tok.IsPunct(lexer.OpenSquare):
		err = p.open(arrayFrame, tok, lexer.Span{}, tok.Span.Start)
	case tok.Kind == lexer.DataToken:
		return p.scalar(tok)
	default:
		err = p.unexpected(tok, "at the start of the document")
	}
	if err != nil {
		return Output{}, err
	}

	for len(p.stack) > 0 {
		var st step
		switch p.stack[len(p.stack)-1].kind {
		case objectFrame:
			st, err = p.stepObject()
		case arrayFrame:
			st, err = p.stepArray()
		}
		if err != nil {
			return Output{}, err
		}
		if st == stepPushed || len(p.stack) == 0 {
			continue
		}
		if err := p.separator(); err != nil {
			return Output{}, err
		}
	}

	if tok, ok, err := p.next(skipBlank); err != nil {
		return Output{}, err
	} else if ok {
		return Output{}, p.errorf(StructuralError, ErrInvalidJSON, tok.Span,
			"invalid JSON: unexpected %s after the end of the document", describe(tok))
	}
	return Output{p: p, ast: p.blocks}, nil
}

// scalar handles a document that is a single scalar value.
func (p *Parser) scalar(tok lexer.Token) (Output, error) {
	if tok.Data.Kind == lexer.Ident {
		return Output{}, p.errorf(StructuralError, ErrInvalidJSON, tok.Span,
			"invalid JSON: identifier %q is not a value", p.Text(tok.Span))
	}
	p.stack = append(p.stack, frame{kind: valueFrame, value: tok})

	if next, ok, err := p.next(skipBlank); err != nil {
		return Output{}, err
	} else if ok {
		return Output{}, p.errorf(StructuralError, ErrInvalidJSON, next.Span,
			"invalid JSON: unexpected %s after a top-level value", describe(next))
	}

	f := p.pop()
	p.blocks = append(p.blocks, Block{
		Kind:  ValueBlock,
		Type:  f.value.Data,
		Span:  valueSpan(f.value),
		Whole: f.value.Span,
		Size:  1,
	})
	return Output{p: p, ast: p.blocks}, nil
}

func (p *Parser) stepObject() (step, error) {
	tok, ok, err := p.next(skipBlank)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, p.eof("missing close character }")
	}

	var key lexer.Span
	switch {
	case tok.IsPunct(lexer.CloseCurly):
		return stepClosed, p.rollup(tok.Span)
	case tok.Kind == lexer.DataToken && tok.Data.Kind == lexer.Ident:
		key = tok.Span
	case tok.Kind == lexer.DataToken && tok.Data.Kind == lexer.Str:
		key = tok.Span.Shrink(1)
	default:
		return 0, p.unexpected(tok, "when parsing key")
	}
	keyTok := tok

	f := &p.stack[len(p.stack)-1]
	name := p.Text(key)
	h := hashKey(name)
	_, taken := f.index.keys[h]
	if taken {
		if _, dup := f.index.find(p.blocks[f.anchor:], p.Text, name); dup {
			return 0, p.errorf(StructuralError, ErrDuplicateKey, key, "already exist key %q", name)
		}
	}

	if tok, ok, err = p.next(skipBlank); err != nil {
		return 0, err
	} else if !ok {
		return 0, p.eof("missing colon after key")
	} else if !tok.IsPunct(lexer.Colon) {
		return 0, p.unexpected(tok, "when expecting colon")
	}

	if tok, ok, err = p.next(skipBlank | skipSign); err != nil {
		return 0, err
	} else if !ok {
		return 0, p.eof("missing property value")
	}

	off := len(p.blocks) - f.anchor
	var kind frameKind
	switch {
	case tok.IsPunct(lexer.OpenCurly):
		kind = objectFrame
	case tok.IsPunct(lexer.OpenSquare):
		kind = arrayFrame
	case tok.Kind == lexer.DataToken:
	default:
		return 0, p.unexpected(tok, "when parsing property value")
	}

	if taken {
		f.index.collided = append(f.index.collided, off)
	} else {
		f.index.keys[h] = off
	}
	f.fields = append(f.fields, off)

	if kind != 0 {
		return stepPushed, p.open(kind, tok, key, keyTok.Span.Start)
	}
	p.blocks = append(p.blocks, Block{
		Level: len(p.stack),
		Kind:  PropBlock,
		Type:  tok.Data,
		Key:   key,
		Span:  valueSpan(tok),
		Whole: lexer.NewSpan(keyTok.Span.Start, tok.Span.End),
		Size:  1,
	})
	return stepValue, nil
}

func (p *Parser) stepArray() (step, error) {
	tok, ok, err := p.next(skipBlank | skipSign)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, p.eof("missing close character ]")
	}

	f := &p.stack[len(p.stack)-1]
	off := len(p.blocks) - f.anchor
	switch {
	case tok.IsPunct(lexer.CloseSquare):
		return stepClosed, p.rollup(tok.Span)
	case tok.IsPunct(lexer.OpenCurly):
		f.items = append(f.items, off)
		return stepPushed, p.open(objectFrame, tok, lexer.Span{}, tok.Span.Start)
	case tok.IsPunct(lexer.OpenSquare):
		f.items = append(f.items, off)
		return stepPushed, p.open(arrayFrame, tok, lexer.Span{}, tok.Span.Start)
	case tok.Kind == lexer.DataToken:
		f.items = append(f.items, off)
		p.blocks = append(p.blocks, Block{
			Level: len(p.stack),
			Kind:  ValueBlock,
			Type:  tok.Data,
			Span:  valueSpan(tok),
			Whole: tok.Span,
			Size:  1,
		})
		return stepValue, nil
	default:
		return 0, p.unexpected(tok, "when parsing array")
	}
}

// separator consumes what follows a value: a comma, or the closing
// punctuation of the top frame which is left for the next step.
func (p *Parser) separator() error {
	tok, ok, err := p.next(skipBlank)
	if err != nil {
		return err
	}
	top := p.stack[len(p.stack)-1]
	if !ok {
		if top.kind == objectFrame {
			return p.eof("missing close character }")
		}
		return p.eof("missing close character ]")
	}
	switch {
	case tok.IsPunct(lexer.Comma):
		return nil
	case top.kind == objectFrame && tok.IsPunct(lexer.CloseCurly),
		top.kind == arrayFrame && tok.IsPunct(lexer.CloseSquare):
		p.unread(tok)
		return nil
	default:
		return p.unexpected(tok, "when expecting comma or close")
	}
}

// open appends a container block and pushes its frame. wholeStart is where
// the key starts for a property, or the open punctuation otherwise.
func (p *Parser) open(kind frameKind, tok lexer.Token, key lexer.Span, wholeStart int) error {
	if p.MaxDepth > 0 && len(p.stack) >= p.MaxDepth {
		return p.errorf(StructuralError, ErrMaxDepth, tok.Span, "nesting deeper than %d", p.MaxDepth)
	}
	b := Block{
		Level: len(p.stack),
		Key:   key,
		Span:  tok.Span,
		Whole: lexer.NewSpan(wholeStart, tok.Span.End),
	}
	f := frame{kind: kind, anchor: len(p.blocks)}
	if kind == objectFrame {
		b.Kind = ObjectBlock
		f.index.keys = make(map[uint64]int)
	} else {
		b.Kind = ArrayBlock
	}
	p.blocks = append(p.blocks, b)
	p.stack = append(p.stack, f)
	return nil
}

// rollup pops the top frame and patches its block. Only container frames
// own a block.
func (p *Parser) rollup(closing lexer.Span) error {
	f := p.pop()
	switch f.kind {
	case objectFrame:
		b := &p.blocks[f.anchor]
		b.Keys = f.index.keys
		b.Collided = f.index.collided
		b.Fields = f.fields
	case arrayFrame:
		p.blocks[f.anchor].Items = f.items
	default:
		return p.errorf(StructuralError, ErrSyntax, closing, "internal: cannot roll up %v frame", f.kind)
	}
	b := &p.blocks[f.anchor]
	b.Span.End = closing.End
	b.Whole.End = closing.End
	b.Size = len(p.blocks) - f.anchor
	return nil
}

func (p *Parser) pop() frame {
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return f
}

// next returns the next token that is not in the skip set. ok is false at the
// end of input. Lexical errors are returned as errors.
func (p *Parser) next(s skip) (tok lexer.Token, ok bool, err error) {
	for {
		if p.hasPeek {
			tok, p.hasPeek = p.peeked, false
		} else if tok, ok = p.tz.Next(); !ok {
			return tok, false, nil
		}
		switch {
		case tok.Kind == lexer.ErrorToken:
			return tok, false, p.errorf(LexicalError, ErrSyntax, tok.Span, "%s", tok.Msg)
		case tok.Kind == lexer.CommentToken && s&skipComment != 0:
			continue
		case tok.IsPunct(lexer.WhiteSpace) && s&skipSpace != 0:
			continue
		case tok.Kind == lexer.PunctToken && tok.Punct.IsSign() && s&skipSign != 0:
			continue
		}
		return tok, true, nil
	}
}

func (p *Parser) unread(tok lexer.Token) {
	p.peeked, p.hasPeek = tok, true
}

func (p *Parser) eofSpan() lexer.Span {
	n := len(p.tz.Source())
	return lexer.NewSpan(n, n)
}

func (p *Parser) eof(msg string) error {
	return p.errorf(StructuralError, ErrUnexpectedEOF, p.eofSpan(), "unexpected end of input: %s", msg)
}

func (p *Parser) unexpected(tok lexer.Token, where string) error {
	return p.errorf(StructuralError, ErrSyntax, tok.Span, "not allow %s %s", describe(tok), where)
}

// valueSpan strips the quotes of a string token.
func valueSpan(tok lexer.Token) lexer.Span {
	if tok.Kind == lexer.DataToken && tok.Data.Kind == lexer.Str {
		return tok.Span.Shrink(1)
	}
	return tok.Span
}

func describe(tok lexer.Token) string {
	switch tok.Kind {
	case lexer.PunctToken:
		return "token '" + tok.Punct.String() + "'"
	case lexer.DataToken:
		return tok.Data.Name()
	case lexer.CommentToken:
		return "comment"
	default:
		return "token"
	}
}
