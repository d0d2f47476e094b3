package jsode

import (
	"strconv"
	"strings"

	"github.com/dpotapov/go-jsode/lexer"
)

// Output is a handle to one value of a parsed document: a slice of the AST
// whose first block is the value itself, followed by its subtree. Handles are
// cheap to copy and share the parser's source text and blocks.
//
// Navigation only narrows the slice, so the same lookup on the same handle
// always returns the same sub-handle.
type Output struct {
	p   *Parser
	ast []Block
}

// IsValid reports whether o refers to a value.
func (o Output) IsValid() bool {
	return o.p != nil && len(o.ast) > 0
}

func (o Output) root() *Block {
	if !o.IsValid() {
		return nil
	}
	return &o.ast[0]
}

// Blocks returns the AST slice of the handle. Offsets stored in the first
// block are relative to index 0 of this slice.
func (o Output) Blocks() []Block {
	return o.ast
}

// Kind returns the kind of the value, or 0 for an invalid handle.
func (o Output) Kind() BlockKind {
	if b := o.root(); b != nil {
		return b.Kind
	}
	return 0
}

// Type returns the data type of a scalar value.
func (o Output) Type() lexer.JsonType {
	if b := o.root(); b != nil {
		return b.Type
	}
	return lexer.JsonType{}
}

// Span returns the span of the value. Strings exclude their quotes.
func (o Output) Span() Span {
	if b := o.root(); b != nil {
		return b.Span
	}
	return Span{}
}

// Slice returns the source text of the value.
func (o Output) Slice() string {
	if !o.IsValid() {
		return ""
	}
	return o.p.Text(o.ast[0].Span)
}

// Bytes is like Slice but returns a fresh byte slice.
func (o Output) Bytes() []byte {
	return []byte(o.Slice())
}

// KeyName returns the property key of the value, or "" when the value is not
// an object property.
func (o Output) KeyName() string {
	b := o.root()
	if b == nil || b.Key.IsZero() {
		return ""
	}
	return o.p.Text(b.Key)
}

// IsNull reports whether the value is the null literal.
func (o Output) IsNull() bool {
	b := o.root()
	return b != nil && !b.IsContainer() && b.Type.Kind == lexer.Null
}

// Len returns the number of properties of an object or items of an array.
func (o Output) Len() int {
	b := o.root()
	if b == nil {
		return 0
	}
	switch b.Kind {
	case ObjectBlock:
		return len(b.Fields)
	case ArrayBlock:
		return len(b.Items)
	}
	return 0
}

// Keys returns the property keys of an object in source order.
func (o Output) Keys() []string {
	b := o.root()
	if b == nil || b.Kind != ObjectBlock {
		return nil
	}
	keys := make([]string, 0, len(b.Fields))
	for _, off := range b.Fields {
		if off < len(o.ast) {
			keys = append(keys, o.p.Text(o.ast[off].Key))
		}
	}
	return keys
}

// Key returns the value of the property name. Keys are compared with their
// source text, escapes are not decoded.
func (o Output) Key(name string) (Output, bool) {
	b := o.root()
	if b == nil || b.Kind != ObjectBlock {
		return Output{}, false
	}
	ki := keyIndex{keys: b.Keys, collided: b.Collided}
	off, ok := ki.find(o.ast, o.p.Text, name)
	if !ok {
		return Output{}, false
	}
	return o.sub(off), true
}

// Item returns the i-th item of an array.
func (o Output) Item(i int) (Output, bool) {
	b := o.root()
	if b == nil || b.Kind != ArrayBlock || i < 0 || i >= len(b.Items) {
		return Output{}, false
	}
	start := b.Items[i]
	end := len(o.ast)
	if i+1 < len(b.Items) {
		end = b.Items[i+1]
	}
	if start >= end || end > len(o.ast) {
		return Output{}, false
	}
	return Output{p: o.p, ast: o.ast[start:end]}, true
}

// Index looks up a string key in an object or an int position in an array.
func (o Output) Index(key any) (Output, bool) {
	switch k := key.(type) {
	case string:
		return o.Key(k)
	case int:
		return o.Item(k)
	}
	return Output{}, false
}

// Path follows a dot separated path, e.g. "servers.0.host". Segments made of
// digits select array items; everything else selects object keys.
func (o Output) Path(path string) (Output, bool) {
	if path == "" {
		return o, o.IsValid()
	}
	cur := o
	for _, seg := range strings.Split(path, ".") {
		var ok bool
		if cur.Kind() == ArrayBlock {
			i, err := strconv.Atoi(seg)
			if err != nil {
				return Output{}, false
			}
			cur, ok = cur.Item(i)
		} else {
			cur, ok = cur.Key(seg)
		}
		if !ok {
			return Output{}, false
		}
	}
	return cur, true
}

// Items returns handles to every item of an array.
func (o Output) Items() []Output {
	n := 0
	if o.Kind() == ArrayBlock {
		n = o.Len()
	}
	items := make([]Output, 0, n)
	for i := 0; i < n; i++ {
		if item, ok := o.Item(i); ok {
			items = append(items, item)
		}
	}
	return items
}

// sub returns the subtree starting at off.
func (o Output) sub(off int) Output {
	end := off + o.ast[off].Size
	if end > len(o.ast) {
		end = len(o.ast)
	}
	return Output{p: o.p, ast: o.ast[off:end]}
}
