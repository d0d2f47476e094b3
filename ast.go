package jsode

import (
	"github.com/cespare/xxhash/v2"

	"github.com/dpotapov/go-jsode/lexer"
)

// Span is re-exported from the lexer so callers rarely need to import it.
type Span = lexer.Span

// BlockKind classifies a Block.
type BlockKind uint8

const (
	ObjectBlock BlockKind = iota + 1
	ArrayBlock
	// PropBlock is a scalar value of an object property.
	PropBlock
	// ValueBlock is a scalar array item or a bare top-level scalar.
	ValueBlock
)

func (k BlockKind) String() string {
	switch k {
	case ObjectBlock:
		return "object"
	case ArrayBlock:
		return "array"
	case PropBlock:
		return "property"
	case ValueBlock:
		return "value"
	default:
		return "unknown"
	}
}

// Block is one node of the flat AST. Blocks are stored in pre-order: a
// container is followed by its whole subtree, and every offset a container
// holds is relative to the container's own index.
type Block struct {
	// Level is the nesting depth; the root block is level 0.
	Level int
	Kind  BlockKind

	// Keys maps the hash of a property key to the offset of its value.
	// Properties whose hash was already taken by a different key go to
	// Collided instead.
	Keys     map[uint64]int
	Collided []int
	// Fields lists the offsets of all properties in source order.
	Fields []int

	// Items lists the offsets of the array items in source order.
	Items []int

	// Type is the data type of a scalar block.
	Type lexer.JsonType

	// Key is the property key without quotes. Zero for array items and the
	// root block.
	Key Span
	// Span covers the value: punctuation included for containers, quotes
	// excluded for strings.
	Span Span
	// Whole covers the value together with its key when it is a property.
	Whole Span

	// Size is the number of blocks in the subtree, the block itself included.
	Size int
}

// IsContainer reports whether b is an object or an array.
func (b *Block) IsContainer() bool {
	return b.Kind == ObjectBlock || b.Kind == ArrayBlock
}

// TypeName describes the block's value for error messages.
func (b *Block) TypeName() string {
	switch b.Kind {
	case ObjectBlock:
		return "object"
	case ArrayBlock:
		return "array"
	default:
		return b.Type.Name()
	}
}

// hashKey hashes a property key. It is a variable so tests can force
// collisions.
var hashKey = xxhash.Sum64String

// keyIndex is the hash table of an object under construction or inspection.
type keyIndex struct {
	keys     map[uint64]int
	collided []int
}

// find returns the offset of the property named name. blocks starts at the
// object block and text resolves spans against the source.
func (ki keyIndex) find(blocks []Block, text func(Span) string, name string) (int, bool) {
	off, ok := ki.keys[hashKey(name)]
	if !ok {
		return 0, false
	}
	if off < len(blocks) && text(blocks[off].Key) == name {
		return off, true
	}
	for _, off := range ki.collided {
		if off < len(blocks) && text(blocks[off].Key) == name {
			return off, true
		}
	}
	return 0, false
}
