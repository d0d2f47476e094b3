package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpan_Edges(t *testing.T) {
	s := NewSpan(4, 10)
	assert.Equal(t, 6, s.Gap())
	assert.Equal(t, NewSpan(5, 9), s.Shrink(1))
	assert.Equal(t, NewSpan(10, 10), s.ShrinkLeft(20))
	assert.Equal(t, NewSpan(4, 4), s.ShrinkRight(20))
	assert.Equal(t, NewSpan(0, 12), s.ExpandLeft(7).ExpandRight(2))
	assert.Equal(t, NewSpan(4, 20), s.Extend(NewSpan(15, 20)))
	assert.True(t, Span{}.IsZero())
	assert.False(t, s.IsZero())
}

func TestSpan_Locate(t *testing.T) {
	src := "{\n  a: 1,\n  b\n}"
	tests := []struct {
		start    int
		row, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{4, 2, 3},
		{12, 3, 3},
		{100, 4, 2},
	}
	for _, tt := range tests {
		got := NewSpan(tt.start, tt.start).Locate(src)
		assert.Equal(t, tt.row, got.Row, "row at %d", tt.start)
		assert.Equal(t, tt.col, got.Col, "col at %d", tt.start)
		assert.Equal(t, tt.start, got.Start)
	}
}
