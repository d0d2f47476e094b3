package lexer

// Span is a half-open byte range [Start, End) in the source text.
//
// Row and Col are 1-based and only filled for spans attached to errors; spans
// stored in tokens and AST blocks leave them zero. See Locate.
type Span struct {
	Start int
	End   int
	Row   int
	Col   int
}

// NewSpan returns the span [start, end).
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Gap returns the length of the span in bytes.
func (s Span) Gap() int {
	return s.End - s.Start
}

// IsZero returns true if the span is uninitialized
func (s Span) IsZero() bool {
	return s == Span{}
}

// Extend returns the union of s and other, from s.Start to other.End.
func (s Span) Extend(other Span) Span {
	return Span{Start: s.Start, End: other.End}
}

// Shrink drops n bytes from both edges, e.g. to strip the quotes of a string.
func (s Span) Shrink(n int) Span {
	return s.ShrinkLeft(n).ShrinkRight(n)
}

func (s Span) ShrinkLeft(n int) Span {
	s.Start += n
	if s.Start > s.End {
		s.Start = s.End
	}
	return s
}

func (s Span) ShrinkRight(n int) Span {
	s.End -= n
	if s.End < s.Start {
		s.End = s.Start
	}
	return s
}

func (s Span) ExpandLeft(n int) Span {
	s.Start -= n
	if s.Start < 0 {
		s.Start = 0
	}
	return s
}

func (s Span) ExpandRight(n int) Span {
	s.End += n
	return s
}

// Locate returns a copy of s with Row and Col computed against src. Columns
// count bytes, not runes.
func (s Span) Locate(src string) Span {
	row, col := 1, 1
	for i := 0; i < s.Start && i < len(src); i++ {
		if src[i] == '\n' {
			row++
			col = 1
		} else {
			col++
		}
	}
	s.Row, s.Col = row, col
	return s
}
