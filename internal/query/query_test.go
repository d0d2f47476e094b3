package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/go-jsode"
)

func TestEval(t *testing.T) {
	out, err := jsode.Parse(`{
		name: 'web',
		ports: [80, 443],
		debug: true,
		limits: {timeout: '90s'},
	}`)
	require.NoError(t, err)

	tests := []struct {
		expr string
		want any
	}{
		{expr: "name", want: "web"},
		{expr: "doc.name", want: "web"},
		{expr: "len(ports)", want: 2},
		{expr: "ports[1] > 400", want: true},
		{expr: "debug && name == 'web'", want: true},
		{expr: "duration(limits.timeout)", want: int64(90e9)},
		{expr: "missing", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Eval(out, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_ArrayDocument(t *testing.T) {
	out, err := jsode.Parse("[1, 2, 3]")
	require.NoError(t, err)

	got, err := Eval(out, "len(doc)")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = Eval(out, "doc[0]")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestEval_Errors(t *testing.T) {
	out, err := jsode.Parse("{a: 1}")
	require.NoError(t, err)

	_, err = Eval(out, "1 +")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile")

	_, err = Eval(out, "duration('soon')")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse duration")
}

func TestCompile_Reuse(t *testing.T) {
	first, err := jsode.Parse("{n: 1}")
	require.NoError(t, err)
	second, err := jsode.Parse("{n: 41}")
	require.NoError(t, err)

	doc1, err := first.Value()
	require.NoError(t, err)
	prog, err := Compile("n + 1", doc1)
	require.NoError(t, err)

	doc2, err := second.Value()
	require.NoError(t, err)
	got, err := Run(prog, doc2)
	require.NoError(t, err)
	assert.EqualValues(t, 42, got)
}
