package jsode

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listener struct {
	Host string
	Port uint16
}

type limits struct {
	MaxConns int           `jsode:"max_connections"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

type service struct {
	Name      string
	Listen    listener
	Backups   []listener
	Limits    *limits
	Labels    map[string]string `json:",omitempty"`
	HTTPPort  int
	Replicas2 int `jsode:"replicas,omitempty"`

	Ignored  string `jsode:"-"`
	internal int
	Marker   struct{}
}

func TestDecode_Record(t *testing.T) {
	out := mustParse(t, `{
		name: 'api',
		listen: {host: '0.0.0.0', port: 8080},
		backups: [{host: 'b1', port: 1}, {host: 'b2', port: 0x02}],
		limits: {max_connections: 100, timeout: '5s'},
		labels: {tier: "web"},
		http_port: 80,
		ignored: 'never read',
		internal: 7,
	}`)

	got, err := ParseInto[service](out)
	require.NoError(t, err)

	want := service{
		Name:     "api",
		Listen:   listener{Host: "0.0.0.0", Port: 8080},
		Backups:  []listener{{Host: "b1", Port: 1}, {Host: "b2", Port: 2}},
		Limits:   &limits{MaxConns: 100, Timeout: 5 * time.Second},
		Labels:   map[string]string{"tier": "web"},
		HTTPPort: 80,
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(service{})); diff != "" {
		t.Errorf("record diff (-want +got):\n%s", diff)
	}
}

func TestDecode_RecordShortHex(t *testing.T) {
	_, err := Parse(`{host: 'b2', port: 0x2}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), "invalid hexadecimal")

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, LexicalError, perr.Kind)

	got, err := ParseInto[listener](mustParse(t, `{host: 'b2', port: 0x02}`))
	require.NoError(t, err)
	assert.Equal(t, listener{Host: "b2", Port: 2}, got)
}

func TestDecode_RecordNullable(t *testing.T) {
	out := mustParse(t, `{name: 'api', listen: {host: 'h', port: 1}, backups: [], http_port: 1}`)

	got, err := ParseInto[service](out)
	require.NoError(t, err)
	assert.Nil(t, got.Limits)
	assert.Nil(t, got.Labels)
	assert.Equal(t, 0, got.Replicas2)

	out = mustParse(t, `{name: 'api', listen: {host: 'h', port: 1}, backups: [], http_port: 1, limits: null}`)
	got, err = ParseInto[service](out)
	require.NoError(t, err)
	assert.Nil(t, got.Limits)
}

func TestDecode_RecordMissingKey(t *testing.T) {
	out := mustParse(t, `{name: 'api', backups: [], http_port: 1}`)

	_, err := ParseInto[service](out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingKey)

	var derr *DecodeError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "listen", derr.Key)
	assert.Contains(t, err.Error(), "key not found: `listen`")
}

func TestDecode_RecordNestedError(t *testing.T) {
	out := mustParse(t, `{name: 'api', listen: {host: 'h', port: -1}, backups: [], http_port: 1}`)

	_, err := ParseInto[service](out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegativeUnsigned)

	var outer *DecodeError
	require.ErrorAs(t, err, &outer)
	assert.Equal(t, "listen", outer.Key)

	var inner *DecodeError
	require.ErrorAs(t, outer.Err, &inner)
	assert.Equal(t, "port", inner.Key)
}

func TestDecode_RecordNotObject(t *testing.T) {
	_, err := ParseInto[listener](mustParse(t, "[1, 2]"))
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Contains(t, err.Error(), "cannot convert type array to type jsode.listener")
}

type base struct {
	ID      string
	Version int `json:"v"`
}

type document struct {
	base
	Body string
}

type taggedEmbed struct {
	Base base `jsode:"meta"`
}

func TestDecode_RecordEmbedded(t *testing.T) {
	doc, err := ParseInto[document](mustParse(t, `{id: 'x1', v: 3, body: 'hello'}`))
	require.NoError(t, err)
	assert.Equal(t, document{base: base{ID: "x1", Version: 3}, Body: "hello"}, doc)

	tagged, err := ParseInto[taggedEmbed](mustParse(t, `{meta: {id: 'x2', v: 1}}`))
	require.NoError(t, err)
	assert.Equal(t, "x2", tagged.Base.ID)
}

func TestDecode_RecordMarkersUntouched(t *testing.T) {
	v := service{Ignored: "keep", internal: 9}
	err := mustParse(t, `{name: 'n', listen: {host: 'h', port: 1}, backups: [], http_port: 2, ignored: 'x', internal: 1}`).Decode(&v)
	require.NoError(t, err)
	assert.Equal(t, "keep", v.Ignored)
	assert.Equal(t, 9, v.internal)
}

func TestDecode_RecordFieldCache(t *testing.T) {
	first := recordFields(reflect.TypeOf(service{}))
	second := recordFields(reflect.TypeOf(service{}))
	assert.Equal(t, first, second)

	var keys []string
	for _, f := range first {
		keys = append(keys, f.key)
	}
	assert.Equal(t, []string{"name", "listen", "backups", "limits", "labels", "http_port", "replicas"}, keys)
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Name", "name"},
		{"StreetAddress", "street_address"},
		{"HTTPPort", "http_port"},
		{"ID", "id"},
		{"Line2", "line2"},
		{"GL11Version", "gl11_version"},
		{"Already_Snake", "already_snake"},
		{"MaxDepth", "max_depth"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, toSnakeCase(tt.in))
		})
	}
}

func TestDecodeError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &DecodeError{Key: "k", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, `decode "k": boom`, err.Error())
}
