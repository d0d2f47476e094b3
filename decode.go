package jsode

import (
	"encoding"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dpotapov/go-jsode/lexer"
)

// Deserializer is implemented by types that build themselves from a parsed
// value. Decode calls it instead of the built-in conversions.
type Deserializer interface {
	DeserializeJSON5(out Output) error
}

var (
	deserializerType    = reflect.TypeOf((*Deserializer)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	durationType        = reflect.TypeOf(time.Duration(0))
)

// ParseInto converts the value of out to T.
func ParseInto[T any](out Output) (T, error) {
	var v T
	err := out.Decode(&v)
	return v, err
}

// Unmarshal parses text and decodes the document into v.
func Unmarshal(text string, v any) error {
	out, err := Parse(text)
	if err != nil {
		return err
	}
	return out.Decode(v)
}

// Decode stores the value of o in the value pointed to by v.
//
// Numbers convert to Go integers and floats with range checks, strings decode
// their escapes, arrays fill slices and fixed size arrays, objects fill maps
// with string keys and structs (see the package documentation for field
// naming). Pointers accept null. An empty interface receives map[string]any,
// []any, string, int64, uint64, float64, bool or nil.
func (o Output) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("jsode: decode target must be a non-nil pointer, got %T", v)
	}
	if !o.IsValid() {
		return errors.New("jsode: decode of an invalid handle")
	}
	return o.decode(rv.Elem())
}

func (o Output) decode(rv reflect.Value) error {
	t := rv.Type()
	if rv.CanAddr() {
		pt := reflect.PointerTo(t)
		if pt.Implements(deserializerType) {
			return rv.Addr().Interface().(Deserializer).DeserializeJSON5(o)
		}
		if pt.Implements(textUnmarshalerType) {
			s, err := o.Str()
			if err != nil {
				return err
			}
			if err := rv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
				return o.p.errorf(ConversionError, err, o.Span(), "cannot convert %q to type %s: %v", s, t, err)
			}
			return nil
		}
	}
	if t == durationType {
		return o.decodeDuration(rv)
	}

	switch t.Kind() {
	case reflect.Pointer:
		if o.IsNull() {
			rv.Set(reflect.Zero(t))
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(t.Elem()))
		}
		return o.decode(rv.Elem())
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return o.mismatch(t.String())
		}
		v, err := o.Value()
		if err != nil {
			return err
		}
		if v == nil {
			rv.Set(reflect.Zero(t))
		} else {
			rv.Set(reflect.ValueOf(v))
		}
		return nil
	case reflect.Bool:
		b, err := o.Bool()
		if err != nil {
			return err
		}
		rv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := o.convertInt(t.String(), t.Bits())
		if err != nil {
			return err
		}
		rv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := o.convertUint(t.String(), t.Bits())
		if err != nil {
			return err
		}
		rv.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := o.convertFloat(t.String(), t.Bits())
		if err != nil {
			return err
		}
		rv.SetFloat(f)
		return nil
	case reflect.String:
		s, err := o.Str()
		if err != nil {
			return err
		}
		rv.SetString(s)
		return nil
	case reflect.Slice:
		return o.decodeSlice(rv)
	case reflect.Array:
		return o.decodeArray(rv)
	case reflect.Map:
		return o.decodeMap(rv)
	case reflect.Struct:
		return o.decodeStruct(rv)
	}
	return o.mismatch(t.String())
}

// mismatch reports that the value cannot become the type named want.
func (o Output) mismatch(want string) error {
	b := o.root()
	return o.p.errorf(ConversionError, ErrTypeMismatch, b.Span,
		"cannot convert type %s to type %s", b.TypeName(), want)
}

// number returns the number type of a scalar value.
func (o Output) number(want string) (lexer.NumType, error) {
	b := o.root()
	if b == nil {
		return lexer.NumType{}, errors.New("jsode: conversion of an invalid handle")
	}
	if b.IsContainer() || b.Type.Kind != lexer.Num {
		return lexer.NumType{}, o.mismatch(want)
	}
	return b.Type.Num, nil
}

// Uint converts an integer value to an unsigned integer of the given bit size.
func (o Output) Uint(bitSize int) (uint64, error) {
	return o.convertUint("uint"+strconv.Itoa(bitSize), bitSize)
}

// Int converts an integer value to a signed integer of the given bit size.
func (o Output) Int(bitSize int) (int64, error) {
	return o.convertInt("int"+strconv.Itoa(bitSize), bitSize)
}

// Float converts a number to a float of the given bit size.
func (o Output) Float(bitSize int) (float64, error) {
	return o.convertFloat("float"+strconv.Itoa(bitSize), bitSize)
}

func (o Output) convertUint(want string, bitSize int) (uint64, error) {
	n, err := o.number(want)
	if err != nil {
		return 0, err
	}
	if n.Kind != lexer.Integer && n.Kind != lexer.Hex {
		return 0, o.mismatch(want)
	}
	if n.Negative {
		return 0, o.p.errorf(ConversionError, ErrNegativeUnsigned, o.Span(),
			"cannot convert %s to %s", n.Name(), want)
	}
	mag, err := o.magnitude(n, want)
	if err != nil {
		return 0, err
	}
	if bitSize < 64 && mag > 1<<bitSize-1 {
		return 0, o.overflow(want)
	}
	return mag, nil
}

func (o Output) convertInt(want string, bitSize int) (int64, error) {
	n, err := o.number(want)
	if err != nil {
		return 0, err
	}
	if n.Kind != lexer.Integer && n.Kind != lexer.Hex {
		return 0, o.mismatch(want)
	}
	mag, err := o.magnitude(n, want)
	if err != nil {
		return 0, err
	}
	limit := uint64(1) << (bitSize - 1)
	if n.Negative {
		if mag > limit {
			return 0, o.overflow(want)
		}
		if mag == 0 {
			return 0, nil
		}
		return -int64(mag-1) - 1, nil
	}
	if mag >= limit {
		return 0, o.overflow(want)
	}
	return int64(mag), nil
}

// magnitude returns the absolute value of an integer literal, applying a
// decimal exponent. Exponents that leave a fraction are rejected.
func (o Output) magnitude(n lexer.NumType, want string) (uint64, error) {
	digits := o.p.Text(n.Int)
	base := 10
	if n.Kind == lexer.Hex {
		base = 16
	} else if n.Has(lexer.HasExp) {
		exp, err := strconv.Atoi(o.p.Text(n.Exp))
		if err != nil {
			return 0, o.overflow(want)
		}
		digits = strings.TrimLeft(digits, "0")
		switch {
		case digits == "":
			return 0, nil
		case exp < 0:
			trimmed := strings.TrimRight(digits, "0")
			if len(digits)-len(trimmed) < -exp {
				return 0, o.p.errorf(ConversionError, ErrTypeMismatch, o.Span(),
					"cannot convert fractional %s to %s", n.Name(), want)
			}
			digits = digits[:len(digits)+exp]
		case exp > 20:
			return 0, o.overflow(want)
		default:
			digits += strings.Repeat("0", exp)
		}
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, o.overflow(want)
		}
		return 0, o.p.errorf(ConversionError, err, o.Span(), "cannot convert %s to %s: %v", n.Name(), want, err)
	}
	return v, nil
}

func (o Output) overflow(want string) error {
	return o.p.errorf(ConversionError, ErrOverflow, o.Span(), "%s overflows %s", o.Slice(), want)
}

func (o Output) convertFloat(want string, bitSize int) (float64, error) {
	n, err := o.number(want)
	if err != nil {
		return 0, err
	}
	switch n.Kind {
	case lexer.Integer, lexer.Decimal:
		f, err := strconv.ParseFloat(o.Slice(), bitSize)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return 0, o.overflow(want)
			}
			return 0, o.p.errorf(ConversionError, err, o.Span(), "cannot convert %s to %s: %v", n.Name(), want, err)
		}
		return f, nil
	case lexer.Infinity:
		if n.Negative {
			return math.Inf(-1), nil
		}
		return math.Inf(1), nil
	case lexer.NaN:
		return math.NaN(), nil
	}
	return 0, o.mismatch(want)
}

// Bool converts a boolean value.
func (o Output) Bool() (bool, error) {
	b := o.root()
	if b == nil {
		return false, errors.New("jsode: conversion of an invalid handle")
	}
	if b.IsContainer() || b.Type.Kind != lexer.Bool {
		return false, o.mismatch("bool")
	}
	return b.Type.Bool, nil
}

// Str decodes a string value, resolving its escape sequences.
func (o Output) Str() (string, error) {
	b := o.root()
	if b == nil {
		return "", errors.New("jsode: conversion of an invalid handle")
	}
	if b.IsContainer() || b.Type.Kind != lexer.Str {
		return "", o.mismatch("string")
	}
	return decodeString(o.p.Text, b.Type.Str), nil
}

var specialEscapes = [256]byte{
	'\'': '\'',
	'"':  '"',
	'\\': '\\',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'0':  0,
}

func decodeString(text func(Span) string, frags []lexer.StrType) string {
	if len(frags) == 1 && frags[0].Kind == lexer.StrLiteral {
		return text(frags[0].Span)
	}
	var sb strings.Builder
	for i := 0; i < len(frags); i++ {
		f := frags[i]
		s := text(f.Span)
		switch f.Kind {
		case lexer.StrLiteral, lexer.StrEscape:
			sb.WriteString(s)
		case lexer.StrSpecial:
			sb.WriteByte(specialEscapes[s[0]])
		case lexer.StrAscii:
			v, _ := strconv.ParseUint(s, 16, 8)
			sb.WriteRune(rune(v))
		case lexer.StrUnicode:
			v, _ := strconv.ParseUint(s, 16, 16)
			r := rune(v)
			if utf16.IsSurrogate(r) && i+1 < len(frags) && frags[i+1].Kind == lexer.StrUnicode {
				lo, _ := strconv.ParseUint(text(frags[i+1].Span), 16, 16)
				if pair := utf16.DecodeRune(r, rune(lo)); pair != utf8.RuneError {
					sb.WriteRune(pair)
					i++
					continue
				}
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (o Output) decodeDuration(rv reflect.Value) error {
	b := o.root()
	if !b.IsContainer() && b.Type.Kind == lexer.Num {
		n, err := o.convertInt("time.Duration", 64)
		if err != nil {
			return err
		}
		rv.SetInt(n)
		return nil
	}
	s, err := o.Str()
	if err != nil {
		return o.mismatch("time.Duration")
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return o.p.errorf(ConversionError, err, b.Span, "cannot convert %q to time.Duration", s)
	}
	rv.SetInt(int64(d))
	return nil
}

func (o Output) decodeSlice(rv reflect.Value) error {
	if o.Kind() != ArrayBlock {
		return o.mismatch(rv.Type().String())
	}
	n := o.Len()
	s := reflect.MakeSlice(rv.Type(), n, n)
	for i := 0; i < n; i++ {
		item, _ := o.Item(i)
		if err := item.decode(s.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(s)
	return nil
}

func (o Output) decodeArray(rv reflect.Value) error {
	if o.Kind() != ArrayBlock {
		return o.mismatch(rv.Type().String())
	}
	if o.Len() != rv.Len() {
		return o.p.errorf(ConversionError, ErrTypeMismatch, o.Span(),
			"cannot convert array of %d items to type %s", o.Len(), rv.Type())
	}
	for i := 0; i < rv.Len(); i++ {
		item, _ := o.Item(i)
		if err := item.decode(rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (o Output) decodeMap(rv reflect.Value) error {
	t := rv.Type()
	if t.Key().Kind() != reflect.String || o.Kind() != ObjectBlock {
		return o.mismatch(t.String())
	}
	m := reflect.MakeMapWithSize(t, o.Len())
	for _, key := range o.Keys() {
		sub, _ := o.Key(key)
		elem := reflect.New(t.Elem()).Elem()
		if err := sub.decode(elem); err != nil {
			return &DecodeError{Key: key, Err: err}
		}
		m.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), elem)
	}
	rv.Set(m)
	return nil
}

// Value converts the value to plain Go values: map[string]any, []any,
// string, bool, nil, and int64, uint64 or float64 for numbers.
func (o Output) Value() (any, error) {
	b := o.root()
	if b == nil {
		return nil, errors.New("jsode: conversion of an invalid handle")
	}
	switch b.Kind {
	case ObjectBlock:
		m := make(map[string]any, len(b.Fields))
		for _, key := range o.Keys() {
			sub, _ := o.Key(key)
			v, err := sub.Value()
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		return m, nil
	case ArrayBlock:
		items := o.Items()
		s := make([]any, len(items))
		for i, item := range items {
			v, err := item.Value()
			if err != nil {
				return nil, err
			}
			s[i] = v
		}
		return s, nil
	}

	switch b.Type.Kind {
	case lexer.Str:
		return o.Str()
	case lexer.Bool:
		return b.Type.Bool, nil
	case lexer.Null:
		return nil, nil
	case lexer.Num:
		n := b.Type.Num
		if n.Kind == lexer.Integer || n.Kind == lexer.Hex {
			if v, err := o.Int(64); err == nil {
				return v, nil
			}
			if v, err := o.Uint(64); err == nil {
				return v, nil
			}
			if n.Kind == lexer.Hex {
				return nil, o.overflow("uint64")
			}
		}
		return o.Float(64)
	}
	return nil, o.mismatch("any")
}
