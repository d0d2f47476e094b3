package jsode

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/fatih/camelcase"
)

// recordField describes how one struct field is filled from an object.
type recordField struct {
	key      string
	index    []int
	nullable bool // a missing key leaves the zero value
}

var recordCache sync.Map // reflect.Type -> []recordField

// decodeStruct fills a struct from an object. Each exported field is looked
// up by its key; nested records recurse through decode.
func (o Output) decodeStruct(rv reflect.Value) error {
	t := rv.Type()
	if o.Kind() != ObjectBlock {
		return o.mismatch(t.String())
	}
	for _, f := range recordFields(t) {
		fv := rv.FieldByIndex(f.index)
		sub, ok := o.Key(f.key)
		if !ok {
			if f.nullable {
				fv.Set(reflect.Zero(fv.Type()))
				continue
			}
			return &DecodeError{
				Key: f.key,
				Err: o.p.errorf(ConversionError, ErrMissingKey, o.Span(), "key not found: `%s`", f.key),
			}
		}
		if err := sub.decode(fv); err != nil {
			return &DecodeError{Key: f.key, Err: err}
		}
	}
	return nil
}

func recordFields(t reflect.Type) []recordField {
	if v, ok := recordCache.Load(t); ok {
		return v.([]recordField)
	}
	fields := collectFields(t, nil)
	recordCache.Store(t, fields)
	return fields
}

// collectFields lists the decodable fields of t. Embedded structs without a
// tag are flattened into the parent. Unexported fields, fields tagged "-" and
// zero-sized fields are markers and keep their zero value.
func collectFields(t reflect.Type, parent []int) []recordField {
	var fields []recordField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := make([]int, len(parent)+1)
		copy(index, parent)
		index[len(parent)] = i

		key, opts, tagged := fieldKey(sf)
		if sf.Anonymous && !tagged && sf.Type.Kind() == reflect.Struct {
			fields = append(fields, collectFields(sf.Type, index)...)
			continue
		}
		if !sf.IsExported() || key == "-" || sf.Type.Size() == 0 {
			continue
		}
		fields = append(fields, recordField{
			key:      key,
			index:    index,
			nullable: sf.Type.Kind() == reflect.Pointer || hasOption(opts, "omitempty"),
		})
	}
	return fields
}

// fieldKey returns the object key of a field: the jsode tag, then the json
// tag, else the snake_case field name.
func fieldKey(f reflect.StructField) (key, opts string, tagged bool) {
	for _, tag := range []string{"jsode", "json"} {
		v, ok := f.Tag.Lookup(tag)
		if !ok {
			continue
		}
		key, opts, _ = strings.Cut(v, ",")
		if key == "" {
			key = toSnakeCase(f.Name)
		}
		return key, opts, true
	}
	return toSnakeCase(f.Name), "", false
}

func hasOption(opts, name string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == name {
			return true
		}
	}
	return false
}

// toSnakeCase converts a Go field name to snake_case: StreetAddress becomes
// street_address, HTTPPort becomes http_port and Line2 becomes line2.
func toSnakeCase(s string) string {
	var words []string
	for _, w := range camelcase.Split(s) {
		w = strings.Trim(w, "_")
		switch {
		case w == "":
		case isDigits(w) && len(words) > 0:
			words[len(words)-1] += w
		default:
			words = append(words, strings.ToLower(w))
		}
	}
	return strings.Join(words, "_")
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
