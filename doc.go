// Package jsode parses JSON5 text into a flat, span-annotated AST and decodes
// it into Go values.
//
// Parsing never copies the source: every block of the AST records byte spans
// into the text, and strings are only unescaped when they are decoded. An
// Output is a handle to one value of the document. It navigates by key, by
// item position or by dotted path, and converts to Go types with Decode or
// ParseInto:
//
//	out, err := jsode.Parse(`{name: 'web', ports: [80, 0x1BB], debug: true}`)
//	if err != nil {
//		return err
//	}
//	ports, _ := out.Key("ports")
//	p, err := jsode.ParseInto[[]uint16](ports)
//
// Struct fields are matched to object keys by the jsode tag, then the json
// tag, then the snake_case form of the field name. Pointer fields and fields
// with the omitempty option may be absent; any other missing key fails with
// ErrMissingKey. Unexported fields, fields tagged "-" and zero-sized fields
// are left untouched.
//
// Supported JSON5 syntax: single and double quoted strings with \x, \u and
// the usual escapes, identifier keys, line and block comments, hexadecimal
// numbers, leading or trailing decimal points, explicit plus signs,
// Infinity and NaN. Trailing commas are accepted in objects and arrays.
package jsode
