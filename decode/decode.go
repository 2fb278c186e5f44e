// Package decode converts dynamic JSON values into typed values,
// failing with errors that carry the full path to the offending field.
//
// Decoding is total and fail-fast: a value either decodes completely or
// the first failure is returned, wrapped once per enclosing field or
// array index on its way up.
package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Value wraps a dynamic JSON value. The zero Value behaves as JSON null.
type Value struct {
	raw any
}

// Func decodes a Value into a T.
type Func[T any] func(Value) (T, error)

// Parse reads a JSON document into a Value. Numbers are kept as
// json.Number so integer minor-unit amounts decode exactly.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, &Error{Kind: KindInvalid, Raw: truncateRaw(data)}
	}
	return Value{raw: raw}, nil
}

// Unmarshal parses data and decodes it with fn.
func Unmarshal[T any](data []byte, fn Func[T]) (T, error) {
	v, err := Parse(data)
	if err != nil {
		var zero T
		return zero, err
	}
	return fn(v)
}

// IsNull reports whether the value is JSON null (or absent).
func (v Value) IsNull() bool { return v.raw == nil }

// String decodes a required JSON string.
func String(v Value) (string, error) {
	if v.raw == nil {
		return "", &Error{Kind: KindNull}
	}
	s, ok := v.raw.(string)
	if !ok {
		return "", &Error{Kind: KindWrongType}
	}
	return s, nil
}

// Int64 decodes a required integral JSON number. A number with a
// fractional part is a type mismatch, not an invalid value.
func Int64(v Value) (int64, error) {
	if v.raw == nil {
		return 0, &Error{Kind: KindNull}
	}
	n, ok := v.raw.(json.Number)
	if !ok {
		return 0, &Error{Kind: KindWrongType}
	}
	i, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return 0, &Error{Kind: KindWrongType}
	}
	return i, nil
}

// Int decodes a required integral JSON number as int.
func Int(v Value) (int, error) {
	i, err := Int64(v)
	return int(i), err
}

// Float64 decodes a required JSON number.
func Float64(v Value) (float64, error) {
	if v.raw == nil {
		return 0, &Error{Kind: KindNull}
	}
	n, ok := v.raw.(json.Number)
	if !ok {
		return 0, &Error{Kind: KindWrongType}
	}
	f, err := n.Float64()
	if err != nil {
		return 0, &Error{Kind: KindInvalid, Raw: string(n)}
	}
	return f, nil
}

// Bool decodes a required JSON boolean.
func Bool(v Value) (bool, error) {
	if v.raw == nil {
		return false, &Error{Kind: KindNull}
	}
	b, ok := v.raw.(bool)
	if !ok {
		return false, &Error{Kind: KindWrongType}
	}
	return b, nil
}

// Timestamp layouts the wire format uses: RFC 3339 with fractional
// seconds, tried first, then without.
var timeLayouts = [...]string{time.RFC3339Nano, time.RFC3339}

// Time decodes a required timestamp string in either wire layout.
func Time(v Value) (time.Time, error) {
	s, err := String(v)
	if err != nil {
		return time.Time{}, err
	}
	t, perr := ParseTime(s)
	if perr != nil {
		return time.Time{}, &Error{Kind: KindInvalid, Raw: s}
	}
	return t, nil
}

// ParseTime parses a wire-format timestamp outside of a decode chain.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// URL decodes a required string that must parse as a URL.
func URL(v Value) (*url.URL, error) {
	s, err := String(v)
	if err != nil {
		return nil, err
	}
	u, perr := url.Parse(s)
	if perr != nil || s == "" {
		return nil, &Error{Kind: KindInvalid, Raw: s}
	}
	return u, nil
}

// Enum decodes a required string and maps it through values. Unknown
// members fail with the raw text; lenient enums with a fallback case
// should wrap Enum and substitute their unknown member instead.
func Enum[T any](v Value, values map[string]T) (T, error) {
	var zero T
	s, err := String(v)
	if err != nil {
		return zero, err
	}
	t, ok := values[s]
	if !ok {
		return zero, &Error{Kind: KindInvalid, Raw: s}
	}
	return t, nil
}

// Field decodes a required named field of a JSON object, wrapping any
// failure with the field key. An absent field decodes as null.
func Field[T any](v Value, key string, fn Func[T]) (T, error) {
	var zero T
	m, derr := v.object()
	if derr != nil {
		return zero, derr
	}
	t, err := fn(Value{raw: m[key]})
	if err != nil {
		return zero, WrapKey(key, err)
	}
	return t, nil
}

// Optional decodes an optional named field: absent or null yields nil,
// anything else delegates to fn and propagates its error under the key.
func Optional[T any](v Value, key string, fn Func[T]) (*T, error) {
	m, derr := v.object()
	if derr != nil {
		return nil, derr
	}
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}
	t, err := fn(Value{raw: raw})
	if err != nil {
		return nil, WrapKey(key, err)
	}
	return &t, nil
}

// Slice decodes a required JSON array, failing at the first bad element
// with its zero-based index wrapped as "[i]".
func Slice[T any](v Value, fn Func[T]) ([]T, error) {
	if v.raw == nil {
		return nil, &Error{Kind: KindNull}
	}
	arr, ok := v.raw.([]any)
	if !ok {
		return nil, &Error{Kind: KindWrongType}
	}
	out := make([]T, 0, len(arr))
	for i, el := range arr {
		t, err := fn(Value{raw: el})
		if err != nil {
			return nil, WrapKey("["+strconv.Itoa(i)+"]", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// FieldSlice decodes a required array-valued field.
func FieldSlice[T any](v Value, key string, fn Func[T]) ([]T, error) {
	return Field(v, key, func(v Value) ([]T, error) { return Slice(v, fn) })
}

// OptionalSlice decodes an optional array-valued field; absent or null
// yields a nil slice.
func OptionalSlice[T any](v Value, key string, fn Func[T]) ([]T, error) {
	out, err := Optional(v, key, func(v Value) ([]T, error) { return Slice(v, fn) })
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	return *out, nil
}

// StringMap decodes a required string-to-string JSON object, wrapping
// per-entry failures with the entry key.
func StringMap(v Value) (map[string]string, error) {
	m, derr := v.object()
	if derr != nil {
		return nil, derr
	}
	out := make(map[string]string, len(m))
	for k, el := range m {
		s, err := String(Value{raw: el})
		if err != nil {
			return nil, WrapKey(k, err)
		}
		out[k] = s
	}
	return out, nil
}

// WrapKey nests err under key. Non-decode errors pass through annotated
// with fmt wrapping so errors.As still finds any inner *Error.
func WrapKey(key string, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return &Error{Kind: KindKey, Key: key, Next: de}
	}
	return fmt.Errorf("%s: %w", key, err)
}

func (v Value) object() (map[string]any, *Error) {
	if v.raw == nil {
		return nil, &Error{Kind: KindNull}
	}
	m, ok := v.raw.(map[string]any)
	if !ok {
		return nil, &Error{Kind: KindWrongType}
	}
	return m, nil
}

func truncateRaw(data []byte) string {
	const max = 64
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
