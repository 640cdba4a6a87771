// Package jsonval is the JSON value layer under the codec.
//
// JSON documents are handled as parse trees of plain Go values:
//
//	array   []any
//	object  map[string]any (parsed) or [Ordered] (built for output)
//	string  string
//	number  json.Number (parsed) or any Go integer or float type (built)
//	boolean bool
//	null    nil
//
// The accessors in this package ([Array], [String], [Int], ...) accept every
// representation above, so a tree built in memory can be decoded directly
// without a serialize/parse round trip.
//
// Parsing and serialization go through a [Backend]. Backends are plain values
// handed to the codec by the caller; there is no process-wide default.
package jsonval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind classifies a parse-tree value.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "invalid"
}

// Member is one key/value pair of an [Ordered] object.
type Member struct {
	Key   string
	Value any
}

// Ordered is an object whose members serialize in insertion order.
type Ordered []Member

// Get returns the value of key, or nil.
func (o Ordered) Get(key string) any {
	for _, m := range o {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// numeric is satisfied by number types of JSON libraries other than
// encoding/json.
type numeric interface {
	Float64() (float64, error)
	Int64() (int64, error)
}

// KindOf returns the kind of v.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any, Ordered:
		return KindObject
	case numeric:
		return KindNumber
	}
	return KindInvalid
}

// Array returns v as an array.
func Array(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

// Field returns the member key of object v. ok is false if v is not an object
// or has no such member.
func Field(v any, key string) (any, bool) {
	switch o := v.(type) {
	case map[string]any:
		x, ok := o[key]
		return x, ok
	case Ordered:
		for _, m := range o {
			if m.Key == key {
				return m.Value, true
			}
		}
	}
	return nil, false
}

// String returns v as a string.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// Bool returns v as a boolean.
func Bool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

// IsNull reports whether v is JSON null.
func IsNull(v any) bool { return v == nil }

// Float returns a number as float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case numeric:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Int returns a number as int64. Integral text is parsed exactly; other
// numbers are truncated toward zero.
func Int(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	case numeric:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	f, ok := Float(v)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return int64(f), true
}

// Describe returns a short description of v for error messages.
func Describe(v any) string {
	switch k := KindOf(v); k {
	case KindArray:
		a, _ := Array(v)
		return fmt.Sprintf("array of %d", len(a))
	case KindString:
		s, _ := String(v)
		if len(s) > 32 {
			s = s[:32] + "..."
		}
		return strconv.Quote(s)
	case KindNumber:
		f, _ := Float(v)
		return strconv.FormatFloat(f, 'g', -1, 64)
	case KindInvalid:
		return fmt.Sprintf("%T", v)
	default:
		return k.String()
	}
}

// =============================================================================
// Backends
// =============================================================================

// Backend parses and serializes JSON text.
type Backend interface {
	// Parse returns the parse tree of data. Numbers are kept exact.
	Parse(data []byte) (any, error)
	// Serialize renders a parse tree.
	Serialize(v any) ([]byte, error)
}

// Std is the encoding/json backend.
type Std struct{}

// Parse implements [Backend].
func (Std) Parse(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

// Serialize implements [Backend].
func (Std) Serialize(v any) ([]byte, error) {
	return serialize(v, json.Marshal)
}

// serialize renders a top-level Ordered member by member with marshal, and
// any other value with a single marshal call.
func serialize(v any, marshal func(any) ([]byte, error)) ([]byte, error) {
	o, ok := v.(Ordered)
	if !ok {
		return marshal(v)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := serialize(m.Value, marshal)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", m.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ByName returns the backend with the given name: "std", "segment" or
// "lenient" (std with comments and trailing commas allowed).
func ByName(name string) (Backend, error) {
	switch name {
	case "", "std":
		return Std{}, nil
	case "segment":
		return Segment{}, nil
	case "lenient":
		return Lenient{Backend: Std{}}, nil
	}
	return nil, fmt.Errorf("unknown JSON backend %q (must be one of: std, segment, lenient)", name)
}
