package jsonval

import (
	"bytes"

	segjson "github.com/segmentio/encoding/json"
	"github.com/tidwall/jsonc"
)

// Segment is a backend on github.com/segmentio/encoding/json, a faster
// drop-in for encoding/json on large documents.
type Segment struct{}

// Parse implements [Backend].
func (Segment) Parse(data []byte) (any, error) {
	dec := segjson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Serialize implements [Backend].
func (Segment) Serialize(v any) ([]byte, error) {
	return serialize(v, segjson.Marshal)
}

// Lenient wraps a backend so that Parse accepts JSON with comments and
// trailing commas. Serialize is unchanged.
type Lenient struct {
	Backend Backend
}

// Parse implements [Backend].
func (l Lenient) Parse(data []byte) (any, error) {
	return l.inner().Parse(jsonc.ToJSON(data))
}

// Serialize implements [Backend].
func (l Lenient) Serialize(v any) ([]byte, error) {
	return l.inner().Serialize(v)
}

func (l Lenient) inner() Backend {
	if l.Backend == nil {
		return Std{}
	}
	return l.Backend
}
