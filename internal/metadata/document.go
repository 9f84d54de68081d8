package metadata

import (
	"bytes"
	"encoding/json"

	"github.com/bidsmeta/bidsmeta/internal/descriptions"
)

// Document is a JSON object that keeps insertion order.
type Document struct {
	keys   []string
	values map[string]any
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{values: make(map[string]any)}
}

// Set adds key or replaces its value. A replaced key keeps its position.
func (d *Document) Set(key string, value any) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Keys returns the keys in insertion order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Len returns the number of keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// MarshalJSON implements json.Marshaler.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := descriptions.EncodeJSON(key)
		if err != nil {
			return nil, err
		}
		v, err := descriptions.EncodeJSON(d.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalIndent renders v as 2-space indented JSON with a trailing newline.
func marshalIndent(v any) ([]byte, error) {
	compact, err := descriptions.EncodeJSON(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
