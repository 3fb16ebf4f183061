// Package jsontree decodes JSON into a tree of plain Go values while
// preserving object key order, which encoding/json's map[string]any
// decoding does not. The resolver's response Flattener depends on
// "discovery order" (spec 4.C rule 3), and a Go map range has no
// defined order, so the tree uses an explicit ordered map instead.
package jsontree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Map is an insertion-ordered string-keyed map: the object node of the
// tree. Leaves are nil, bool, json.Number, or string; list nodes are
// plain []any of these same node kinds.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap returns an empty ordered map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// Set appends key to the key order on first use, or overwrites its
// value in place if already present.
func (m *Map) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value and whether key is present.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the object's keys in discovery (insertion) order.
func (m *Map) Keys() []string {
	return m.keys
}

// Len returns the number of keys.
func (m *Map) Len() int { return len(m.keys) }

// Decode parses data into a tree rooted at a *Map, []any, or a scalar.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("decode response tree: %w", err)
	}
	return v, nil
}

// FromGo marshals a Go value (typically an SDK output struct) and
// decodes it back into an ordered tree, the uniform representation the
// rest of the resolver pipeline operates on. The indirection through
// JSON is deliberate: the core must not bind to per-operation response
// structs (see SPEC_FULL.md's design notes), so encoding/json is the
// only place any response struct's concrete type is named.
func FromGo(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return Decode(data)
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case nil:
		return nil, nil
	default:
		return t, nil // bool, json.Number, string
	}
}

func decodeObject(dec *json.Decoder) (any, error) {
	m := NewMap()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}
	// consume the closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeArray(dec *json.Decoder) (any, error) {
	var arr []any
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}
