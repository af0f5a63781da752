/* SPDX-License-Identifier: BSD-2-Clause */

package htmltable

import (
	"bytes"
	"encoding/json"
)

// Kind is the shape of an extracted Value.
type Kind int

const (
	PlainText Kind = iota
	KeyedMap
	RowList
	ColumnList
)

func (k Kind) String() string {
	switch k {
	case PlainText:
		return "text"
	case KeyedMap:
		return "map"
	case RowList:
		return "rows"
	case ColumnList:
		return "columns"
	}
	return "unknown"
}

// Value is the result of extracting a table. Exactly one of Text, Map
// or List is meaningful, as selected by Kind.
type Value struct {
	Kind Kind
	Text string
	Map  *Map
	List []*Map
}

// Text returns a PlainText value.
func Text(s string) Value {
	return Value{Kind: PlainText, Text: s}
}

// Keyed returns a KeyedMap value backed by m.
func Keyed(m *Map) Value {
	return Value{Kind: KeyedMap, Map: m}
}

// Rows returns a RowList value, one mapping per table row.
func Rows(l []*Map) Value {
	return Value{Kind: RowList, List: l}
}

// Columns returns a ColumnList value, one mapping per value column.
func Columns(l []*Map) Value {
	return Value{Kind: ColumnList, List: l}
}

// Interface converts v into plain Go values: string, map[string]any
// or []map[string]any. Key order is lost.
func (v Value) Interface() any {
	switch v.Kind {
	case KeyedMap:
		return v.Map.Interface()
	case RowList, ColumnList:
		out := make([]map[string]any, 0, len(v.List))
		for _, m := range v.List {
			out = append(out, m.Interface())
		}
		return out
	}
	return v.Text
}

func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KeyedMap:
		return v.Map.Equal(o.Map)
	case RowList, ColumnList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	}
	return v.Text == o.Text
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KeyedMap:
		return v.Map.MarshalJSON()
	case RowList, ColumnList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, m := range v.List {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := m.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	}
	return json.Marshal(v.Text)
}

// Map is a string-keyed mapping that remembers insertion order.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set stores val under key. Overwriting keeps the key's first position.
func (m *Map) Set(key string, val Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = val
}

func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

func (m *Map) Interface() map[string]any {
	out := make(map[string]any, m.Len())
	for _, k := range m.Keys() {
		out[k] = m.values[k].Interface()
	}
	return out
}

func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	for i, k := range m.Keys() {
		if o.keys[i] != k || !m.values[k].Equal(o.values[k]) {
			return false
		}
	}
	return true
}

func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := m.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
