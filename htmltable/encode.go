/* SPDX-License-Identifier: BSD-2-Clause */

package htmltable

import (
	"bytes"
	"encoding/json"
	"io"
)

type JSONEncoder struct {
	// Indent is repeated per nesting level. Empty means compact output.
	Indent string
	// WithMeta wraps each value with the table's index, id and name.
	WithMeta bool
}

func NewJSONEncoder() *JSONEncoder {
	return &JSONEncoder{Indent: "  "}
}

type tableJSON struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Value Value  `json:"value"`
}

// Encode writes tables as a JSON array followed by a newline. A single
// table without metadata is written as its bare value.
func (e *JSONEncoder) Encode(w io.Writer, tables []Table) error {
	var v any
	switch {
	case e.WithMeta:
		out := make([]tableJSON, 0, len(tables))
		for _, t := range tables {
			out = append(out, tableJSON{Index: t.Index, ID: t.ID, Name: t.Name, Value: t.Value})
		}
		v = out
	case len(tables) == 1:
		v = tables[0].Value
	default:
		out := make([]Value, 0, len(tables))
		for _, t := range tables {
			out = append(out, t.Value)
		}
		v = out
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if e.Indent != "" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, b, "", e.Indent); err != nil {
			return err
		}
		b = buf.Bytes()
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
