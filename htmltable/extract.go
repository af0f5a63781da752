/* SPDX-License-Identifier: BSD-2-Clause */

package htmltable

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMaxDepth bounds how many levels of nested tables are extracted.
const DefaultMaxDepth = 32

// Extractor infers the shape of a table and converts it into a Value.
// An Extractor holds no state between calls and is safe for concurrent use.
type Extractor struct {
	// MaxDepth is the number of nested table levels followed. Deeper
	// tables are returned as their flattened text. Zero means DefaultMaxDepth.
	MaxDepth int
}

// NewExtractor returns an Extractor limited to DefaultMaxDepth.
func NewExtractor() *Extractor {
	return &Extractor{MaxDepth: DefaultMaxDepth}
}

// Extract converts table using the default extractor.
func Extract(table *goquery.Selection) Value {
	return NewExtractor().Extract(table)
}

// Extract converts the first node of table. Rules are tried in order and
// the first one producing a non-empty result wins; the table's flattened
// text is returned when none does.
func (e *Extractor) Extract(table *goquery.Selection) Value {
	limit := e.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	w := &walker{max: limit}
	return w.extract(table.First(), 0)
}

// ExtractContext is Extract for callers that schedule extractions
// against a context. It only checks ctx before starting.
func (e *Extractor) ExtractContext(ctx context.Context, table *goquery.Selection) (Value, error) {
	if err := ctx.Err(); err != nil {
		return Value{}, err
	}
	return e.Extract(table), nil
}

type rule func(w *walker, table *goquery.Selection, depth int) (Value, bool)

type walker struct {
	max int
}

func (w *walker) extract(table *goquery.Selection, depth int) Value {
	if depth > w.max {
		return Text(flatText(table))
	}
	// Classification cascade, in priority order.
	rules := [...]rule{
		headerRows,
		headerlessRows,
		nestedOnly,
	}
	for _, r := range rules {
		if v, ok := r(w, table, depth); ok {
			return v
		}
	}
	return Text(flatText(table))
}

// cellValue is the extraction of the first table inside cell, or the
// cell's flattened text when it has none.
func (w *walker) cellValue(cell *goquery.Selection, depth int) Value {
	if t, ok := nestedTable(cell); ok {
		return w.extract(t, depth+1)
	}
	return Text(flatText(cell))
}

// headerRows zips thead cells against the body rows.
func headerRows(w *walker, table *goquery.Selection, depth int) (Value, bool) {
	var headers []string
	distinct := make(map[string]struct{})
	headerCells(table).Each(func(_ int, c *goquery.Selection) {
		h := flatText(c)
		headers = append(headers, h)
		distinct[h] = struct{}{}
	})
	rows := bodyRows(table)
	if len(distinct) < 2 || rows.Length() == 0 {
		return Value{}, false
	}

	var out []*Map
	rows.Each(func(_ int, row *goquery.Selection) {
		// Header-only rows carry no td and are skipped.
		cells := nodes(row.ChildrenFiltered("td"))
		if len(cells) == 0 {
			return
		}
		m := NewMap()
		for i := 0; i < len(headers) && i < len(cells); i++ {
			if headers[i] == "" {
				continue
			}
			m.Set(headers[i], w.cellValue(cells[i], depth))
		}
		if m.Len() > 0 {
			out = append(out, m)
		}
	})
	if len(out) == 0 {
		return Value{}, false
	}
	return Rows(out), true
}

// headerlessRows handles tables without a usable thead. Rows carrying a
// colspan cell are banners and are dropped unless that leaves nothing.
func headerlessRows(w *walker, table *goquery.Selection, depth int) (Value, bool) {
	var rows [][]*goquery.Selection
	var all [][]*goquery.Selection
	ownRows(table).Each(func(_ int, r *goquery.Selection) {
		cells := rowCells(r)
		all = append(all, cells)
		if r.ChildrenFiltered("[colspan]").Length() == 0 {
			rows = append(rows, cells)
		}
	})
	if len(rows) == 0 {
		rows = all
	}
	if len(rows) == 0 {
		return Value{}, false
	}

	if len(rows[0]) == 2 {
		if v, ok := keyValue(w, rows, depth); ok {
			return v, true
		}
	}
	if v, ok := boldHeader(rows); ok {
		return v, true
	}
	return columnWise(rows)
}

// keyValue reads each row as key cell followed by value cells.
func keyValue(w *walker, rows [][]*goquery.Selection, depth int) (Value, bool) {
	m := NewMap()
	for _, cells := range rows {
		if len(cells) < 2 {
			continue
		}
		key := flatText(cells[0])
		if key == "" {
			continue
		}
		m.Set(key, w.joinedValue(cells[1:], depth))
	}
	if m.Len() == 0 {
		return Value{}, false
	}
	return Keyed(m), true
}

// joinedValue extracts the first nested table found in cells, scanning
// left to right, or joins the non-empty cell texts.
func (w *walker) joinedValue(cells []*goquery.Selection, depth int) Value {
	for _, c := range cells {
		if t, ok := nestedTable(c); ok {
			return w.extract(t, depth+1)
		}
	}
	var texts []string
	for _, c := range cells {
		if t := flatText(c); t != "" {
			texts = append(texts, t)
		}
	}
	return Text(strings.Join(texts, " "))
}

// boldHeader uses the first row as headers when one of its cells holds
// a bold element.
func boldHeader(rows [][]*goquery.Selection) (Value, bool) {
	first := rows[0]
	if len(first) < 2 || !hasBold(first) {
		return Value{}, false
	}
	headers := make([]string, len(first))
	for i, c := range first {
		headers[i] = flatText(c)
	}

	var out []*Map
	for _, cells := range rows[1:] {
		if len(cells) == 0 {
			continue
		}
		m := NewMap()
		for i := 0; i < len(headers) && i < len(cells); i++ {
			if headers[i] == "" {
				continue
			}
			m.Set(headers[i], Text(flatText(cells[i])))
		}
		if m.Len() > 0 {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return Value{}, false
	}
	return Rows(out), true
}

func hasBold(cells []*goquery.Selection) bool {
	for _, c := range cells {
		if c.ChildrenFiltered("b, strong").Length() > 0 {
			return true
		}
	}
	return false
}

// columnWise builds one mapping per value column, keyed by the first cell
// of each row. A value past the known columns opens a new column at the
// end rather than at its own position, so ragged rows with empty cells
// can land in a column other than the one they sit under.
func columnWise(rows [][]*goquery.Selection) (Value, bool) {
	var cols []*Map
	for _, cells := range rows {
		if len(cells) < 2 {
			continue
		}
		key := flatText(cells[0])
		if key == "" {
			continue
		}
		for i, c := range cells[1:] {
			val := flatText(c)
			if val == "" {
				continue
			}
			if len(cols) <= i {
				m := NewMap()
				m.Set(key, Text(val))
				cols = append(cols, m)
				continue
			}
			cols[i].Set(key, Text(val))
		}
	}
	if len(cols) == 0 {
		return Value{}, false
	}
	return Columns(cols), true
}

// nestedOnly extracts every table found anywhere below table, naming each
// after a colspan banner. Later tables overwrite earlier ones of the same name.
func nestedOnly(w *walker, table *goquery.Selection, depth int) (Value, bool) {
	nested := table.Find("table")
	if nested.Length() == 0 {
		return Value{}, false
	}
	m := NewMap()
	nested.Each(func(_ int, sub *goquery.Selection) {
		m.Set(bannerName(table, sub), w.extract(sub, depth+1))
	})
	return Keyed(m), true
}

// bannerName is the flattened text of the nearest colspan element at or
// above sub within outer, or "table" when there is none or its text is empty.
func bannerName(outer, sub *goquery.Selection) string {
	for s := sub; s.Length() > 0 && !s.IsSelection(outer); s = s.Parent() {
		if hasColspan(s) {
			if name := flatText(s); name != "" {
				return name
			}
			break
		}
	}
	return "table"
}
