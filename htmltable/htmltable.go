/* SPDX-License-Identifier: BSD-2-Clause */

package htmltable

import (
	"context"
	"io"
	"runtime"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

type Table struct {
	Index int
	ID    string
	Name  string
	Value Value
}

// Parse extracts every top-level table of the document read from r.
// Tables nested inside another table are part of their container's Value.
func Parse(r io.Reader) ([]Table, error) {
	return ParseContext(context.Background(), r)
}

// ParseContext is Parse with the tables extracted concurrently. It
// stops early and returns ctx's error when ctx is cancelled.
func ParseContext(ctx context.Context, r io.Reader) ([]Table, error) {
	return NewExtractor().ParseContext(ctx, r)
}

func (e *Extractor) Parse(r io.Reader) ([]Table, error) {
	return e.ParseContext(context.Background(), r)
}

func (e *Extractor) ParseContext(ctx context.Context, r io.Reader) ([]Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}

	nodes := topLevelTables(doc.Nodes[0])
	tables := make([]Table, len(nodes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, n := range nodes {
		tables[i] = Table{Index: i + 1}
		for _, a := range n.Attr {
			switch a.Key {
			case "id":
				tables[i].ID = a.Val
			case "name":
				tables[i].Name = a.Val
			}
		}
		i, n := i, n
		g.Go(func() error {
			v, err := e.ExtractContext(ctx, doc.FindNodes(n))
			if err != nil {
				return err
			}
			tables[i].Value = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func topLevelTables(doc *html.Node) []*html.Node {
	var tables []*html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isTable(n) {
			tables = append(tables, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return tables
}

type Selector struct {
	Indexes map[int]struct{}
	Names   map[string]struct{}
}

func ParseSelector(s string) (Selector, error) {
	sel := Selector{
		Indexes: make(map[int]struct{}),
		Names:   make(map[string]struct{}),
	}

	if strings.TrimSpace(s) == "" {
		return sel, nil
	}

	for _, part := range strings.Split(s, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		if i, err := strconv.Atoi(p); err == nil {
			if i <= 0 {
				return sel, errors.New("table index must be >= 1")
			}
			sel.Indexes[i] = struct{}{}
		} else {
			sel.Names[p] = struct{}{}
		}
	}

	return sel, nil
}

func (s Selector) Apply(tables []Table) []Table {
	if len(s.Indexes) == 0 && len(s.Names) == 0 {
		return tables
	}

	var out []Table
	for _, t := range tables {
		if _, ok := s.Indexes[t.Index]; ok {
			out = append(out, t)
			continue
		}
		if _, ok := s.Names[t.ID]; ok && t.ID != "" {
			out = append(out, t)
			continue
		}
		if _, ok := s.Names[t.Name]; ok && t.Name != "" {
			out = append(out, t)
		}
	}
	return out
}
