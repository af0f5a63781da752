/* SPDX-License-Identifier: BSD-2-Clause */

package htmltable

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ownRows returns the rows belonging to table itself: its tr children
// and the tr children of its tbody sections. The HTML5 tree builder
// wraps bare rows in an implied tbody, so both places must be looked at.
// Rows of nested tables are never included.
func ownRows(table *goquery.Selection) *goquery.Selection {
	return table.ChildrenFiltered("tr").
		AddSelection(table.ChildrenFiltered("tbody").ChildrenFiltered("tr"))
}

// bodyRows returns the rows of the tbody sections, or the bare tr
// children when there are none.
func bodyRows(table *goquery.Selection) *goquery.Selection {
	if rows := table.ChildrenFiltered("tbody").ChildrenFiltered("tr"); rows.Length() > 0 {
		return rows
	}
	return table.ChildrenFiltered("tr")
}

func headerCells(table *goquery.Selection) *goquery.Selection {
	return table.ChildrenFiltered("thead").ChildrenFiltered("tr").ChildrenFiltered("th, td")
}

func rowCells(row *goquery.Selection) []*goquery.Selection {
	return nodes(row.ChildrenFiltered("td, th"))
}

func nodes(s *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, s.Length())
	s.Each(func(_ int, c *goquery.Selection) {
		out = append(out, c)
	})
	return out
}

// nestedTable returns the first table anywhere below cell.
func nestedTable(cell *goquery.Selection) (*goquery.Selection, bool) {
	t := cell.Find("table").First()
	return t, t.Length() > 0
}

func hasColspan(s *goquery.Selection) bool {
	_, ok := s.Attr("colspan")
	return ok
}

// flatText trims every text node below s, drops the empty ones and
// joins the rest with a single space.
func flatText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

func isTable(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Table
}
