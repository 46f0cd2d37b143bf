package extract

import (
	"fmt"
	"strings"

	"alamos-extract/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TablePredicate selects the candidate tables of a document.
type TablePredicate struct {
	Name       string
	candidates func(root *goquery.Selection) []*html.Node
}

// ContainsText matches the tables whose own text, outside of any nested
// table, contains marker. A layout table wrapping a matching table is not a
// candidate unless its own cells hold the marker too.
func ContainsText(marker string) TablePredicate {
	return TablePredicate{
		Name: fmt.Sprintf("table containing %q", marker),
		candidates: func(root *goquery.Selection) []*html.Node {
			var out []*html.Node
			root.Find("table").Each(func(_ int, table *goquery.Selection) {
				node := table.Get(0)
				var buffer strings.Builder
				ownText(node, node, &buffer)
				if strings.Contains(htmlutil.NormalizeText(buffer.String()), marker) {
					out = append(out, node)
				}
			})
			return out
		},
	}
}

// ownText writes the text below node, skipping every table other than self.
func ownText(node, self *html.Node, buffer *strings.Builder) {
	switch {
	case node.Type == html.TextNode:
		buffer.WriteString(node.Data)
		return
	case node.Type == html.ElementNode && node.DataAtom == atom.Table && node != self:
		// keeps the text of cells on either side of the nested table apart
		buffer.WriteByte(' ')
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		ownText(child, self, buffer)
	}
}

// AncestorOfLinks matches the nearest enclosing table of every link whose href
// matches pattern.
func AncestorOfLinks(pattern RefPattern) TablePredicate {
	return TablePredicate{
		Name: fmt.Sprintf("table enclosing links matching %q", pattern.String()),
		candidates: func(root *goquery.Selection) []*html.Node {
			var out []*html.Node
			root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
				if !pattern.Matches(a.AttrOr("href", "")) {
					return
				}
				table := a.Closest("table")
				if table.Length() == 0 {
					return
				}
				out = append(out, table.Get(0))
			})
			return out
		},
	}
}

// LocateTable returns the single distinct table selected by pred.
func LocateTable(root *goquery.Selection, pred TablePredicate) (*goquery.Selection, error) {
	var distinct []*html.Node
	seen := map[*html.Node]struct{}{}
	for _, node := range pred.candidates(root) {
		if _, ok := seen[node]; ok {
			continue
		}
		seen[node] = struct{}{}
		distinct = append(distinct, node)
	}
	if len(distinct) != 1 {
		return nil, &AmbiguousStructureError{Predicate: pred.Name, Count: len(distinct)}
	}
	return root.FindNodes(distinct[0]), nil
}
