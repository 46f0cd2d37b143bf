package extract

import (
	"strconv"

	"alamos-extract/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// maxColspan bounds how often a single cell is repeated, no schema is wider.
const maxColspan = 64

type Cell struct {
	Text string
	Sel  *goquery.Selection
}

type Row struct {
	Cells []Cell
	Sel   *goquery.Selection
}

// RenderRows lists the rows of table that carry at least one cell. Rows of
// nested tables are excluded, a colspan repeats the cell across the columns
// it spans, up to maxColspan.
func RenderRows(table *goquery.Selection) []Row {
	if table.Length() == 0 {
		return nil
	}
	self := table.Get(0)

	var rows []Row
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		owner := tr.Closest("table")
		if owner.Length() == 0 || owner.Get(0) != self {
			return
		}

		var cells []Cell
		tr.ChildrenFiltered("td, th").Each(func(_ int, td *goquery.Selection) {
			cell := Cell{
				Text: htmlutil.NormalizeText(td.Text()),
				Sel:  td,
			}
			span, err := strconv.Atoi(td.AttrOr("colspan", "1"))
			if err != nil || span < 1 {
				span = 1
			}
			span = min(span, maxColspan)
			for i := 0; i < span; i++ {
				cells = append(cells, cell)
			}
		})
		if len(cells) == 0 {
			return
		}
		rows = append(rows, Row{Cells: cells, Sel: tr})
	})
	return rows
}

// Field is one line of a two column key/value table.
type Field struct {
	Key   string
	Value string
}

// KeyValues reads the first two cells of every row of table as a key/value
// pair. Rows with a single cell get an empty value.
func KeyValues(table *goquery.Selection) []Field {
	rows := RenderRows(table)
	fields := make([]Field, 0, len(rows))
	for _, row := range rows {
		f := Field{Key: row.Cells[0].Text}
		if len(row.Cells) > 1 {
			f.Value = row.Cells[1].Text
		}
		fields = append(fields, f)
	}
	return fields
}
