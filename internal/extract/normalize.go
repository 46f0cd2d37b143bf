package extract

import (
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Record is a normalized table row, an ordered set of named values. Values are
// either string or int64.
type Record struct {
	keys   []string
	values []any
}

func (r Record) Columns() []string {
	return slices.Clone(r.keys)
}

func (r Record) Values() []any {
	return slices.Clone(r.values)
}

func (r Record) Get(column string) (any, bool) {
	i := slices.Index(r.keys, column)
	if i < 0 {
		return nil, false
	}
	return r.values[i], true
}

// String returns the value of column formatted as text, "" if it is absent.
func (r Record) String(column string) string {
	v, ok := r.Get(column)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the value of column if it is an integer.
func (r Record) Int(column string) (int64, bool) {
	v, ok := r.Get(column)
	if !ok {
		return 0, false
	}
	i, ok := v.(int64)
	return i, ok
}

// insert places column at position at, a negative or too large position
// appends it.
func (r *Record) insert(at int, column string, value any) {
	if at < 0 || at > len(r.keys) {
		at = len(r.keys)
	}
	r.keys = slices.Insert(r.keys, at, column)
	r.values = slices.Insert(r.values, at, value)
}

func (r *Record) drop(column string) {
	i := slices.Index(r.keys, column)
	if i < 0 {
		return
	}
	r.keys = slices.Delete(r.keys, i, i+1)
	r.values = slices.Delete(r.values, i, i+1)
}

// Table is the normalized form of a located html table.
type Table struct {
	Columns []string
	Records []Record
}

func (t Table) Len() int {
	return len(t.Records)
}

// Column returns the values of column across all records.
func (t Table) Column(column string) []any {
	out := make([]any, len(t.Records))
	for i, r := range t.Records {
		out[i], _ = r.Get(column)
	}
	return out
}

// Sentinel describes the placeholder row a table starts with: the text of its
// first Width cells concatenated equals Value.
type Sentinel struct {
	Width int
	Value string
}

func (s Sentinel) matches(row Row) bool {
	if s.Width > len(row.Cells) {
		return false
	}
	var joined strings.Builder
	for _, c := range row.Cells[:s.Width] {
		joined.WriteString(c.Text)
	}
	return joined.String() == s.Value
}

// Column is a derived column and the position it is inserted at, a negative
// position appends it.
type Column struct {
	Name string
	At   int
}

// RowContext is what a derivation reads: the record built so far and the
// html row it came from.
type RowContext struct {
	Record Record
	Row    Row
}

// Link returns the first anchor of the row whose href contains substr.
func (c RowContext) Link(substr string) (*goquery.Selection, bool) {
	var found *goquery.Selection
	c.Row.Sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.Contains(a.AttrOr("href", ""), substr) {
			found = a
			return false
		}
		return true
	})
	return found, found != nil
}

// Derivation computes new columns from a row. Derive returns one value per
// entry of Columns, in the same order.
type Derivation struct {
	Name    string
	Columns []Column
	Derive  func(ctx RowContext) ([]any, error)
}

type Schema struct {
	Name        string
	Columns     []string
	Sentinel    Sentinel
	Derivations []Derivation
	// columns removed once all derivations ran
	Drop []string
}

// OutputColumns is the column order every normalized record of s has.
func (s Schema) OutputColumns() []string {
	cols := slices.Clone(s.Columns)
	for _, d := range s.Derivations {
		for _, c := range d.Columns {
			at := c.At
			if at < 0 || at > len(cols) {
				at = len(cols)
			}
			cols = slices.Insert(cols, at, c.Name)
		}
	}
	for _, d := range s.Drop {
		if i := slices.Index(cols, d); i >= 0 {
			cols = slices.Delete(cols, i, i+1)
		}
	}
	return cols
}

// Normalize renders table, names its cells after schema.Columns, discards the
// sentinel row and applies the derivations in declaration order.
func Normalize(table *goquery.Selection, schema Schema) (Table, error) {
	rows := RenderRows(table)

	for i, row := range rows {
		if len(row.Cells) != len(schema.Columns) {
			return Table{}, &SchemaMismatchError{
				Schema: schema.Name,
				Row:    i,
				Got:    len(row.Cells),
				Want:   len(schema.Columns),
			}
		}
	}

	if len(rows) == 0 {
		return Table{}, &UnexpectedLayoutError{Schema: schema.Name, Reason: "table has no rows"}
	}
	if !schema.Sentinel.matches(rows[0]) {
		return Table{}, &UnexpectedLayoutError{
			Schema: schema.Name,
			Reason: fmt.Sprintf("first row does not start with %q", schema.Sentinel.Value),
		}
	}
	rows = rows[1:]

	out := Table{
		Columns: schema.OutputColumns(),
		Records: make([]Record, 0, len(rows)),
	}
	for _, row := range rows {
		record := Record{
			keys:   slices.Clone(schema.Columns),
			values: make([]any, len(row.Cells)),
		}
		for i, c := range row.Cells {
			record.values[i] = c.Text
		}

		for _, d := range schema.Derivations {
			values, err := d.Derive(RowContext{Record: record, Row: row})
			if err != nil {
				return Table{}, fmt.Errorf("%s: derive %s: %w", schema.Name, d.Name, err)
			}
			if len(values) != len(d.Columns) {
				panic(fmt.Sprintf("derivation %s returned %d values for %d columns", d.Name, len(values), len(d.Columns)))
			}
			for i, c := range d.Columns {
				record.insert(c.At, c.Name, values[i])
			}
		}
		for _, column := range schema.Drop {
			record.drop(column)
		}

		out.Records = append(out.Records, record)
	}
	return out, nil
}
