package alamos

import (
	"context"
	"fmt"
	"strconv"

	"alamos-extract/internal/extract"
	"alamos-extract/internal/fetch"

	"go.opentelemetry.io/otel/attribute"
)

// SearchQuery holds the form values of a database search, they are posted
// verbatim. Use Viruses, Subtypes and Regions to resolve display names.
type SearchQuery struct {
	MaxRecords int
	Virus      string
	Subtype    string
	Region     string
}

func DefaultSearchQuery() SearchQuery {
	return SearchQuery{
		MaxRecords: 100,
		Virus:      "HIV-1",
		Subtype:    "A1*",
		Region:     "GENOME",
	}
}

func (q SearchQuery) form() map[string]string {
	return map[string]string{
		"slave":          q.Subtype,
		"Genomic Region": q.Region,
		"max_rec":        strconv.Itoa(q.MaxRecords),
		"show_sql":       "on",
		"LENGTH":         "100",
		"master":         q.Virus,
		"submit":         "Search",
		"action":         "search",
	}
}

// Search posts the search form and normalizes the result table with
// SearchSchema.
func (a Assembler) Search(ctx context.Context, query SearchQuery) (result extract.Table, err error) {
	ctx, span := startSpan(ctx, "Search",
		attribute.String("virus", query.Virus),
		attribute.String("subtype", query.Subtype),
		attribute.String("region", query.Region),
		attribute.Int("max_records", query.MaxRecords),
	)
	defer func() { endSpan(span, err) }()

	if query.MaxRecords < 1 {
		return extract.Table{}, fmt.Errorf("search: max records must be positive, got %d", query.MaxRecords)
	}

	root, err := a.page(ctx, fetch.Request{
		Url:    searchUrl,
		Method: fetch.MethodPost,
		Form:   query.form(),
	})
	if err != nil {
		return extract.Table{}, fmt.Errorf("search: %w", err)
	}

	table, err := extract.LocateTable(root, extract.AncestorOfLinks(recordListRef))
	if err != nil {
		a.tel.ReportBroken(report_search, err, query)
		return extract.Table{}, fmt.Errorf("search: %w", err)
	}
	result, err = extract.Normalize(table, SearchSchema)
	if err != nil {
		a.tel.ReportBroken(report_search, err, query)
		return extract.Table{}, fmt.Errorf("search: %w", err)
	}

	a.tel.ReportCount(report_search, int64(result.Len()))
	return result, nil
}
