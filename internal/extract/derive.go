package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var combinedRegex = regexp.MustCompile(`^([^\(]*)\(([^\)]*)\)`)

// SplitCombined parses a "code(id)" value into its code and numeric id.
func SplitCombined(value string) (code string, id int64, err error) {
	groups := combinedRegex.FindStringSubmatch(value)
	if groups == nil {
		return "", 0, &MalformedFieldError{Field: "combined identifier", Value: value, Reason: "expected code(id)"}
	}
	id, err = strconv.ParseInt(strings.TrimSpace(groups[2]), 10, 64)
	if err != nil {
		return "", 0, &MalformedFieldError{Field: "combined identifier", Value: value, Reason: "id is not an integer"}
	}
	return strings.TrimSpace(groups[1]), id, nil
}

var positionRegex = regexp.MustCompile(`^Start: (\d+)\s+Stop: (\d+). Link to NCBI sequence viewer`)

// DerivePosition turns a sequence viewer image title into "start:stop". Titles
// not starting in that format are returned unchanged.
func DerivePosition(title string) string {
	groups := positionRegex.FindStringSubmatch(title)
	if groups == nil {
		return title
	}
	return groups[1] + ":" + groups[2]
}

// SecondaryId reads the integer that follows marker in href.
func SecondaryId(href, marker string) (int64, error) {
	_, rest, found := strings.Cut(href, marker)
	if !found {
		return 0, &MalformedFieldError{Field: "secondary reference", Value: href, Reason: fmt.Sprintf("no %q marker", marker)}
	}
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		rest = rest[:end]
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, &MalformedFieldError{Field: "secondary reference", Value: href, Reason: "id is not an integer"}
	}
	return id, nil
}

// CombinedIdentifier splits column into a code and an id column, inserting
// idColumn at idAt and codeColumn right after it.
func CombinedIdentifier(column, idColumn, codeColumn string, idAt int) Derivation {
	codeAt := idAt + 1
	if idAt < 0 {
		codeAt = -1
	}
	return Derivation{
		Name:    "split " + column,
		Columns: []Column{{Name: idColumn, At: idAt}, {Name: codeColumn, At: codeAt}},
		Derive: func(ctx RowContext) ([]any, error) {
			code, id, err := SplitCombined(ctx.Record.String(column))
			if err != nil {
				return nil, err
			}
			return []any{id, code}, nil
		},
	}
}

// LinkPosition reads the first link of the row whose href contains
// linkSubstr. It appends the position derived from the title of the image
// inside the link, then the link target.
func LinkPosition(linkSubstr, posColumn, urlColumn string) Derivation {
	return Derivation{
		Name:    "position of " + linkSubstr + " link",
		Columns: []Column{{Name: posColumn, At: -1}, {Name: urlColumn, At: -1}},
		Derive: func(ctx RowContext) ([]any, error) {
			a, ok := ctx.Link(linkSubstr)
			if !ok {
				return nil, &MalformedFieldError{Field: urlColumn, Value: ctx.Record.String("row_id"), Reason: fmt.Sprintf("row has no %s link", linkSubstr)}
			}
			title, ok := a.Find("img[title]").First().Attr("title")
			if !ok {
				return nil, &MalformedFieldError{Field: posColumn, Value: a.AttrOr("href", ""), Reason: "link has no titled image"}
			}
			return []any{DerivePosition(title), a.AttrOr("href", "")}, nil
		},
	}
}

// SecondaryReference extracts the id following marker in the first link of
// the row whose href contains linkSubstr. When required is false a missing
// link or marker yields 0.
func SecondaryReference(linkSubstr, marker, column string, at int, required bool) Derivation {
	return Derivation{
		Name:    "secondary reference of " + linkSubstr + " link",
		Columns: []Column{{Name: column, At: at}},
		Derive: func(ctx RowContext) ([]any, error) {
			a, ok := ctx.Link(linkSubstr)
			if !ok {
				if !required {
					return []any{int64(0)}, nil
				}
				return nil, &MalformedFieldError{Field: column, Value: ctx.Record.String("row_id"), Reason: fmt.Sprintf("row has no %s link", linkSubstr)}
			}
			id, err := SecondaryId(a.AttrOr("href", ""), marker)
			if err != nil {
				if !required {
					return []any{int64(0)}, nil
				}
				return nil, err
			}
			return []any{id}, nil
		},
	}
}
