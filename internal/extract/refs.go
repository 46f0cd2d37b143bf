package extract

import (
	"fmt"
	"regexp"
	"strconv"

	"alamos-extract/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// Reference is an id-bearing link: the text it displays and the numeric id
// encoded in its url.
type Reference struct {
	Label string
	Id    int64
}

// RefPattern matches the href of an id-bearing link. Its single capture group
// is the numeric id.
type RefPattern struct {
	re *regexp.Regexp
}

func NewRefPattern(expr string) (RefPattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return RefPattern{}, err
	}
	if re.NumSubexp() != 1 {
		return RefPattern{}, fmt.Errorf("reference pattern %q must have exactly one capture group, has %d", expr, re.NumSubexp())
	}
	return RefPattern{re: re}, nil
}

func MustRefPattern(expr string) RefPattern {
	p, err := NewRefPattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p RefPattern) String() string {
	return p.re.String()
}

func (p RefPattern) Matches(href string) bool {
	return p.re.MatchString(href)
}

// Id returns the id encoded in href, ok is false if href does not match.
func (p RefPattern) Id(href string) (id int64, ok bool, err error) {
	groups := p.re.FindStringSubmatch(href)
	if groups == nil {
		return 0, false, nil
	}
	id, err = strconv.ParseInt(groups[1], 10, 64)
	if err != nil {
		return 0, true, &MalformedFieldError{Field: "href", Value: href, Reason: "id is not an integer"}
	}
	return id, true, nil
}

// ExtractReferences returns every link under sel whose href matches pattern,
// in document order. Duplicates are kept.
func ExtractReferences(sel *goquery.Selection, pattern RefPattern) ([]Reference, error) {
	var refs []Reference
	for _, a := range htmlutil.GetAnchors(sel) {
		id, ok, err := pattern.Id(a.Href)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		refs = append(refs, Reference{Label: a.Name, Id: id})
	}
	return refs, nil
}
