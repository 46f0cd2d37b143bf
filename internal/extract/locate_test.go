package extract

import (
	"errors"
	"testing"

	"alamos-extract/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseDoc(t testing.TB, src string) *goquery.Selection {
	t.Helper()
	doc, err := htmlutil.Parse([]byte(src), "utf-8")
	require.NoError(t, err)
	return doc.Selection
}

func TestLocateContainsText(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		count int
	}{
		{
			name:  "none",
			doc:   `<table><tr><td>Patient Name</td></tr></table>`,
			count: 0,
		},
		{
			name:  "one",
			doc:   `<table><tr><td>Other</td></tr></table><table id="main"><tr><td>Cluster Name</td><td>x</td></tr></table>`,
			count: 1,
		},
		{
			name:  "two",
			doc:   `<table><tr><td>Cluster Name</td></tr></table><table><tr><td>Cluster Name</td></tr></table>`,
			count: 2,
		},
		{
			name:  "layout table around the match is not a candidate",
			doc:   `<table><tr><td><table id="main"><tr><td>Cluster Name</td></tr></table></td></tr></table>`,
			count: 1,
		},
		{
			name:  "outer table with its own marker is a second candidate",
			doc:   `<table><tr><td>Cluster Name</td><td><table><tr><td>Cluster Name</td></tr></table></td></tr></table>`,
			count: 2,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			root := parseDoc(t, test.doc)
			table, err := LocateTable(root, ContainsText("Cluster Name"))
			if test.count == 1 {
				require.NoError(t, err)
				require.Equal(t, "main", table.AttrOr("id", ""))
				return
			}

			var ambiguous *AmbiguousStructureError
			require.True(t, errors.As(err, &ambiguous), "expected AmbiguousStructureError, got %v", err)
			require.Equal(t, test.count, ambiguous.Count)
		})
	}
}

func TestLocateAncestorOfLinks(t *testing.T) {
	pattern := MustRefPattern(`patient\.comp\?pat_id=(\d+)`)

	root := parseDoc(t, `
		<table id="menu"><tr><td><a href="cluster.comp?clu_id=1">c</a></td></tr></table>
		<table id="main">
			<tr><td><a href="patient.comp?pat_id=10">A(10)</a></td></tr>
			<tr><td><a href="patient.comp?pat_id=11">B(11)</a></td></tr>
		</table>`)
	table, err := LocateTable(root, AncestorOfLinks(pattern))
	require.NoError(t, err)
	require.Equal(t, "main", table.AttrOr("id", ""))

	root = parseDoc(t, `
		<table><tr><td><a href="patient.comp?pat_id=10">A(10)</a></td></tr></table>
		<table><tr><td><a href="patient.comp?pat_id=11">B(11)</a></td></tr></table>`)
	_, err = LocateTable(root, AncestorOfLinks(pattern))
	var ambiguous *AmbiguousStructureError
	require.ErrorAs(t, err, &ambiguous)
	require.Equal(t, 2, ambiguous.Count)

	root = parseDoc(t, `<p><a href="patient.comp?pat_id=10">outside</a></p>`)
	_, err = LocateTable(root, AncestorOfLinks(pattern))
	require.ErrorAs(t, err, &ambiguous)
	require.Equal(t, 0, ambiguous.Count)
}
