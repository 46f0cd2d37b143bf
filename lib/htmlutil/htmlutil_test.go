package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "  JRFL  ", expected: "JRFL"},
		{input: "\n\tCluster\n   Name\t", expected: "Cluster Name"},
		{input: "a\u200bb", expected: "ab"},
		{input: "", expected: ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeText(test.input))
	}
}

func TestGetAnchors(t *testing.T) {
	doc, err := Parse([]byte(`<html><body>
		<a href="patient.comp?pat_id=1"> P1 </a>
		<a name="top">no href</a>
		<p><a href="cluster.comp?clu_id=7">Cluster
			Seven</a></p>
	</body></html>`), "utf-8")
	if err != nil {
		t.Fatal(err)
	}

	anchors := GetAnchors(doc.Selection)
	require.Len(t, anchors, 2)
	require.Equal(t, "P1", anchors[0].Name)
	require.Equal(t, "patient.comp?pat_id=1", anchors[0].Href)
	require.Equal(t, "Cluster Seven", anchors[1].Name)
	require.NotNil(t, anchors[1].Node)
}

func TestParseLatin1(t *testing.T) {
	// "Côte" in ISO-8859-1
	raw := []byte("<html><body><p>C\xf4te</p></body></html>")
	doc, err := Parse(raw, "latin1")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "Côte", doc.Find("p").Text())
}

func TestParseUnknownLabel(t *testing.T) {
	_, err := Parse([]byte("<html></html>"), "not-a-charset")
	require.Error(t, err)
}

func TestParseDetectsCharset(t *testing.T) {
	raw := []byte("<html><body><p>Côte d'Ivoire, São Tomé, Curaçao, Réunion</p></body></html>")
	require.Equal(t, "utf-8", DetectCharset(raw))

	doc, err := Parse(raw, "")
	require.NoError(t, err)
	require.Equal(t, "Côte d'Ivoire, São Tomé, Curaçao, Réunion", doc.Find("p").Text())
}
