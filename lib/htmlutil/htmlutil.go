package htmlutil

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Parse decodes raw page bytes into a document. encodingHint is a charset label
// such as "utf-8" or "latin1", when it is empty the charset is detected from
// the bytes themselves.
func Parse(raw []byte, encodingHint string) (*goquery.Document, error) {
	label := encodingHint
	if label == "" {
		label = DetectCharset(raw)
	}
	reader, err := charset.NewReaderLabel(label, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", label, err)
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// DetectCharset guesses the charset of raw, falling back to utf-8.
func DetectCharset(raw []byte) string {
	result, err := chardet.NewHtmlDetector().DetectBest(raw)
	if err != nil || result == nil {
		return "utf-8"
	}
	label := strings.ToLower(result.Charset)
	if enc, _ := charset.Lookup(label); enc == nil {
		return "utf-8"
	}
	return label
}

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

// NormalizeText removes non-printable runes, trims the ends and collapses
// inner runs of whitespace into a single space.
func NormalizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}

// Anchor is a hyperlink as it appears in the document.
type Anchor struct {
	Name string
	Href string
	Node *html.Node
}

// GetAnchors lists every anchor with an href under sel in document order.
func GetAnchors(sel *goquery.Selection) []Anchor {
	var anchors []Anchor
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		node := a.Get(0)
		anchors = append(anchors, Anchor{
			Name: NormalizeText(GetText(node)),
			Href: a.AttrOr("href", ""),
			Node: node,
		})
	})
	return anchors
}
