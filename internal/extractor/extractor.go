// Package extractor pulls plain text out of rendered HTML by tag name and
// optional element id.
package extractor

import (
	"fmt"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Selector identifies the elements whose text is extracted.
type Selector struct {
	Tag string // element name, matched case-insensitively
	ID  string // optional; matched exactly against the id attribute
}

var _ goquery.Matcher = Selector{}

// NewSelector normalizes tag and id into a Selector.
func NewSelector(tag, id string) Selector {
	return Selector{
		Tag: strings.ToLower(strings.TrimSpace(tag)),
		ID:  id,
	}
}

// Match reports whether n is an element selected by s.
// Every element with a matching id is selected; ids are not assumed unique.
func (s Selector) Match(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || n.Data != s.Tag {
		return false
	}
	if s.ID == "" {
		return true
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "id" {
			return a.Val == s.ID
		}
	}
	return false
}

// MatchAll returns n and its descendants matched by s, in document order.
func (s Selector) MatchAll(n *html.Node) []*html.Node {
	var matched []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if s.Match(n) {
			matched = append(matched, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return matched
}

// Filter returns the nodes matched by s.
func (s Selector) Filter(nodes []*html.Node) []*html.Node {
	var matched []*html.Node
	for _, n := range nodes {
		if s.Match(n) {
			matched = append(matched, n)
		}
	}
	return matched
}

// String renders the selector in CSS-like form for logs.
func (s Selector) String() string {
	if s.ID == "" {
		return s.Tag
	}
	return s.Tag + "#" + s.ID
}

// Extract parses markup and returns the texts of the elements matched by
// tag and id. Parsing happens up front; the returned sequence is lazy and
// yields one normalized, non-empty string per matched element in document
// order.
func Extract(markup, tag, id string) (iter.Seq[string], error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return Texts(doc.Selection, NewSelector(tag, id)), nil
}

// Texts yields the normalized text of every element under root matched by
// sel, in document order. Elements whose text is empty after normalization
// are skipped. Matched elements nested inside other matches are visited too.
func Texts(root *goquery.Selection, sel Selector) iter.Seq[string] {
	return func(yield func(string) bool) {
		root.FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := CleanText(s.Text())
			if text == "" {
				return true
			}
			return yield(text)
		})
	}
}

// CleanText trims s and collapses internal whitespace runs to single spaces.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
