// Package testutil holds assertions shared by the preview, handler and ui
// tests that inspect rendered demo pages.
package testutil

import (
	"bytes"
	"html/template"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses a rendered page or fails the test.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func ParseFragment(t testing.TB, fragment template.HTML) *goquery.Document {
	t.Helper()
	return ParseHTML(t, []byte(fragment))
}

// Text returns the trimmed text of everything matching selector.
func Text(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).Text())
}

// Attr returns attribute name of the first match, failing the test when the
// element or attribute is missing.
func Attr(t testing.TB, doc *goquery.Document, selector, name string) string {
	t.Helper()
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		t.Fatalf("no element matches %q", selector)
	}
	value, ok := sel.First().Attr(name)
	if !ok {
		t.Fatalf("%q has no %s attribute", selector, name)
	}
	return value
}

// SectionIDs lists the ids of top-level page sections in render order.
func SectionIDs(doc *goquery.Document) []string {
	var ids []string
	doc.Find("body > section").Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok {
			ids = append(ids, id)
		}
	})
	return ids
}
