package feed

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

const ellipsis = "..."

// CleanHTML extracts the visible text of an HTML fragment, collapsing runs of
// whitespace into single spaces.
func CleanHTML(s string) string {
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			doc.Find("script, style").Remove()
			doc.Find("br, p, div, li, tr, h1, h2, h3, h4, h5, h6").AfterHtml(" ")
			s = doc.Text()
		}
	}
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// Truncate cuts s to at most n runes. The second result reports whether
// anything was cut.
func Truncate(s string, n int) (string, bool) {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}

// Ellipsize truncates s to n runes and appends "..." when it was longer.
func Ellipsize(s string, n int) string {
	if out, cut := Truncate(s, n); cut {
		return out + ellipsis
	}
	return s
}
