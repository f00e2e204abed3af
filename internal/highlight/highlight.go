// Package highlight marks literal, case-insensitive query matches in text.
package highlight

import (
	"html"
	"regexp"
	"strings"
)

// Span is a byte range [Start, End) of a match inside the source text.
type Span struct {
	Start int
	End   int
}

// Renderer decides how plain segments and matches are emitted.
type Renderer interface {
	Text(s string) string
	Match(s string, index int) string
}

// Result is the outcome of a highlight pass. When Active is false the caller
// should fall back to its normal structural rendering.
type Result struct {
	Markup     string
	MatchCount int
	Matches    []Span
	Active     bool
}

type htmlRenderer struct{}

func (htmlRenderer) Text(s string) string { return html.EscapeString(s) }

func (htmlRenderer) Match(s string, _ int) string {
	return "<mark>" + html.EscapeString(s) + "</mark>"
}

// HTML escapes plain text and wraps matches in <mark> elements.
var HTML Renderer = htmlRenderer{}

// Apply highlights query in text using the HTML renderer.
func Apply(text, query string) Result {
	return ApplyWith(text, query, HTML)
}

// ApplyWith highlights query in text using r. Empty or whitespace-only
// queries produce an inactive Result.
func ApplyWith(text, query string, r Renderer) Result {
	if strings.TrimSpace(query) == "" {
		return Result{}
	}
	matches, err := Find(text, query)
	if err != nil {
		return Result{}
	}
	var b strings.Builder
	pos := 0
	for idx, m := range matches {
		if m.Start > pos {
			b.WriteString(r.Text(text[pos:m.Start]))
		}
		b.WriteString(r.Match(text[m.Start:m.End], idx))
		pos = m.End
	}
	if pos < len(text) {
		b.WriteString(r.Text(text[pos:]))
	}
	return Result{
		Markup:     b.String(),
		MatchCount: len(matches),
		Matches:    matches,
		Active:     true,
	}
}

// Find returns the non-overlapping matches of query in text. The query is
// always treated as literal text.
func Find(text, query string) ([]Span, error) {
	if query == "" {
		return nil, nil
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil, err
	}
	locs := re.FindAllStringIndex(text, -1)
	spans := make([]Span, 0, len(locs))
	for _, loc := range locs {
		spans = append(spans, Span{Start: loc[0], End: loc[1]})
	}
	return spans, nil
}

// LineOf returns the zero-based line holding byte offset in text.
func LineOf(text string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	return strings.Count(text[:offset], "\n")
}
