package tui

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/docreader/internal/document"
	"github.com/csheth/docreader/internal/highlight"
	"github.com/csheth/docreader/internal/scrollsync"
	"github.com/csheth/docreader/internal/structure"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	tocWidth       int
	viewportWidth  int
	viewportHeight int
}

func newPageLayout() pageLayout {
	return pageLayout{viewportWidth: 80, viewportHeight: 20}
}

// Update sizes the viewport for a window, reserving a sidebar column when the
// document has an outline.
func (l *pageLayout) Update(width, height int, showTOC bool) {
	l.windowWidth = width
	l.windowHeight = height
	l.tocWidth = 0
	if showTOC {
		l.tocWidth = clamp(width/4, tocMinWidth, tocMaxWidth)
	}
	innerWidth := width - l.tocWidth - viewportHorizontalPadding
	if l.tocWidth > 0 {
		// sidebar border and padding
		innerWidth -= 2
	}
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	l.viewportHeight = height - readerChromeHeight
	if l.viewportHeight < 5 {
		l.viewportHeight = 5
	}
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

// documentView is the laid-out text of the open document. Rows are terminal
// rows after wrapping.
type documentView struct {
	content   string
	anchors   scrollsync.AnchorTable
	matchRows []int
}

// layoutStructural renders text with its inferred headings styled and records
// the row each heading lands on.
func layoutStructural(text string, headings []structure.Heading, width int) documentView {
	cb := &contentBuilder{}
	anchors := scrollsync.AnchorTable{}
	if strings.TrimSpace(text) == "" {
		cb.WriteString(helperStyle.Render(document.Placeholder))
		return documentView{content: cb.String(), anchors: anchors}
	}
	byLine := make(map[int]structure.Heading, len(headings))
	for _, h := range headings {
		byLine[h.SourceLine] = h
	}
	for idx, line := range strings.Split(text, "\n") {
		if idx > 0 {
			cb.WriteRune('\n')
		}
		line = strings.TrimRight(line, "\r")
		if h, ok := byLine[idx]; ok {
			anchors[h.SectionID] = cb.Line()
			cb.WriteString(headingStyle(h.Level).Render(wordwrap.String(headingText(line, h), width)))
			continue
		}
		cb.WriteString(wordwrap.String(line, width))
	}
	return documentView{content: cb.String(), anchors: anchors}
}

// headingText drops markup markers but keeps other headings as written.
func headingText(line string, h structure.Heading) string {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "#") {
		return h.Title
	}
	return trimmed
}

// terminalRenderer paints matches with lipgloss, the current one brighter.
type terminalRenderer struct {
	current int
}

func (terminalRenderer) Text(s string) string { return s }

func (r terminalRenderer) Match(s string, index int) string {
	if index == r.current {
		return searchCurrentStyle.Render(s)
	}
	return searchHighlightStyle.Render(s)
}

// layoutSearch wraps highlighted markup and records the first row of the
// source line holding each match.
func layoutSearch(text string, res highlight.Result, width int) documentView {
	cb := &contentBuilder{}
	if res.MatchCount == 0 {
		cb.WriteString(helperStyle.Render("No matches in this document."))
		if strings.TrimSpace(text) != "" {
			cb.WriteString("\n\n")
			writeWrapped(cb, text, width)
		}
		return documentView{content: cb.String()}
	}
	rowOfLine := writeWrapped(cb, res.Markup, width)
	matchRows := make([]int, len(res.Matches))
	for idx, span := range res.Matches {
		if line := highlight.LineOf(text, span.Start); line < len(rowOfLine) {
			matchRows[idx] = rowOfLine[line]
		}
	}
	return documentView{content: cb.String(), matchRows: matchRows}
}

// writeWrapped writes text line by line and returns the first row of each
// source line.
func writeWrapped(cb *contentBuilder, text string, width int) []int {
	lines := strings.Split(text, "\n")
	rows := make([]int, len(lines))
	for idx, line := range lines {
		if idx > 0 {
			cb.WriteRune('\n')
		}
		rows[idx] = cb.Line()
		cb.WriteString(wordwrap.String(strings.TrimRight(line, "\r"), width))
	}
	return rows
}

// sectionRows lists heading rows in document order. Headings without an
// anchor use their source line.
func sectionRows(headings []structure.Heading, anchors scrollsync.AnchorTable) []int {
	rows := make([]int, len(headings))
	for idx, h := range headings {
		if row, ok := anchors.OffsetOf(h.SectionID); ok {
			rows[idx] = row
			continue
		}
		rows[idx] = h.SourceLine
	}
	return rows
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
