package tui

import (
	"strings"
	"testing"

	"github.com/muesli/reflow/ansi"

	"github.com/csheth/docreader/internal/highlight"
	"github.com/csheth/docreader/internal/structure"
)

func TestLayoutStructuralCountsWrappedRows(t *testing.T) {
	text := "# Intro\n" + strings.Repeat("word ", 20) + "\nSECOND PART\ntail"
	headings := structure.Extract(text)
	view := layoutStructural(text, headings, 30)

	if view.anchors["section-0"] != 0 {
		t.Fatalf("first heading row = %d", view.anchors["section-0"])
	}
	// 100 characters wrap onto four rows at width 30
	if got := view.anchors["section-2"]; got != 5 {
		t.Fatalf("second heading row = %d, want 5\n%s", got, view.content)
	}
	rows := strings.Split(view.content, "\n")
	if !strings.Contains(rows[5], "SECOND PART") {
		t.Fatalf("row 5 = %q", rows[5])
	}
	if strings.Contains(rows[0], "#") {
		t.Fatalf("markup marker should be dropped: %q", rows[0])
	}
}

func TestLayoutStructuralPlaceholder(t *testing.T) {
	view := layoutStructural("  \n", nil, 40)
	if !strings.Contains(view.content, "No content available") || len(view.anchors) != 0 {
		t.Fatalf("unexpected view %#v", view)
	}
}

func TestLayoutSearchMatchRows(t *testing.T) {
	text := "alpha\nbeta gamma\n\ngamma again"
	res := highlight.ApplyWith(text, "GAMMA", terminalRenderer{current: 1})
	view := layoutSearch(text, res, 40)
	if len(view.matchRows) != 2 || view.matchRows[0] != 1 || view.matchRows[1] != 3 {
		t.Fatalf("matchRows = %v", view.matchRows)
	}
	if view.anchors != nil {
		t.Fatal("search layout should not produce anchors")
	}
	for _, line := range strings.Split(view.content, "\n") {
		if ansi.PrintableRuneWidth(line) > 40 {
			t.Fatalf("line exceeds width: %q", line)
		}
	}
}

func TestLayoutSearchWithoutMatches(t *testing.T) {
	text := "nothing here"
	res := highlight.ApplyWith(text, "zzz", terminalRenderer{})
	if !res.Active {
		t.Fatal("non-blank query should be active")
	}
	view := layoutSearch(text, res, 40)
	if !strings.Contains(view.content, "No matches") || !strings.Contains(view.content, text) {
		t.Fatalf("content = %q", view.content)
	}
}

func TestPageLayoutReservesOutlineColumn(t *testing.T) {
	l := newPageLayout()
	l.Update(120, 40, true)
	if l.tocWidth != 30 {
		t.Fatalf("tocWidth = %d", l.tocWidth)
	}
	if l.viewportWidth != 120-30-viewportHorizontalPadding-2 {
		t.Fatalf("viewportWidth = %d", l.viewportWidth)
	}
	if l.viewportHeight != 40-readerChromeHeight {
		t.Fatalf("viewportHeight = %d", l.viewportHeight)
	}

	l.Update(15, 4, false)
	if l.tocWidth != 0 || l.viewportWidth != minViewportWidth || l.viewportHeight != 5 {
		t.Fatalf("small window layout = %#v", l)
	}
}

func TestSectionRowsFallBackToSourceLine(t *testing.T) {
	headings := []structure.Heading{{SectionID: "section-0", SourceLine: 0}, {SectionID: "section-9", SourceLine: 9}}
	rows := sectionRows(headings, map[string]int{"section-0": 2})
	if rows[0] != 2 || rows[1] != 9 {
		t.Fatalf("rows = %v", rows)
	}
}
