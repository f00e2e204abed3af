package scrollsync

import (
	"errors"
	"testing"

	"github.com/csheth/docreader/internal/structure"
)

type fakeAnchors map[string]int

func (f fakeAnchors) OffsetOf(sectionID string) (int, bool) {
	v, ok := f[sectionID]
	return v, ok
}

func sampleHeadings() []structure.Heading {
	return []structure.Heading{
		{Level: 1, Title: "Intro", SectionID: "section-0", SourceLine: 0},
		{Level: 2, Title: "Body", SectionID: "section-10", SourceLine: 10},
		{Level: 2, Title: "Tail", SectionID: "section-40", SourceLine: 40},
	}
}

func TestProgress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                        string
		top, viewport, scrollHeight int
		want                        float64
	}{
		{"top", 0, 500, 1500, 0},
		{"middle", 500, 500, 1500, 50},
		{"bottom", 1000, 500, 1500, 100},
		{"overscroll", 1400, 500, 1500, 100},
		{"negative", -20, 500, 1500, 0},
		{"content shorter than viewport", 0, 800, 300, 0},
		{"content equals viewport", 10, 800, 800, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Progress(tt.top, tt.viewport, tt.scrollHeight); got != tt.want {
				t.Fatalf("Progress(%d, %d, %d) = %v, want %v", tt.top, tt.viewport, tt.scrollHeight, got, tt.want)
			}
		})
	}
}

func TestProgressBounds(t *testing.T) {
	t.Parallel()

	const viewport, scrollHeight = 600, 4321
	for top := 0; top <= scrollHeight; top += 7 {
		got := Progress(top, viewport, scrollHeight)
		if got < 0 || got > 100 {
			t.Fatalf("Progress(%d) = %v out of bounds", top, got)
		}
	}
}

func TestActiveSectionUsesLookAhead(t *testing.T) {
	t.Parallel()

	anchors := fakeAnchors{"section-0": 0, "section-10": 300, "section-40": 1200}
	tracker := NewTracker(sampleHeadings(), anchors)

	tests := []struct {
		top  int
		want string
	}{
		{0, "section-0"},
		{199, "section-0"},
		{200, "section-10"},
		{1099, "section-10"},
		{1100, "section-40"},
		{5000, "section-40"},
	}
	for _, tt := range tests {
		snap := tracker.OnScroll(tt.top, 400, 3000)
		if snap.ActiveSectionID != tt.want {
			t.Fatalf("scrollTop %d: active %q, want %q", tt.top, snap.ActiveSectionID, tt.want)
		}
	}
}

func TestActiveSectionUnsetBeforeFirstHeading(t *testing.T) {
	t.Parallel()

	anchors := fakeAnchors{"section-0": 500, "section-10": 900, "section-40": 1500}
	tracker := NewTracker(sampleHeadings(), anchors)
	if snap := tracker.OnScroll(0, 400, 3000); snap.ActiveSectionID != "" {
		t.Fatalf("expected no active section, got %q", snap.ActiveSectionID)
	}
	empty := NewTracker(nil, nil)
	if snap := empty.OnScroll(100, 400, 3000); snap.ActiveSectionID != "" {
		t.Fatalf("empty tracker reported active section %q", snap.ActiveSectionID)
	}
}

func TestActiveSectionMonotonic(t *testing.T) {
	t.Parallel()

	anchors := fakeAnchors{"section-0": 40, "section-10": 420, "section-40": 1900}
	tracker := NewTracker(sampleHeadings(), anchors, WithLookAhead(50))
	lastLine := -1
	for top := 0; top < 3000; top += 13 {
		h, ok := tracker.ActiveSection(top)
		if !ok {
			continue
		}
		if h.SourceLine < lastLine {
			t.Fatalf("active section moved backwards at %d: %d < %d", top, h.SourceLine, lastLine)
		}
		lastLine = h.SourceLine
	}
	if lastLine != 40 {
		t.Fatalf("expected to end on the last section, got line %d", lastLine)
	}
}

func TestScrollTargetPrefersAnchor(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(sampleHeadings(), fakeAnchors{"section-10": 333})
	target, err := tracker.ScrollTarget("section-10")
	if err != nil {
		t.Fatalf("ScrollTarget: %v", err)
	}
	if !target.Exact || target.Offset != 333 {
		t.Fatalf("expected exact anchor 333, got %#v", target)
	}
}

func TestScrollTargetFallsBackToLineEstimate(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(sampleHeadings(), fakeAnchors{})
	target, err := tracker.ScrollTarget("section-40")
	if err != nil {
		t.Fatalf("ScrollTarget: %v", err)
	}
	if target.Exact {
		t.Fatal("fallback target should not be exact")
	}
	if target.Offset != 40*DefaultLineHeight {
		t.Fatalf("fallback offset = %d, want %d", target.Offset, 40*DefaultLineHeight)
	}

	rows := NewTracker(sampleHeadings(), nil, WithLineHeight(1))
	target, _ = rows.ScrollTarget("section-10")
	if target.Offset != 10 {
		t.Fatalf("row-based fallback = %d, want 10", target.Offset)
	}
}

func TestScrollTargetErrors(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(sampleHeadings(), fakeAnchors{})
	if _, err := tracker.ScrollTarget("section-7"); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
	tracker.Suspend()
	if _, err := tracker.ScrollTarget("section-10"); !errors.Is(err, ErrSuspended) {
		t.Fatalf("expected ErrSuspended, got %v", err)
	}
}

func TestSuspendedTrackerKeepsProgressOnly(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(sampleHeadings(), fakeAnchors{"section-0": 0})
	tracker.Suspend()
	snap := tracker.OnScroll(250, 500, 1000)
	if snap.ActiveSectionID != "" {
		t.Fatalf("suspended tracker reported %q", snap.ActiveSectionID)
	}
	if snap.ProgressPercent != 50 {
		t.Fatalf("progress = %v, want 50", snap.ProgressPercent)
	}
	tracker.Resume()
	if snap := tracker.OnScroll(250, 500, 1000); snap.ActiveSectionID != "section-0" {
		t.Fatalf("resumed tracker reported %q", snap.ActiveSectionID)
	}
}

func TestSmoothPath(t *testing.T) {
	t.Parallel()

	path := SmoothPath(0, 90, 6)
	if path[len(path)-1] != 90 {
		t.Fatalf("path should end at target, got %v", path)
	}
	for i := 1; i < len(path); i++ {
		if path[i] <= path[i-1] {
			t.Fatalf("path not strictly increasing: %v", path)
		}
	}

	up := SmoothPath(50, 10, 4)
	if up[len(up)-1] != 10 {
		t.Fatalf("upward path should end at target, got %v", up)
	}

	if got := SmoothPath(5, 5, 8); len(got) != 1 || got[0] != 5 {
		t.Fatalf("no-op path = %v", got)
	}
	if got := SmoothPath(0, 3, 0); len(got) != 1 || got[0] != 3 {
		t.Fatalf("zero-frame path = %v", got)
	}
}
