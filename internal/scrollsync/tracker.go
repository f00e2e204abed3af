// Package scrollsync keeps reading progress and the active outline section in
// step with a scrolling viewport.
package scrollsync

import (
	"errors"
	"math"

	"github.com/csheth/docreader/internal/structure"
)

const (
	// DefaultLookAhead marks a heading active slightly before it reaches the
	// top edge of the viewport.
	DefaultLookAhead = 100
	// DefaultLineHeight approximates one rendered source line when no anchor
	// has been mounted for a section yet.
	DefaultLineHeight = 28
)

var (
	ErrUnknownSection = errors.New("scrollsync: unknown section")
	ErrSuspended      = errors.New("scrollsync: navigation suspended while searching")
)

// AnchorPositionProvider reports the rendered vertical offset of a section
// anchor inside the scrollable content.
type AnchorPositionProvider interface {
	OffsetOf(sectionID string) (int, bool)
}

// AnchorTable maps section ids to their current vertical offsets.
type AnchorTable map[string]int

// OffsetOf implements AnchorPositionProvider.
func (t AnchorTable) OffsetOf(sectionID string) (int, bool) {
	offset, ok := t[sectionID]
	return offset, ok
}

// Snapshot is the result of one scroll observation.
type Snapshot struct {
	ProgressPercent float64 `json:"progressPercent"`
	ActiveSectionID string  `json:"activeSectionId"`
}

// Target is a resolved scroll destination for a section.
type Target struct {
	SectionID string
	Offset    int
	// Exact is false when Offset was approximated from the source line.
	Exact bool
}

// Option customises a Tracker.
type Option func(*Tracker)

// WithLookAhead overrides the active-section threshold.
func WithLookAhead(n int) Option {
	return func(t *Tracker) {
		if n >= 0 {
			t.lookAhead = n
		}
	}
}

// WithLineHeight overrides the per-line height used by the fallback path.
func WithLineHeight(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.lineHeight = n
		}
	}
}

// Tracker derives progress and the active section from scroll offsets.
// It is not safe for concurrent use; the owning view drives it from its
// event loop.
type Tracker struct {
	headings   []structure.Heading
	anchors    AnchorPositionProvider
	lookAhead  int
	lineHeight int
	suspended  bool
}

// NewTracker builds a tracker over headings. A nil provider behaves like an
// empty anchor table.
func NewTracker(headings []structure.Heading, anchors AnchorPositionProvider, opts ...Option) *Tracker {
	if anchors == nil {
		anchors = AnchorTable{}
	}
	t := &Tracker{
		headings:   headings,
		anchors:    anchors,
		lookAhead:  DefaultLookAhead,
		lineHeight: DefaultLineHeight,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetAnchors swaps the anchor provider, typically after a re-render.
func (t *Tracker) SetAnchors(anchors AnchorPositionProvider) {
	if anchors == nil {
		anchors = AnchorTable{}
	}
	t.anchors = anchors
}

func (t *Tracker) Suspend()        { t.suspended = true }
func (t *Tracker) Resume()         { t.suspended = false }
func (t *Tracker) Suspended() bool { return t.suspended }

// OnScroll is called for every scroll event. It never rescans the document.
func (t *Tracker) OnScroll(scrollTop, viewportHeight, scrollHeight int) Snapshot {
	snap := Snapshot{ProgressPercent: Progress(scrollTop, viewportHeight, scrollHeight)}
	if t.suspended {
		return snap
	}
	if h, ok := t.ActiveSection(scrollTop); ok {
		snap.ActiveSectionID = h.SectionID
	}
	return snap
}

// ActiveSection returns the last heading, in document order, whose anchor sits
// at or above scrollTop plus the look-ahead.
func (t *Tracker) ActiveSection(scrollTop int) (structure.Heading, bool) {
	threshold := scrollTop + t.lookAhead
	for i := len(t.headings) - 1; i >= 0; i-- {
		h := t.headings[i]
		offset, ok := t.anchors.OffsetOf(h.SectionID)
		if !ok {
			continue
		}
		if offset <= threshold {
			return h, true
		}
	}
	return structure.Heading{}, false
}

// ScrollTarget resolves where the viewport should move to show sectionID at
// the top. Sections without a mounted anchor fall back to an estimate.
func (t *Tracker) ScrollTarget(sectionID string) (Target, error) {
	if t.suspended {
		return Target{}, ErrSuspended
	}
	h, ok := structure.Find(t.headings, sectionID)
	if !ok {
		return Target{}, ErrUnknownSection
	}
	if offset, ok := t.anchors.OffsetOf(sectionID); ok {
		return Target{SectionID: sectionID, Offset: offset, Exact: true}, nil
	}
	return Target{SectionID: sectionID, Offset: h.SourceLine * t.lineHeight}, nil
}

// Progress converts a scroll position into a reading percentage in [0, 100].
func Progress(scrollTop, viewportHeight, scrollHeight int) float64 {
	scrollable := scrollHeight - viewportHeight
	if scrollable <= 0 {
		return 0
	}
	pct := float64(scrollTop) / float64(scrollable) * 100
	return math.Min(100, math.Max(0, pct))
}

// SmoothPath returns the intermediate offsets of an ease-out scroll from
// from to to. The last element is always to.
func SmoothPath(from, to, frames int) []int {
	if frames < 1 || from == to {
		return []int{to}
	}
	path := make([]int, 0, frames)
	last := from
	for i := 1; i <= frames; i++ {
		p := float64(i) / float64(frames)
		eased := 1 - math.Pow(1-p, 3)
		step := from + int(math.Round(float64(to-from)*eased))
		if step == last {
			continue
		}
		path = append(path, step)
		last = step
	}
	if path[len(path)-1] != to {
		path = append(path, to)
	}
	return path
}
