// Package reader ties structure inference, scroll tracking and search
// highlighting together for one open document.
package reader

import (
	"github.com/csheth/docreader/internal/document"
	"github.com/csheth/docreader/internal/highlight"
	"github.com/csheth/docreader/internal/scrollsync"
	"github.com/csheth/docreader/internal/structure"
)

// State mirrors what a reader view displays besides the text itself.
type State struct {
	SearchQuery      string  `json:"searchQuery"`
	ProgressPercent  float64 `json:"progressPercent"`
	ActiveSectionID  string  `json:"activeSectionId"`
	SearchMatchCount int     `json:"searchMatchCount"`
}

// Session is the derived state of one opened document. Opening another
// document means building a new Session.
type Session struct {
	doc      document.Document
	headings []structure.Heading
	anchors  scrollsync.AnchorTable
	tracker  *scrollsync.Tracker
	state    State
	closed   bool
}

// Open extracts the outline of doc once and prepares a tracker over it.
func Open(doc document.Document, opts ...scrollsync.Option) *Session {
	headings := structure.Extract(doc.TextContent)
	anchors := scrollsync.AnchorTable{}
	return &Session{
		doc:      doc,
		headings: headings,
		anchors:  anchors,
		tracker:  scrollsync.NewTracker(headings, anchors, opts...),
	}
}

func (s *Session) Document() document.Document     { return s.doc }
func (s *Session) Headings() []structure.Heading   { return s.headings }
func (s *Session) Anchors() scrollsync.AnchorTable { return s.anchors }
func (s *Session) State() State                    { return s.state }
func (s *Session) Searching() bool                 { return s.state.SearchQuery != "" }
func (s *Session) Closed() bool                    { return s.closed }

// SetAnchors replaces the anchor table after the structural view was laid out
// again.
func (s *Session) SetAnchors(anchors scrollsync.AnchorTable) {
	if anchors == nil {
		anchors = scrollsync.AnchorTable{}
	}
	s.anchors = anchors
	s.tracker.SetAnchors(anchors)
}

// Scroll records a scroll observation and returns the updated state.
func (s *Session) Scroll(scrollTop, viewportHeight, scrollHeight int) State {
	if s.closed {
		return s.state
	}
	snap := s.tracker.OnScroll(scrollTop, viewportHeight, scrollHeight)
	s.state.ProgressPercent = snap.ProgressPercent
	if !s.tracker.Suspended() {
		s.state.ActiveSectionID = snap.ActiveSectionID
	}
	return s.state
}

// SetQuery recomputes the highlight for query. A non-empty query suspends
// section tracking; clearing it resumes tracking.
func (s *Session) SetQuery(query string, r highlight.Renderer) highlight.Result {
	if s.closed {
		return highlight.Result{}
	}
	if r == nil {
		r = highlight.HTML
	}
	res := highlight.ApplyWith(s.doc.TextContent, query, r)
	if res.Active {
		s.state.SearchQuery = query
		s.state.SearchMatchCount = res.MatchCount
		s.state.ActiveSectionID = ""
		s.tracker.Suspend()
		return res
	}
	s.state.SearchQuery = ""
	s.state.SearchMatchCount = 0
	s.tracker.Resume()
	return res
}

// ScrollTo resolves the scroll destination of a heading.
func (s *Session) ScrollTo(sectionID string) (scrollsync.Target, error) {
	if s.closed {
		return scrollsync.Target{}, scrollsync.ErrUnknownSection
	}
	return s.tracker.ScrollTarget(sectionID)
}

// Close discards everything derived from the document.
func (s *Session) Close() {
	s.headings = nil
	s.anchors = scrollsync.AnchorTable{}
	s.tracker = scrollsync.NewTracker(nil, nil)
	s.state = State{}
	s.closed = true
}
