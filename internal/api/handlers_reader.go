package api

import (
	"net/http"
	"sort"

	"github.com/csheth/docreader/internal/document"
	"github.com/csheth/docreader/internal/highlight"
	"github.com/csheth/docreader/internal/scrollsync"
	"github.com/csheth/docreader/internal/structure"
)

type textRequest struct {
	Text string `json:"text"`
}

type outlineResponse struct {
	Headings       []structure.Heading `json:"headings"`
	ReadingMinutes int                 `json:"readingMinutes"`
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, outlineResponse{
		Headings:       structure.Extract(req.Text),
		ReadingMinutes: document.ReadingMinutes(req.Text),
	})
}

type classifyRequest struct {
	Line string `json:"line"`
}

type classifyResponse struct {
	Heading bool   `json:"heading"`
	Level   int    `json:"level,omitempty"`
	Title   string `json:"title,omitempty"`
	Rule    string `json:"rule,omitempty"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	level, title, rule, ok := structure.Classify(req.Line)
	writeJSON(w, classifyResponse{Heading: ok, Level: level, Title: title, Rule: rule})
}

type highlightRequest struct {
	Text  string `json:"text"`
	Query string `json:"query"`
}

type highlightResponse struct {
	HTML       *string `json:"html"`
	MatchCount int     `json:"matchCount"`
}

func highlightPayload(text, query string) highlightResponse {
	res := highlight.Apply(text, query)
	if !res.Active {
		return highlightResponse{}
	}
	markup := res.Markup
	return highlightResponse{HTML: &markup, MatchCount: res.MatchCount}
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req highlightRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, highlightPayload(req.Text, req.Query))
}

type progressRequest struct {
	ScrollTop      int                    `json:"scrollTop"`
	ViewportHeight int                    `json:"viewportHeight"`
	ScrollHeight   int                    `json:"scrollHeight"`
	Anchors        scrollsync.AnchorTable `json:"anchors"`
	Headings       []structure.Heading    `json:"headings"`
	LookAhead      *int                   `json:"lookAhead,omitempty"`
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var opts []scrollsync.Option
	if req.LookAhead != nil {
		opts = append(opts, scrollsync.WithLookAhead(*req.LookAhead))
	}
	// Clients may post headings in any order; the tracker expects document order.
	headings := append([]structure.Heading(nil), req.Headings...)
	sort.SliceStable(headings, func(i, j int) bool {
		return headings[i].SourceLine < headings[j].SourceLine
	})
	tracker := scrollsync.NewTracker(headings, req.Anchors, opts...)
	writeJSON(w, tracker.OnScroll(req.ScrollTop, req.ViewportHeight, req.ScrollHeight))
}
