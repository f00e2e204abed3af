package api

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/csheth/docreader/internal/docapi"
	"github.com/csheth/docreader/internal/document"
	"github.com/csheth/docreader/internal/printview"
	"github.com/csheth/docreader/internal/structure"
)

type cachedDocument struct {
	doc      document.Document
	headings []structure.Heading
}

type docOutlineResponse struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Kind           string              `json:"kind"`
	Size           string              `json:"size"`
	Storage        string              `json:"storage"`
	Extracted      bool                `json:"extracted"`
	DownloadURL    string              `json:"downloadUrl"`
	Headings       []structure.Heading `json:"headings"`
	ReadingMinutes int                 `json:"readingMinutes"`
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// cacheKey scopes cached documents to the caller so tokens never share data.
func cacheKey(docID, token string) string {
	sum := sha1.Sum([]byte(token))
	return docID + ":" + hex.EncodeToString(sum[:8])
}

func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) (cachedDocument, bool) {
	if s.docs == nil {
		jsonError(w, "document upstream not configured", http.StatusServiceUnavailable)
		return cachedDocument{}, false
	}
	docID := chi.URLParam(r, "docID")
	token := bearerToken(r)
	key := cacheKey(docID, token)
	if v, ok := s.cache.Get(key); ok {
		return v.(cachedDocument), true
	}

	doc, err := s.docs.Document(r.Context(), docID, token)
	if err != nil {
		s.writeUpstreamError(w, docID, err)
		return cachedDocument{}, false
	}
	entry := cachedDocument{doc: *doc, headings: structure.Extract(doc.TextContent)}
	s.cache.SetDefault(key, entry)
	return entry, true
}

func (s *Server) writeUpstreamError(w http.ResponseWriter, docID string, err error) {
	var apiErr *docapi.APIError
	switch {
	case errors.Is(err, docapi.ErrNotFound):
		jsonError(w, "document not found", http.StatusNotFound)
	case errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden):
		jsonError(w, "upstream rejected credentials", apiErr.Status)
	default:
		s.log.Warn("upstream fetch failed", zap.String("doc_id", docID), zap.Error(err))
		jsonError(w, "failed to load document: "+err.Error(), http.StatusBadGateway)
	}
}

func (s *Server) handleDocOutline(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	doc := entry.doc
	writeJSON(w, docOutlineResponse{
		ID:             doc.ID,
		Title:          doc.DisplayTitle(),
		Kind:           doc.KindLabel(),
		Size:           doc.SizeLabel(),
		Storage:        doc.StorageLabel(),
		Extracted:      doc.Extracted(),
		DownloadURL:    doc.DownloadPath(),
		Headings:       entry.headings,
		ReadingMinutes: doc.ReadingMinutes(),
	})
}

func (s *Server) handleDocHighlight(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, highlightPayload(entry.doc.TextContent, r.URL.Query().Get("q")))
}

func (s *Server) handleDocPrint(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.loadDocument(w, r)
	if !ok {
		return
	}
	page, err := printview.Render(entry.doc, r.URL.Query().Get("q"))
	if err != nil {
		jsonError(w, "failed to render document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
