// Package api serves the reader core over HTTP for browser clients.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/csheth/docreader/internal/docapi"
	"github.com/csheth/docreader/internal/document"
)

const maxBodyBytes = 10 << 20

// DocumentFetcher loads a document from the upstream API on behalf of the
// caller identified by token.
type DocumentFetcher interface {
	Document(ctx context.Context, id, token string) (*document.Document, error)
}

// Upstream adapts a docapi client to DocumentFetcher. Requests always carry
// the caller's token, so an anonymous caller reaches the API anonymously
// rather than with the operator's credential.
type Upstream struct {
	Client *docapi.Client
}

func (u Upstream) Document(ctx context.Context, id, token string) (*document.Document, error) {
	return u.Client.WithToken(token).Document(ctx, id)
}

type Server struct {
	router chi.Router
	docs   DocumentFetcher
	cache  *cache.Cache
	log    *zap.Logger
}

// NewServer wires routes. docs may be nil, in which case the document routes
// answer 503.
func NewServer(docs DocumentFetcher, outlineTTL time.Duration, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if outlineTTL <= 0 {
		outlineTTL = 10 * time.Minute
	}
	s := &Server{
		docs:  docs,
		cache: cache.New(outlineTTL, 2*outlineTTL),
		log:   log.With(zap.String("component", "api")),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api/reader", func(r chi.Router) {
		r.Post("/outline", s.handleOutline)
		r.Post("/classify", s.handleClassify)
		r.Post("/highlight", s.handleHighlight)
		r.Post("/progress", s.handleProgress)

		r.Get("/docs/{docID}/outline", s.handleDocOutline)
		r.Get("/docs/{docID}/highlight", s.handleDocHighlight)
		r.Get("/docs/{docID}/print", s.handleDocPrint)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
