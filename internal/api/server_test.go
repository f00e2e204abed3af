package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/docreader/internal/docapi"
	"github.com/csheth/docreader/internal/document"
)

type fakeDocs struct {
	calls atomic.Int32
	docs  map[string]document.Document
	token string
}

func (f *fakeDocs) Document(ctx context.Context, id, token string) (*document.Document, error) {
	f.calls.Add(1)
	if f.token != "" && token != f.token {
		return nil, &docapi.APIError{Status: http.StatusUnauthorized}
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, &docapi.APIError{Status: http.StatusNotFound}
	}
	return &doc, nil
}

func newTestServer(docs DocumentFetcher) *Server {
	return NewServer(docs, time.Minute, nil)
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestOutline(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, "/api/reader/outline",
		`{"text":"# Intro\nhello world\n2. Methods used\nAPPENDIX"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Headings []struct {
			Level     int    `json:"level"`
			Title     string `json:"title"`
			SectionID string `json:"sectionId"`
		} `json:"headings"`
		ReadingMinutes int `json:"readingMinutes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Headings, 3)
	assert.Equal(t, "section-0", resp.Headings[0].SectionID)
	assert.Equal(t, "2. Methods used", resp.Headings[1].Title)
	assert.Equal(t, 1, resp.Headings[2].Level)
	assert.Equal(t, 1, resp.ReadingMinutes)
}

func TestOutlineRejectsBadJSON(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, "/api/reader/outline", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestClassify(t *testing.T) {
	rec := do(t, newTestServer(nil), http.MethodPost, "/api/reader/classify", `{"line":"## Results"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"heading":true,"level":2,"title":"Results","rule":"markup"}`, rec.Body.String())
}

func TestHighlight(t *testing.T) {
	srv := newTestServer(nil)

	rec := do(t, srv, http.MethodPost, "/api/reader/highlight", `{"text":"a <b> a","query":"a"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"html":"<mark>a</mark> &lt;b&gt; <mark>a</mark>","matchCount":2}`, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/reader/highlight", `{"text":"abc","query":"  "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"html":null,"matchCount":0}`, rec.Body.String())
}

func TestProgress(t *testing.T) {
	body := `{"scrollTop":250,"viewportHeight":500,"scrollHeight":1500,
		"anchors":{"section-0":0,"section-5":300},
		"headings":[{"level":1,"title":"A","sectionId":"section-0","line":0},
		            {"level":2,"title":"B","sectionId":"section-5","line":5}]}`
	rec := do(t, newTestServer(nil), http.MethodPost, "/api/reader/progress", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"progressPercent":25,"activeSectionId":"section-5"}`, rec.Body.String())
}

func TestProgressOrdersHeadingsByLine(t *testing.T) {
	body := `{"scrollTop":250,"viewportHeight":500,"scrollHeight":1500,
		"anchors":{"section-0":0,"section-5":300},
		"headings":[{"level":2,"title":"B","sectionId":"section-5","line":5},
		            {"level":1,"title":"A","sectionId":"section-0","line":0}]}`
	rec := do(t, newTestServer(nil), http.MethodPost, "/api/reader/progress", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"progressPercent":25,"activeSectionId":"section-5"}`, rec.Body.String())
}

func TestDocOutlineCachesPerToken(t *testing.T) {
	docs := &fakeDocs{
		token: "tok",
		docs: map[string]document.Document{
			"7": {ID: "7", Title: "Plan", MimeType: "application/pdf", TextContent: "# Goals\nship it"},
		},
	}
	srv := newTestServer(docs)

	for i := 0; i < 2; i++ {
		rec := do(t, srv, http.MethodGet, "/api/reader/docs/7/outline", "", "Authorization", "Bearer tok")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"sectionId":"section-0"`)
		assert.Contains(t, rec.Body.String(), `"downloadUrl":"/api/docs/7/download"`)
		assert.Contains(t, rec.Body.String(), `"kind":"PDF"`)
	}
	assert.EqualValues(t, 1, docs.calls.Load(), "second request should be served from cache")

	rec := do(t, srv, http.MethodGet, "/api/reader/docs/7/outline", "", "Authorization", "Bearer other")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.EqualValues(t, 2, docs.calls.Load())
}

func TestDocErrors(t *testing.T) {
	srv := newTestServer(&fakeDocs{docs: map[string]document.Document{}})
	rec := do(t, srv, http.MethodGet, "/api/reader/docs/404/outline", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"document not found"}`, rec.Body.String())

	rec = do(t, newTestServer(nil), http.MethodGet, "/api/reader/docs/1/outline", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDocHighlightAndPrint(t *testing.T) {
	docs := &fakeDocs{docs: map[string]document.Document{
		"3": {ID: "3", Title: "Notes", TextContent: "alpha beta alpha"},
	}}
	srv := newTestServer(docs)

	rec := do(t, srv, http.MethodGet, "/api/reader/docs/3/highlight?q=ALPHA", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"matchCount":2`)

	rec = do(t, srv, http.MethodGet, "/api/reader/docs/3/print?q=beta", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<mark>beta</mark>")
}

func TestUpstreamForwardsToken(t *testing.T) {
	var seen string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":"5","title":"T","content_text":"CHAPTER ONE"}`))
	}))
	t.Cleanup(upstream.Close)

	client, err := docapi.New(docapi.Config{BaseURL: upstream.URL, HTTPClient: upstream.Client(), CacheDir: t.TempDir()})
	require.NoError(t, err)

	srv := newTestServer(Upstream{Client: client})
	rec := do(t, srv, http.MethodGet, "/api/reader/docs/5/outline", "", "Authorization", "Bearer user-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer user-token", seen)
	assert.Contains(t, rec.Body.String(), `"title":"CHAPTER: ONE"`)
}

func TestUpstreamAnonymousCallerGetsNoOperatorToken(t *testing.T) {
	var seen []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		seen = append(seen, auth)
		if auth == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":"5","title":"Private","content_text":"CHAPTER ONE"}`))
	}))
	t.Cleanup(upstream.Close)

	client, err := docapi.New(docapi.Config{
		BaseURL:    upstream.URL,
		HTTPClient: upstream.Client(),
		Token:      "operator-secret",
		CacheDir:   t.TempDir(),
	})
	require.NoError(t, err)

	srv := newTestServer(Upstream{Client: client})
	rec := do(t, srv, http.MethodGet, "/api/reader/docs/5/outline", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "CHAPTER")
	require.Len(t, seen, 1)
	assert.Empty(t, seen[0])
}
