// Package docapi talks to the document-management backend that stores
// documents, extracts their text and answers questions about them.
package docapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/docreader/internal/document"
)

const defaultTimeout = 30 * time.Second

// ErrNotFound is wrapped by APIError for 404 responses.
var ErrNotFound = errors.New("document not found")

// APIError describes a non-2xx response from the backend.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("docapi: backend returned %d", e.Status)
	}
	return fmt.Sprintf("docapi: backend returned %d (%s)", e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	// CacheDir overrides where downloaded originals are kept.
	CacheDir string
	Logger   *zap.Logger
}

type Client struct {
	base   string
	token  string
	http   *http.Client
	cache  *downloadCache
	logger *zap.Logger
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("docapi: base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("docapi: invalid base URL: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		base:   base,
		token:  cfg.Token,
		http:   httpClient,
		logger: logger.With(zap.String("component", "docapi")),
	}
	cache, err := newDownloadCache(cfg.CacheDir, httpClient, c.authorize)
	if err != nil {
		return nil, err
	}
	c.cache = cache
	return c, nil
}

// WithToken returns a copy of the client that authenticates as token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	cache := *c.cache
	cache.decorate = clone.authorize
	clone.cache = &cache
	return &clone
}

func (c *Client) BaseURL() string { return c.base }

type documentPayload struct {
	ID              flexibleID `json:"id"`
	Title           string     `json:"title"`
	Path            string     `json:"path"`
	MimeType        string     `json:"mime_type"`
	FileSize        *int64     `json:"file_size"`
	ContentText     string     `json:"content_text"`
	Content         string     `json:"content"`
	CreatedAt       string     `json:"created_at"`
	CreatedAtCamel  string     `json:"createdAt"`
	StorageLocation string     `json:"storage_location"`
}

func (p documentPayload) toDocument() *document.Document {
	text := p.ContentText
	if text == "" {
		text = p.Content
	}
	created := p.CreatedAt
	if created == "" {
		created = p.CreatedAtCamel
	}
	return &document.Document{
		ID:              string(p.ID),
		Title:           p.Title,
		Path:            p.Path,
		MimeType:        p.MimeType,
		CreatedAt:       parseTime(created),
		FileSizeBytes:   p.FileSize,
		TextContent:     text,
		StorageLocation: p.StorageLocation,
	}
}

// Document fetches a single document with its extracted text.
func (c *Client) Document(ctx context.Context, id string) (*document.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("docapi: document id is required")
	}
	var payload documentPayload
	if err := c.do(ctx, http.MethodGet, "/docs/"+url.PathEscape(id), nil, &payload); err != nil {
		return nil, err
	}
	doc := payload.toDocument()
	if doc.ID == "" {
		doc.ID = id
	}
	return doc, nil
}

type SearchQuery struct {
	Text      string
	ProjectID string
	DateFrom  string
	DateTo    string
	FileType  string
}

func (q SearchQuery) values() url.Values {
	v := url.Values{}
	v.Set("q", q.Text)
	for key, val := range map[string]string{
		"projectId": q.ProjectID,
		"dateFrom":  q.DateFrom,
		"dateTo":    q.DateTo,
		"fileType":  q.FileType,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}

type SearchResult struct {
	ID          string
	Path        string
	Title       string
	ProjectName string
	CreatedAt   time.Time
	MatchType   string
	Snippet     string
}

// Label is the text shown for a result in lists.
func (r SearchResult) Label() string {
	if strings.TrimSpace(r.Title) != "" {
		return r.Title
	}
	return r.Path
}

type searchPayload struct {
	Results []struct {
		ID          flexibleID `json:"id"`
		Path        string     `json:"path"`
		Title       string     `json:"title"`
		ProjectName string     `json:"projectName"`
		CreatedAt   string     `json:"createdAt"`
		MatchType   string     `json:"matchType"`
		Snippet     string     `json:"snippet"`
	} `json:"results"`
}

// Search runs a backend search. An empty query returns no results without a
// round trip.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, nil
	}
	var payload searchPayload
	if err := c.do(ctx, http.MethodGet, "/docs/search?"+q.values().Encode(), nil, &payload); err != nil {
		return nil, err
	}
	results := make([]SearchResult, 0, len(payload.Results))
	for _, r := range payload.Results {
		results = append(results, SearchResult{
			ID:          string(r.ID),
			Path:        r.Path,
			Title:       r.Title,
			ProjectName: r.ProjectName,
			CreatedAt:   parseTime(r.CreatedAt),
			MatchType:   r.MatchType,
			Snippet:     r.Snippet,
		})
	}
	return results, nil
}

type QueryRequest struct {
	ProjectID string `json:"projectId,omitempty"`
	Question  string `json:"question"`
	Mode      string `json:"mode,omitempty"`
}

type QueryResponse struct {
	Answer          string   `json:"answer"`
	Message         string   `json:"message"`
	Mode            string   `json:"mode"`
	Recommendations []string `json:"recommendations"`
}

// Text returns the answer, falling back to the message field.
func (r QueryResponse) Text() string {
	if strings.TrimSpace(r.Answer) != "" {
		return r.Answer
	}
	return r.Message
}

// Ask sends a question to the backend's query endpoint.
func (c *Client) Ask(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return QueryResponse{}, errors.New("docapi: question is required")
	}
	if req.Mode == "" {
		req.Mode = "general"
	}
	body, err := json.Marshal(req)
	if err != nil {
		return QueryResponse{}, err
	}
	var resp QueryResponse
	if err := c.do(ctx, http.MethodPost, "/query", body, &resp); err != nil {
		return QueryResponse{}, err
	}
	if resp.Mode == "" {
		resp.Mode = req.Mode
	}
	return resp, nil
}

// DownloadURL is the backend route serving the original file of id.
func (c *Client) DownloadURL(id string) string {
	return c.base + "/docs/" + url.PathEscape(id) + "/download"
}

// Download stores the original file of doc in the local cache and returns
// its path.
func (c *Client) Download(ctx context.Context, doc document.Document) (string, error) {
	if doc.ID == "" {
		return "", errors.New("docapi: document id is required")
	}
	path, err := c.cache.Fetch(ctx, c.DownloadURL(doc.ID), "doc-"+doc.ID, extensionFor(doc))
	if err != nil {
		c.logger.Warn("download failed", zap.String("id", doc.ID), zap.Error(err))
		return "", err
	}
	c.logger.Info("download cached", zap.String("id", doc.ID), zap.String("path", path))
	return path, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("docapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("docapi: failed to decode response: %w", err)
	}
	return nil
}

// flexibleID accepts ids encoded either as JSON strings or numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("docapi: unsupported id %s", string(data))
	}
	*f = flexibleID(n.String())
	return nil
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

func extensionFor(doc document.Document) string {
	switch doc.Kind() {
	case document.KindPDF:
		return ".pdf"
	case document.KindWord:
		return ".docx"
	}
	if i := strings.LastIndex(doc.Path, "."); i >= 0 && i > strings.LastIndex(doc.Path, "/") {
		return sanitizeKey(doc.Path[i:])
	}
	return ".txt"
}
