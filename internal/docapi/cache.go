package docapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	CacheEnvVar   = "DOCREADER_CACHE_DIR"
	cacheSubdir   = "docreader/originals"
	cacheTTL      = 24 * time.Hour
	partialSuffix = ".part"
	metaSuffix    = ".meta"
)

// downloadCache keeps originals on disk, revalidating with ETag or
// Last-Modified once they are older than cacheTTL and resuming interrupted
// transfers with Range requests.
type downloadCache struct {
	dir      string
	client   *http.Client
	decorate func(*http.Request)
}

type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"lastModified"`
	CachedAt     time.Time `json:"cachedAt"`
	Size         int64     `json:"size"`
}

func newDownloadCache(dir string, client *http.Client, decorate func(*http.Request)) (*downloadCache, error) {
	if dir == "" {
		dir = os.Getenv(CacheEnvVar)
	}
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "docreader-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	if decorate == nil {
		decorate = func(*http.Request) {}
	}
	return &downloadCache{dir: dir, client: client, decorate: decorate}, nil
}

// Fetch returns the local path of the resource at rawURL, stored under key.
// A stale copy is still returned when the backend cannot be reached.
func (c *downloadCache) Fetch(ctx context.Context, rawURL, key, ext string) (string, error) {
	filePath, metaPath, partialPath := c.pathsFor(sanitizeKey(key), ext)

	if info, err := os.Stat(filePath); err == nil && time.Since(info.ModTime()) < cacheTTL && info.Size() > 0 {
		return filePath, nil
	}

	meta, _ := readMeta(metaPath)
	info, _ := os.Stat(filePath)
	path, err := c.download(ctx, rawURL, filePath, metaPath, partialPath, meta, info)
	if err == nil {
		return path, nil
	}
	if info != nil && info.Size() > 0 {
		return filePath, nil
	}
	return "", err
}

func (c *downloadCache) download(ctx context.Context, rawURL, filePath, metaPath, partialPath string, meta cacheMeta, current os.FileInfo) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	c.decorate(req)
	if current != nil && current.Size() > 0 {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	var partialSize int64
	if info, err := os.Stat(partialPath); err == nil && info.Size() > 0 {
		partialSize = info.Size()
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", partialSize))
		if meta.ETag != "" {
			req.Header.Set("If-Range", meta.ETag)
		} else if meta.LastModified != "" {
			req.Header.Set("If-Range", meta.LastModified)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		if current != nil && current.Size() > 0 {
			meta.CachedAt = time.Now().UTC()
			now := time.Now()
			_ = os.Chtimes(filePath, now, now)
			_ = writeMeta(metaPath, meta)
			return filePath, nil
		}
		return c.download(ctx, rawURL, filePath, metaPath, partialPath, cacheMeta{}, nil)
	case http.StatusOK:
		return c.saveBody(resp, filePath, metaPath, partialPath, false)
	case http.StatusPartialContent:
		return c.saveBody(resp, filePath, metaPath, partialPath, partialSize > 0)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
}

func (c *downloadCache) saveBody(resp *http.Response, filePath, metaPath, partialPath string, appendExisting bool) (string, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendExisting {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(partialPath, flags, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(partialPath, filePath); err != nil {
		return "", err
	}

	meta := cacheMeta{
		URL:          resp.Request.URL.String(),
		ETag:         resp.Header.Get("Etag"),
		LastModified: resp.Header.Get("Last-Modified"),
		CachedAt:     time.Now().UTC(),
	}
	if info, err := os.Stat(filePath); err == nil {
		meta.Size = info.Size()
	}
	if err := writeMeta(metaPath, meta); err != nil {
		return "", err
	}
	return filePath, nil
}

func (c *downloadCache) pathsFor(key, ext string) (string, string, string) {
	if ext == "" {
		ext = ".bin"
	}
	return filepath.Join(c.dir, key+ext), filepath.Join(c.dir, key+metaSuffix), filepath.Join(c.dir, key+partialSuffix)
}

func sanitizeKey(value string) string {
	value = strings.TrimSpace(value)
	value = strings.ReplaceAll(value, "/", "-")
	value = strings.ReplaceAll(value, "\\", "-")
	value = strings.ReplaceAll(value, ":", "-")
	value = strings.ReplaceAll(value, "..", "-")
	return value
}

func readMeta(path string) (cacheMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cacheMeta{}, err
	}
	var meta cacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return cacheMeta{}, err
	}
	return meta, nil
}

func writeMeta(path string, meta cacheMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
