// Package textextract turns local files into reader documents.
package textextract

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/csheth/docreader/internal/document"
)

// ErrUnsupported is returned for file types no extractor handles.
var ErrUnsupported = errors.New("unsupported file type")

// Result is the plain text of a file plus the title found inside it, if any.
type Result struct {
	Title string
	Text  string
}

// Extractor converts raw file bytes into reader text. Headings are emitted as
// markdown heading lines so the outline picks them up.
type Extractor interface {
	Extract(r io.Reader, filename string) (Result, error)
}

type format struct {
	mime string
	new  func() Extractor
}

var formats = map[string]format{
	".txt":      {"text/plain", func() Extractor { return &TextExtractor{} }},
	".text":     {"text/plain", func() Extractor { return &TextExtractor{} }},
	".md":       {"text/markdown", func() Extractor { return &MarkdownExtractor{} }},
	".markdown": {"text/markdown", func() Extractor { return &MarkdownExtractor{} }},
	".html":     {"text/html", func() Extractor { return &HTMLExtractor{} }},
	".htm":      {"text/html", func() Extractor { return &HTMLExtractor{} }},
	".pdf":      {"application/pdf", func() Extractor { return &PDFExtractor{} }},
	".docx":     {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", func() Extractor { return &DOCXExtractor{} }},
}

// ForFile returns the extractor for filename's extension.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	f, ok := formats[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	return f.new(), nil
}

// Supported reports whether filename can be opened.
func Supported(filename string) bool {
	_, ok := formats[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// MimeType returns the mime type used for documents loaded from filename.
func MimeType(filename string) string {
	return formats[strings.ToLower(filepath.Ext(filename))].mime
}

// LoadFile reads path and returns it as a local document.
func LoadFile(path string) (document.Document, error) {
	extractor, err := ForFile(path)
	if err != nil {
		return document.Document{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return document.Document{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return document.Document{}, err
	}
	if info.IsDir() {
		return document.Document{}, fmt.Errorf("%s is a directory", path)
	}

	res, err := extractor.Extract(file, filepath.Base(path))
	if err != nil {
		return document.Document{}, fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	size := info.Size()
	title := res.Title
	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return document.Document{
		ID:              "file:" + filepath.Base(path),
		Title:           title,
		Path:            path,
		MimeType:        MimeType(path),
		CreatedAt:       info.ModTime(),
		FileSizeBytes:   &size,
		TextContent:     res.Text,
		StorageLocation: "local",
	}, nil
}

// spool copies r into a temp file for libraries that need random access.
func spool(r io.Reader, pattern string) (*os.File, int64, error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, 0, fmt.Errorf("create temp file: %w", err)
	}
	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, 0, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, 0, fmt.Errorf("seek temp file: %w", err)
	}
	return tmp, size, nil
}

func headingLine(level int, title string) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + title
}

// joinBlocks joins non-empty blocks with blank lines.
func joinBlocks(blocks []string) string {
	kept := blocks[:0:0]
	for _, b := range blocks {
		if strings.TrimSpace(b) != "" {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, "\n\n")
}
