package document

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
)

// Placeholder is shown in place of a document without extracted text.
const Placeholder = "No content available"

const wordsPerMinute = 200

// Kind groups mime types into the families the reader labels differently.
type Kind int

const (
	KindText Kind = iota
	KindPDF
	KindWord
)

// Document is the read-only input of a reader session.
type Document struct {
	ID              string
	Title           string
	Path            string
	MimeType        string
	CreatedAt       time.Time
	FileSizeBytes   *int64
	TextContent     string
	StorageLocation string
}

func (d Document) Kind() Kind {
	mime := strings.ToLower(d.MimeType)
	switch {
	case mime == "application/pdf":
		return KindPDF
	case strings.Contains(mime, "word"):
		return KindWord
	default:
		return KindText
	}
}

func (d Document) KindLabel() string {
	switch d.Kind() {
	case KindPDF:
		return "PDF"
	case KindWord:
		return "Word"
	default:
		return "Text"
	}
}

// Extracted reports whether the text was extracted from a binary original.
func (d Document) Extracted() bool {
	k := d.Kind()
	return k == KindPDF || k == KindWord
}

func (d Document) DisplayTitle() string {
	if strings.TrimSpace(d.Title) != "" {
		return d.Title
	}
	return d.Path
}

func (d Document) DisplayText() string {
	if d.TextContent == "" {
		return Placeholder
	}
	return d.TextContent
}

// ReadingMinutes estimates reading time at 200 words per minute.
func (d Document) ReadingMinutes() int {
	return ReadingMinutes(d.TextContent)
}

// ReadingMinutes estimates how many minutes text takes to read.
func ReadingMinutes(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / wordsPerMinute))
}

// SizeLabel formats the original file size, falling back to the size of the
// extracted text.
func (d Document) SizeLabel() string {
	size := int64(len(d.TextContent))
	if d.FileSizeBytes != nil && *d.FileSizeBytes > 0 {
		size = *d.FileSizeBytes
	}
	return fmt.Sprintf("%.2f KB", float64(size)/1024)
}

func (d Document) StorageLabel() string {
	if strings.EqualFold(d.StorageLocation, "b2") {
		return "B2 Cloud"
	}
	return "Local"
}

func (d Document) CreatedLabel() string {
	if d.CreatedAt.IsZero() {
		return ""
	}
	return d.CreatedAt.Format("2 Jan 2006")
}

// DownloadPath is the collaborator route serving the original file.
func (d Document) DownloadPath() string {
	return "/api/docs/" + url.PathEscape(d.ID) + "/download"
}
