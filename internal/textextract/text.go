package textextract

import (
	"io"
	"strings"
)

// TextExtractor passes plain text through, normalising line endings.
type TextExtractor struct{}

func (e *TextExtractor) Extract(r io.Reader, filename string) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return Result{Text: text}, nil
}
