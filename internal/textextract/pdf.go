package textextract

import (
	"fmt"
	"io"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFExtractor reads the plain text of every page. Pages are separated by a
// blank line.
type PDFExtractor struct{}

func (e *PDFExtractor) Extract(r io.Reader, filename string) (Result, error) {
	// ledongthuc/pdf needs a ReaderAt with a size.
	tmp, size, err := spool(r, "docreader-pdf-*.pdf")
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	reader, err := pdflib.NewReader(tmp, size)
	if err != nil {
		return Result{}, fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return Result{Text: joinBlocks(pages)}, nil
}
