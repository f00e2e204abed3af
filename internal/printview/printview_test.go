package printview

import (
	"os"
	"strings"
	"testing"

	"github.com/csheth/docreader/internal/document"
)

func sampleDoc() document.Document {
	return document.Document{
		ID:          "3",
		Title:       "Quarterly <Report>",
		MimeType:    "application/pdf",
		TextContent: "# Summary\nRevenue grew.\nRISKS AHEAD\nCosts & fees rose.",
	}
}

func TestRenderStructuralMode(t *testing.T) {
	t.Parallel()

	out, err := Render(sampleDoc(), "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		`<title>Quarterly &lt;Report&gt;</title>`,
		`<h1 id="section-0">Summary</h1>`,
		`<h2 id="section-2">RISKS AHEAD</h2>`,
		`Costs &amp; fees rose.`,
		`<span>Extracted text</span>`,
		`<span>PDF</span>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("output missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "<mark>") {
		t.Fatal("structural mode should not mark anything")
	}
}

func TestRenderSearchMode(t *testing.T) {
	t.Parallel()

	out, err := Render(sampleDoc(), "rose")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<pre># Summary") {
		t.Fatalf("search mode should show raw text:\n%s", html)
	}
	if !strings.Contains(html, "fees <mark>rose</mark>.") {
		t.Fatalf("match not marked:\n%s", html)
	}
	if !strings.Contains(html, "1 matches for") {
		t.Fatalf("match count missing:\n%s", html)
	}
}

func TestRenderEmptyDocumentShowsPlaceholder(t *testing.T) {
	t.Parallel()

	out, err := Render(document.Document{Path: "empty.txt"}, "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), document.Placeholder) {
		t.Fatalf("placeholder missing:\n%s", out)
	}
}

func TestWriteTemp(t *testing.T) {
	t.Parallel()

	path, err := WriteTemp(sampleDoc(), "")
	if err != nil {
		t.Fatalf("WriteTemp: %v", err)
	}
	t.Cleanup(func() { os.Remove(path) })
	if !strings.HasSuffix(path, ".html") {
		t.Fatalf("unexpected path %s", path)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("temp file not written: %v", err)
	}
}
