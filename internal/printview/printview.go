// Package printview renders a document as a standalone HTML page suitable for
// the browser's print dialog.
package printview

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/csheth/docreader/internal/document"
	"github.com/csheth/docreader/internal/highlight"
	"github.com/csheth/docreader/internal/structure"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	goldmark.WithParserOptions(parser.WithAttribute()),
)

var page = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, serif; max-width: 46rem; margin: 2rem auto; line-height: 1.6; color: #111; }
header { border-bottom: 1px solid #ccc; margin-bottom: 1.5rem; }
.badges span { display: inline-block; font: 0.8rem sans-serif; border: 1px solid #999; border-radius: 3px; padding: 0 0.4rem; margin-right: 0.4rem; }
pre { white-space: pre-wrap; font-family: inherit; }
mark { background: #ffe066; }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<p class="badges">{{range .Badges}}<span>{{.}}</span>{{end}}</p>
{{if .Query}}<p>{{.MatchCount}} matches for &ldquo;{{.Query}}&rdquo;</p>{{end}}
</header>
<article>
{{.Body}}
</article>
</body>
</html>
`))

type pageData struct {
	Title      string
	Badges     []string
	Query      string
	MatchCount int
	Body       template.HTML
}

// Badges lists the metadata labels shown above a document.
func Badges(doc document.Document) []string {
	badges := []string{doc.SizeLabel(), doc.KindLabel(), doc.StorageLabel()}
	if created := doc.CreatedLabel(); created != "" {
		badges = append(badges, created)
	}
	if minutes := doc.ReadingMinutes(); minutes > 0 {
		badges = append(badges, fmt.Sprintf("%d min read", minutes))
	}
	if doc.Extracted() {
		badges = append(badges, "Extracted text")
	}
	return badges
}

// Render builds the print page. With an active query the text is shown
// verbatim with matches marked; otherwise it is rendered as markdown with an
// anchor on every inferred heading.
func Render(doc document.Document, query string) ([]byte, error) {
	data := pageData{
		Title:  doc.DisplayTitle(),
		Badges: Badges(doc),
	}
	if res := highlight.Apply(doc.DisplayText(), query); res.Active {
		data.Query = query
		data.MatchCount = res.MatchCount
		data.Body = template.HTML("<pre>" + res.Markup + "</pre>")
	} else {
		var body bytes.Buffer
		if err := markdown.Convert([]byte(anchoredMarkdown(doc.DisplayText())), &body); err != nil {
			return nil, fmt.Errorf("render markdown: %w", err)
		}
		data.Body = template.HTML(body.String())
	}

	var out bytes.Buffer
	if err := page.Execute(&out, data); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// anchoredMarkdown rewrites every inferred heading as an ATX heading carrying
// its section id, so links and the outline agree.
func anchoredMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	for _, h := range structure.Extract(text) {
		title := strings.NewReplacer("{", "\\{", "}", "\\}").Replace(h.Title)
		lines[h.SourceLine] = fmt.Sprintf("%s %s {#%s}", strings.Repeat("#", h.Level), title, h.SectionID)
	}
	return strings.Join(lines, "\n")
}

// WriteTemp renders doc into a temporary HTML file and returns its path.
func WriteTemp(doc document.Document, query string) (string, error) {
	data, err := Render(doc, query)
	if err != nil {
		return "", err
	}
	file, err := os.CreateTemp("", "docreader-print-*.html")
	if err != nil {
		return "", err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return file.Name(), nil
}
