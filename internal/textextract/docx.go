package textextract

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXExtractor emits one block per paragraph; paragraphs styled as headings
// become heading lines.
type DOCXExtractor struct{}

func (e *DOCXExtractor) Extract(r io.Reader, filename string) (Result, error) {
	tmp, size, err := spool(r, "docreader-docx-*.docx")
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	doc, err := docx.Parse(tmp, size)
	if err != nil {
		return Result{}, fmt.Errorf("parse docx: %w", err)
	}

	var (
		blocks []string
		title  string
	)
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		level := docxHeadingLevel(para)
		if level == 0 {
			blocks = append(blocks, text)
			continue
		}
		if title == "" && level == 1 {
			title = text
		}
		blocks = append(blocks, headingLine(level, text))
	}
	return Result{Title: title, Text: joinBlocks(blocks)}, nil
}

// docxHeadingLevel maps "Heading1" or "heading 1" style ids to a level.
func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if !strings.HasPrefix(style, "heading") || len(style) != len("heading")+1 {
		return 0
	}
	d := style[len(style)-1]
	if d < '1' || d > '6' {
		return 0
	}
	return int(d - '0')
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
