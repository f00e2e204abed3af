package textextract

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor keeps the markdown source but rewrites setext headings
// ("Title" underlined with === or ---) into "#" headings.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(r io.Reader, filename string) (Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return Result{}, err
	}
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))

	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	lines := strings.Split(string(src), "\n")
	starts := lineStarts(src)

	var title string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			continue
		}
		label := inlineText(heading, src)
		if title == "" && heading.Level == 1 {
			title = label
		}
		first := lineIndex(starts, heading.Lines().At(0).Start)
		if strings.HasPrefix(strings.TrimSpace(lines[first]), "#") {
			continue
		}
		last := lineIndex(starts, heading.Lines().At(heading.Lines().Len()-1).Start)
		lines[first] = headingLine(heading.Level, label)
		// Blank the continuation lines and the underline so line numbers hold.
		for i := first + 1; i <= last+1 && i < len(lines); i++ {
			lines[i] = ""
		}
	}
	return Result{Title: title, Text: strings.Join(lines, "\n")}, nil
}

func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				buf.Write(node.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(node.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineIndex(starts []int, offset int) int {
	return sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
}
