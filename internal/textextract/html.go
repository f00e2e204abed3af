package textextract

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor flattens an HTML page into paragraphs, turning h1-h6 into
// heading lines.
type HTMLExtractor struct{}

func (e *HTMLExtractor) Extract(r io.Reader, filename string) (Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Result{}, fmt.Errorf("parse html: %w", err)
	}

	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				if t := textContent(n); t != "" {
					blocks = append(blocks, headingLine(level, t))
				}
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "head", "noscript":
				return
			case "p", "td", "blockquote", "pre":
				blocks = append(blocks, textContent(n))
				return
			case "li":
				if t := textContent(n); t != "" {
					blocks = append(blocks, "- "+t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if body := findElement(doc, "body"); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	var title string
	if node := findElement(doc, "title"); node != nil {
		title = textContent(node)
	}
	return Result{Title: title, Text: joinBlocks(blocks)}, nil
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
