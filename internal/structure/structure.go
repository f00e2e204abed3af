// Package structure infers a navigable outline from plain document text.
package structure

import (
	"fmt"
	"strings"
)

// Heading is one inferred section marker within the document text.
type Heading struct {
	Level      int    `json:"level"`
	Title      string `json:"title"`
	SectionID  string `json:"sectionId"`
	SourceLine int    `json:"line"`
}

// SectionID returns the stable anchor key for the heading found on line.
func SectionID(line int) string {
	return fmt.Sprintf("section-%d", line)
}

// Extract scans text once and returns the headings detected by DefaultRules,
// in document order.
func Extract(text string) []Heading {
	return ExtractWith(text, DefaultRules)
}

// ExtractWith applies rules to every non-blank line of text. Rules are tried in
// order and the first match wins, so a line yields at most one heading.
func ExtractWith(text string, rules []Rule) []Heading {
	headings := []Heading{}
	if text == "" {
		return headings
	}
	for index, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, rule := range rules {
			level, title, ok := rule.Match(line)
			if !ok {
				continue
			}
			headings = append(headings, Heading{
				Level:      level,
				Title:      title,
				SectionID:  SectionID(index),
				SourceLine: index,
			})
			break
		}
	}
	return headings
}

// Classify reports which default rule, if any, turns line into a heading.
func Classify(line string) (level int, title string, rule string, ok bool) {
	line = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(line) == "" {
		return 0, "", "", false
	}
	for _, r := range DefaultRules {
		if level, title, ok := r.Match(line); ok {
			return level, title, r.Name, true
		}
	}
	return 0, "", "", false
}

// Find returns the heading registered under sectionID.
func Find(headings []Heading, sectionID string) (Heading, bool) {
	for _, h := range headings {
		if h.SectionID == sectionID {
			return h, true
		}
	}
	return Heading{}, false
}
