package structure

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractScenario(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"# Introduction",
		"Some prose line.",
		"",
		"FINANCIAL SUMMARY",
		"More prose.",
	}, "\n")

	got := Extract(text)
	want := []Heading{
		{Level: 1, Title: "Introduction", SectionID: "section-0", SourceLine: 0},
		{Level: 2, Title: "FINANCIAL SUMMARY", SectionID: "section-3", SourceLine: 3},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %#v, want %#v", got, want)
	}
}

func TestExtractEmptyText(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "\n\n", "   \n\t\n", "plain prose without structure."} {
		got := Extract(text)
		if got == nil {
			t.Fatalf("Extract(%q) returned nil, want empty slice", text)
		}
		if len(got) != 0 {
			t.Fatalf("Extract(%q) = %#v, want no headings", text, got)
		}
	}
}

func TestExtractLineOrderingStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"ANNUAL REPORT",
		"## Overview",
		"1. Scope of work",
		"Chapter 2: Methods",
		"body text that is not a heading",
		"APPENDIX",
		"### Details",
		"",
		"2) Results overview",
	}, "\n")

	headings := Extract(text)
	if len(headings) != 7 {
		t.Fatalf("expected 7 headings, got %d: %#v", len(headings), headings)
	}
	for i := 1; i < len(headings); i++ {
		if headings[i].SourceLine <= headings[i-1].SourceLine {
			t.Fatalf("headings out of order at %d: %d then %d", i, headings[i-1].SourceLine, headings[i].SourceLine)
		}
	}
}

func TestMarkupRuleWinsOverCaps(t *testing.T) {
	t.Parallel()

	headings := Extract("# HELLO")
	if len(headings) != 1 {
		t.Fatalf("expected one heading, got %#v", headings)
	}
	h := headings[0]
	if h.Level != 1 || h.Title != "HELLO" {
		t.Fatalf("expected markup heading level 1 %q, got level %d %q", "HELLO", h.Level, h.Title)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		line  string
		level int
		title string
		rule  string
		ok    bool
	}{
		{"markup h1", "# Title here", 1, "Title here", "markup", true},
		{"markup h6", "###### Deep", 6, "Deep", "markup", true},
		{"markup seven markers", "####### Too deep", 0, "", "", false},
		{"markup without space", "#hashtag", 0, "", "", false},
		{"markup empty title", "#    ", 0, "", "", false},
		{"markup trailing cr", "## Windows line\r", 2, "Windows line", "markup", true},
		{"numbered dot", "1. Getting started", 2, "1. Getting started", "numbered", true},
		{"numbered paren", "12) Results", 2, "12. Results", "numbered", true},
		{"numbered too short", "3. ab", 0, "", "", false},
		{"numbered text too long", "4. " + strings.Repeat("x", 51), 0, "", "", false},
		{"keyword with colon", "Chapter: The Beginning", 1, "Chapter: The Beginning", "keyword", true},
		{"keyword with number", "Section 4 - Costs", 1, "Section: 4 - Costs", "keyword", true},
		{"keyword alone", "Abstract", 1, "Abstract", "keyword", true},
		{"keyword trailing dot", "Summary.", 1, "Summary", "keyword", true},
		{"keyword case insensitive", "CONCLUSION - final notes", 1, "CONCLUSION: final notes", "keyword", true},
		{"keyword spanish", "Capítulo 3: Resultados", 1, "Capítulo: 3: Resultados", "keyword", true},
		{"keyword spanish plural", "Conclusiones", 1, "Conclusiones", "keyword", true},
		{"keyword prefix only", "Partial results were discarded", 0, "", "", false},
		{"caps heading", "QUARTERLY RESULTS 2024", 2, "QUARTERLY RESULTS 2024", "caps", true},
		{"caps accented", "ÍNDICE GENERAL", 2, "ÍNDICE GENERAL", "caps", true},
		{"caps indented", "   RISK FACTORS   ", 2, "RISK FACTORS", "caps", true},
		{"caps too short", "ABC", 0, "", "", false},
		{"caps numeric only", "2024 2025", 0, "", "", false},
		{"caps punctuation", "NOTE: READ THIS", 0, "", "", false},
		{"caps mixed case", "Quarterly Results", 0, "", "", false},
		{"caps too long", strings.Repeat("A", 61), 0, "", "", false},
		{"caps uncased script", "这是一个普通的句子", 0, "", "", false},
		{"caps uncased hebrew", "זהו משפט רגיל", 0, "", "", false},
		{"caps with uncased letters", "第一章 INTRODUCTION", 2, "第一章 INTRODUCTION", "caps", true},
		{"blank", "   ", 0, "", "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			level, title, rule, ok := Classify(tt.line)
			if ok != tt.ok {
				t.Fatalf("Classify(%q) ok = %v, want %v (rule %q)", tt.line, ok, tt.ok, rule)
			}
			if level != tt.level || title != tt.title || rule != tt.rule {
				t.Fatalf("Classify(%q) = (%d, %q, %q), want (%d, %q, %q)", tt.line, level, title, rule, tt.level, tt.title, tt.rule)
			}
		})
	}
}

func TestExtractWithCustomRules(t *testing.T) {
	t.Parallel()

	only := []Rule{{Name: "markup", Match: matchMarkup}}
	headings := ExtractWith("# One\nSHOUTING LINE\n## Two", only)
	if len(headings) != 2 {
		t.Fatalf("expected markup-only extraction to find 2 headings, got %#v", headings)
	}
	if headings[1].SectionID != "section-2" {
		t.Fatalf("section id mismatch: %q", headings[1].SectionID)
	}
}

func TestExtractIsPure(t *testing.T) {
	t.Parallel()

	text := "# A\nINTRODUCTION TEXT\n1. First item"
	first := Extract(text)
	second := Extract(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Extract not deterministic: %#v vs %#v", first, second)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	headings := Extract("intro\n# Goals\ntext\n# Plan")
	h, ok := Find(headings, SectionID(3))
	if !ok || h.Title != "Plan" {
		t.Fatalf("Find returned %#v, %v", h, ok)
	}
	if _, ok := Find(headings, "section-99"); ok {
		t.Fatal("Find should miss unknown sections")
	}
}
