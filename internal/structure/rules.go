package structure

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule is a single heading classifier: a predicate that, when it holds,
// also yields the heading level and display title.
type Rule struct {
	Name  string
	Match func(line string) (level int, title string, ok bool)
}

// DefaultRules is the fixed priority order used by Extract.
var DefaultRules = []Rule{
	{Name: "markup", Match: matchMarkup},
	{Name: "numbered", Match: matchNumbered},
	{Name: "keyword", Match: matchKeyword},
	{Name: "caps", Match: matchCaps},
}

var (
	markupPattern   = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	numberedPattern = regexp.MustCompile(`^(\d+)[.)]\s+(.{3,50})$`)

	keywordVocabulary = []string{
		"chapter", "section", "title", "part", "appendix",
		"introduction", "conclusions", "conclusion", "summary", "abstract",
		"capítulo", "sección", "título", "parte", "apéndice", "anexo",
		"introducción", "conclusiones", "conclusión", "resumen",
	}
	keywordPattern = regexp.MustCompile(`(?i)^(` + strings.Join(keywordVocabulary, "|") + `)(?:\s*[:.\-]\s*|\s+|$)(.*)$`)
)

const (
	numberedMaxLineLength = 80
	capsMinLength         = 4
	capsMaxLength         = 60
)

func matchMarkup(line string) (int, string, bool) {
	m := markupPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	title := strings.TrimSpace(m[2])
	if title == "" {
		return 0, "", false
	}
	return len(m[1]), title, true
}

func matchNumbered(line string) (int, string, bool) {
	if utf8.RuneCountInString(line) >= numberedMaxLineLength {
		return 0, "", false
	}
	m := numberedPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	return 2, fmt.Sprintf("%s. %s", m[1], strings.TrimSpace(m[2])), true
}

func matchKeyword(line string) (int, string, bool) {
	m := keywordPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	keyword := m[1]
	rest := strings.TrimSpace(m[2])
	if rest == "" {
		return 1, keyword, true
	}
	return 1, keyword + ": " + rest, true
}

func matchCaps(line string) (int, string, bool) {
	trimmed := strings.TrimSpace(line)
	length := utf8.RuneCountInString(trimmed)
	if length < capsMinLength || length > capsMaxLength {
		return 0, "", false
	}
	if strings.ToUpper(trimmed) != trimmed {
		return 0, "", false
	}
	// Uncased scripts survive ToUpper unchanged, so at least one letter
	// must be an actual capital.
	hasUpper := false
	for _, r := range trimmed {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLetter(r):
		case unicode.IsDigit(r), r == ' ':
		default:
			return 0, "", false
		}
	}
	if !hasUpper {
		return 0, "", false
	}
	return 2, trimmed, true
}
