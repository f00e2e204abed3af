package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/docreader/internal/printview"
)

func (m *model) View() string {
	switch m.stage {
	case stageInput:
		return m.inputView()
	case stageLoading:
		return m.loadingView()
	case stageResults:
		return m.resultsView()
	}
	if m.session == nil {
		return m.inputView()
	}
	return m.readerView()
}

func (m *model) inputView() string {
	parts := []string{
		titleStyle.Render("docreader") + "\n" + taglineStyle.Render(heroTagline),
		sectionHeaderStyle.Render("Open a document") + "\n" + m.input.View(),
		helperStyle.Render("Enter opens an id or a local .txt, .md, .html, .pdf or .docx file. Start with ? to search the library."),
		m.messageView(),
	}
	return joinNonEmpty(parts)
}

func (m *model) loadingView() string {
	parts := []string{
		titleStyle.Render("docreader"),
		fmt.Sprintf("%s Loading %s…", m.spinner.View(), m.loadingLabel),
		helperStyle.Render("Esc cancels."),
	}
	return joinNonEmpty(parts)
}

func (m *model) resultsView() string {
	parts := []string{sectionHeaderStyle.Render(fmt.Sprintf("Library results for %q", m.resultsQuery))}
	if len(m.results) == 0 {
		parts = append(parts, helperStyle.Render("No documents matched. Esc to try again."))
		return joinNonEmpty(parts)
	}
	width := m.layout.windowWidth - 4
	if width < minViewportWidth {
		width = 76
	}
	var rows []string
	for idx, r := range m.results {
		label := r.Label()
		if idx == m.resultCursor {
			label = currentRowStyle.Render("▸ " + label)
		} else {
			label = "  " + label
		}
		meta := []string{}
		for _, v := range []string{r.ProjectName, r.MatchType} {
			if v != "" {
				meta = append(meta, v)
			}
		}
		if !r.CreatedAt.IsZero() {
			meta = append(meta, r.CreatedAt.Format("2 Jan 2006"))
		}
		row := label
		if len(meta) > 0 {
			row += "\n    " + helperStyle.Render(strings.Join(meta, " • "))
		}
		if snippet := strings.TrimSpace(r.Snippet); snippet != "" {
			row += "\n    " + strings.ReplaceAll(wordwrap.String(snippet, width-4), "\n", "\n    ")
		}
		rows = append(rows, row)
	}
	parts = append(parts, strings.Join(rows, "\n"), helperStyle.Render("↑/↓ choose • Enter open • Esc back"), m.messageView())
	return joinNonEmpty(parts)
}

func (m *model) readerView() string {
	doc := m.session.Document()
	width := m.layout.windowWidth
	if width <= 0 {
		width = m.viewport.Width + viewportHorizontalPadding
	}
	lines := []string{
		titleStyle.Render(truncate.StringWithTail(doc.DisplayTitle(), uint(width), "…")),
		m.badgesView(),
		m.progressView(width),
	}

	var body string
	switch {
	case m.showHelp:
		body = m.helpView()
	case m.stage == stageAsk:
		body = m.askView(width)
	default:
		body = m.viewport.View()
		if toc := m.tocView(); toc != "" {
			body = lipgloss.JoinHorizontal(lipgloss.Top, toc, " ", body)
		}
	}
	lines = append(lines, body)

	switch m.stage {
	case stageSearch:
		lines = append(lines, m.search.View())
	case stageAsk:
		lines = append(lines, m.ask.View())
	default:
		lines = append(lines, m.statusLine(width))
	}
	lines = append(lines, m.keyLegendView())
	return strings.Join(lines, "\n")
}

func (m *model) badgesView() string {
	doc := m.session.Document()
	var out []string
	for _, badge := range printview.Badges(doc) {
		style := badgeStyle
		if badge == "Extracted text" {
			style = extractedStyle
		}
		out = append(out, style.Render(badge))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func (m *model) progressView(width int) string {
	label := fmt.Sprintf(" %3.0f%%", m.state.ProgressPercent)
	barWidth := width - len(label)
	if barWidth < 10 {
		barWidth = 10
	}
	filled := int(m.state.ProgressPercent / 100 * float64(barWidth))
	filled = clamp(filled, 0, barWidth)
	return progressStyle.Render(strings.Repeat("━", filled)) +
		progressTrack.Render(strings.Repeat("─", barWidth-filled)) +
		helperStyle.Render(label)
}

// tocView lists the outline with the active section marked. It is empty when
// the document has no headings.
func (m *model) tocView() string {
	headings := m.session.Headings()
	if len(headings) == 0 || m.layout.tocWidth == 0 {
		return ""
	}
	width := m.layout.tocWidth
	height := m.viewport.Height
	start := 0
	if m.tocCursor >= height {
		start = m.tocCursor - height + 1
	}
	rows := make([]string, 0, height)
	for idx := start; idx < len(headings) && len(rows) < height; idx++ {
		h := headings[idx]
		indent := strings.Repeat(" ", clamp(h.Level-1, 0, 4))
		marker := "  "
		if h.SectionID == m.state.ActiveSectionID {
			marker = "▸ "
		}
		text := truncate.StringWithTail(indent+marker+h.Title, uint(width), "…")
		switch {
		case m.focus == focusTOC && idx == m.tocCursor:
			text = tocCursorStyle.Render(text)
		case h.SectionID == m.state.ActiveSectionID:
			text = tocActiveStyle.Render(text)
		}
		rows = append(rows, text)
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	return tocStyle.Width(width).Render(strings.Join(rows, "\n"))
}

func (m *model) askView(width int) string {
	parts := []string{sectionHeaderStyle.Render("Ask the library")}
	if m.question != "" {
		parts = append(parts, helperStyle.Render("Q: ")+wordwrap.String(m.question, width-4))
	}
	switch {
	case m.asking:
		parts = append(parts, m.spinner.View()+" Waiting for an answer…")
	case m.answer != "":
		parts = append(parts, answerBoxStyle.Render(wordwrap.String(m.answer, width-6)))
	default:
		parts = append(parts, helperStyle.Render("Type a question and press Enter. Esc returns to the document."))
	}
	if msg := m.messageView(); msg != "" {
		parts = append(parts, msg)
	}
	return joinNonEmpty(parts)
}

func (m *model) statusLine(width int) string {
	if m.errMsg != "" {
		return errorStyle.Render(truncate.StringWithTail(m.errMsg, uint(width), "…"))
	}
	text := m.status
	if summary := m.searchSummary(); summary != "" && m.stage == stageReader && text == "" {
		text = summary
	}
	if len(m.activeJobs) > 0 {
		text = strings.TrimSpace(m.spinner.View() + " " + text)
	}
	if text == "" {
		return ""
	}
	return statusBarStyle.Render(truncate.StringWithTail(text, uint(clamp(width-2, 1, width)), "…"))
}

func (m *model) messageView() string {
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg)
	}
	if m.status != "" {
		return helperStyle.Render(m.status)
	}
	return ""
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	var hints []keyHint
	switch {
	case m.stage == stageSearch:
		hints = []keyHint{{"Enter", "Keep"}, {"Esc", "Clear"}}
	case m.stage == stageAsk:
		hints = []keyHint{{"Enter", "Ask"}, {"Esc", "Back"}}
	case m.focus == focusTOC:
		hints = []keyHint{{"↑/↓", "Choose"}, {"Enter", "Jump"}, {"Esc", "Back"}}
	default:
		hints = []keyHint{{"/", "Search"}, {"[/]", "Sections"}, {"t", "Outline"}, {"?", "Help"}, {"Esc", "Close"}}
	}
	cells := make([]string, 0, len(hints))
	for _, hint := range hints {
		cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, keyStyle.Render(hint.Key), keyDescStyle.Render(" "+hint.Description)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("Reading Cheatsheet"),
		helperStyle.Render("• ↑/↓, PgUp/PgDn and the mouse wheel scroll; g / G go to the top or bottom."),
		helperStyle.Render("• [ and ] jump between inferred sections; t focuses the outline, Enter jumps to the chosen heading."),
		helperStyle.Render("• / searches within the document, n / N cycle matches, and Esc clears the search."),
		helperStyle.Render("• y copies the text, d downloads the original, p opens a printable page."),
		helperStyle.Render("• a asks the library a question about what you are reading."),
		helperStyle.Render("• Esc closes the document, Ctrl+C quits."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}
