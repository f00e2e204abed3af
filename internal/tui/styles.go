package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor    = lipgloss.Color("#ff8c00")
	mutedColor     = lipgloss.Color("244")
	badgeTextColor = lipgloss.Color("#0f0f0f")

	titleStyle           = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	taglineStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb347")).Italic(true)
	sectionHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	helperStyle          = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	searchHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("190"))
	searchCurrentStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("229"))

	headingStyles = []lipgloss.Style{
		lipgloss.NewStyle().Bold(true).Underline(true).Foreground(accentColor),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147")),
	}

	badgeStyle      = lipgloss.NewStyle().Foreground(badgeTextColor).Background(lipgloss.Color("#8ecae6")).Padding(0, 1).MarginRight(1)
	extractedStyle  = badgeStyle.Copy().Background(lipgloss.Color("#ffd166"))
	progressStyle   = lipgloss.NewStyle().Foreground(accentColor)
	progressTrack   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	statusBarStyle  = lipgloss.NewStyle().Foreground(badgeTextColor).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle        = lipgloss.NewStyle().Bold(true).Foreground(badgeTextColor).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4")).MarginRight(1)
	helpBoxStyle    = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	answerBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accentColor).Padding(0, 1)
	tocStyle        = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(lipgloss.Color("238")).PaddingRight(1)
	tocActiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	tocCursorStyle  = lipgloss.NewStyle().Foreground(badgeTextColor).Background(lipgloss.Color("#8ecae6"))
	currentRowStyle = lipgloss.NewStyle().Foreground(badgeTextColor).Background(lipgloss.Color("#8ecae6"))
)

func headingStyle(level int) lipgloss.Style {
	idx := level - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(headingStyles) {
		idx = len(headingStyles) - 1
	}
	return headingStyles[idx]
}
