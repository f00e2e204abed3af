// Package tui is the terminal reader: open a document by id or path, browse
// its inferred outline, search within it and act on the original.
package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/docreader/internal/docapi"
	"github.com/csheth/docreader/internal/document"
	"github.com/csheth/docreader/internal/reader"
	"github.com/csheth/docreader/internal/scrollsync"
)

// DocumentService is the part of the backend client the reader uses.
type DocumentService interface {
	Document(ctx context.Context, id string) (*document.Document, error)
	Search(ctx context.Context, q docapi.SearchQuery) ([]docapi.SearchResult, error)
	Ask(ctx context.Context, req docapi.QueryRequest) (docapi.QueryResponse, error)
	Download(ctx context.Context, doc document.Document) (string, error)
}

type Config struct {
	// Documents may be nil; only local files can be opened then.
	Documents DocumentService
	Logger    *zap.Logger
	// Target is opened on start when set.
	Target     string
	JobTimeout time.Duration
	// Open shows a file in the desktop's default application.
	Open      func(path string) error
	Clipboard func(text string) error
}

type model struct {
	cfg        Config
	logger     *zap.Logger
	jobs       *jobBus
	activeJobs map[string]jobSnapshot

	stage    stage
	input    textinput.Model
	search   textinput.Model
	ask      textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	layout   pageLayout

	loadSeq      int
	loadingLabel string
	returnStage  stage

	results      []docapi.SearchResult
	resultsQuery string
	resultCursor int

	session    *reader.Session
	view       documentView
	state      reader.State
	matchIndex int
	focus      tocFocus
	tocCursor  int
	showHelp   bool

	scrollPath []int
	scrollGen  int

	question string
	answer   string
	asking   bool

	status string
	errMsg string
}

func New(cfg Config) tea.Model {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Open == nil {
		cfg.Open = openExternal
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = writeClipboard
	}
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = 2 * time.Minute
	}

	input := textinput.New()
	input.Placeholder = inputPlaceholder
	input.Prompt = "› "
	input.CharLimit = 1024
	input.Focus()

	search := textinput.New()
	search.Placeholder = searchPlaceholder
	search.Prompt = "/ "
	search.CharLimit = 256

	ask := textinput.New()
	ask.Placeholder = askPlaceholder
	ask.Prompt = "? "
	ask.CharLimit = 2000

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = taglineStyle

	layout := newPageLayout()
	vp := viewport.New(layout.viewportWidth, layout.viewportHeight)
	vp.MouseWheelEnabled = true

	return &model{
		cfg:        cfg,
		logger:     logger.With(zap.String("component", "tui")),
		jobs:       newJobBus(logger, cfg.JobTimeout),
		activeJobs: map[string]jobSnapshot{},
		stage:      stageInput,
		input:      input,
		search:     search,
		ask:        ask,
		viewport:   vp,
		spinner:    spin,
		layout:     layout,
	}
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if target := strings.TrimSpace(m.cfg.Target); target != "" {
		m.input.SetValue(target)
		cmds = append(cmds, m.openTarget(target, stageInput))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case jobSignalMsg:
		m.trackJob(msg.Snapshot)
		return m, nil
	case jobResultEnvelope:
		m.trackJob(msg.Snapshot)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case documentLoadedMsg:
		return m.handleDocumentLoaded(msg)
	case librarySearchMsg:
		return m.handleLibraryResults(msg)
	case answerMsg:
		m.asking = false
		if msg.err != nil {
			m.setError("Ask failed: " + describeError(msg.err))
			return m, nil
		}
		m.answer = strings.TrimSpace(msg.answer)
		if m.answer == "" {
			m.answer = "The library had no answer for that question."
		}
		m.setStatus("Answer received")
		return m, nil
	case downloadMsg:
		if msg.err != nil {
			m.setError("Download failed: " + describeError(msg.err))
			return m, nil
		}
		m.setStatus("Original available at " + msg.path)
		return m, nil
	case printMsg:
		switch {
		case msg.err != nil && msg.path != "":
			m.setError(fmt.Sprintf("Print view written to %s but could not be opened: %v", msg.path, msg.err))
		case msg.err != nil:
			m.setError("Print view failed: " + msg.err.Error())
		default:
			m.setStatus("Opened print view " + msg.path)
		}
		return m, nil
	case copyMsg:
		if msg.err != nil {
			m.setError("Copy failed: " + msg.err.Error())
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Copied %d characters to the clipboard", msg.chars))
		return m, nil
	case scrollFrameMsg:
		return m, m.advanceScroll(msg)
	case tea.MouseMsg:
		if m.session == nil || m.stage == stageAsk {
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.cancelScroll()
		m.syncScroll()
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) trackJob(s jobSnapshot) {
	if s.Status == jobStatusRunning {
		m.activeJobs[s.ID] = s
		return
	}
	delete(m.activeJobs, s.ID)
}

func (m *model) runningJob(kind jobKind) bool {
	for _, s := range m.activeJobs {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

func (m *model) setStatus(s string) {
	m.status = s
	m.errMsg = ""
}

func (m *model) setError(s string) {
	m.errMsg = s
	m.status = ""
}

func (m *model) resize(width, height int) {
	m.input.Width = clamp(width-8, 20, 120)
	m.search.Width = clamp(width-8, 20, 120)
	m.ask.Width = clamp(width-8, 20, 120)
	if m.session == nil {
		m.layout.Update(width, height, false)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		return
	}
	m.applyLayout()
}

func (m *model) applyLayout() {
	width, height := m.layout.windowWidth, m.layout.windowHeight
	if width == 0 {
		width, height = 80, 24
	}
	m.layout.Update(width, height, len(m.session.Headings()) > 0)
	m.viewport.Width = m.layout.viewportWidth
	m.viewport.Height = m.layout.viewportHeight
	m.renderDocument(m.session.State().SearchQuery)
}

// renderDocument lays out the open document for query and refreshes the
// reading state. An inactive query renders the structural view.
func (m *model) renderDocument(query string) {
	if m.session == nil {
		return
	}
	text := m.session.Document().TextContent
	res := m.session.SetQuery(query, terminalRenderer{current: m.matchIndex})
	if res.Active {
		m.view = layoutSearch(text, res, m.layout.viewportWidth)
	} else {
		m.view = layoutStructural(text, m.session.Headings(), m.layout.viewportWidth)
		m.session.SetAnchors(m.view.anchors)
	}
	m.viewport.SetContent(m.view.content)
	m.syncScroll()
}

func (m *model) syncScroll() {
	if m.session == nil {
		return
	}
	m.state = m.session.Scroll(m.viewport.YOffset, m.viewport.Height, m.viewport.TotalLineCount())
	if m.focus == focusContent {
		if idx := m.activeHeadingIndex(); idx >= 0 {
			m.tocCursor = idx
		}
	}
}

func (m *model) activeHeadingIndex() int {
	for idx, h := range m.session.Headings() {
		if h.SectionID == m.state.ActiveSectionID {
			return idx
		}
	}
	return -1
}

func (m *model) maxOffset() int {
	limit := m.viewport.TotalLineCount() - m.viewport.Height
	if limit < 0 {
		return 0
	}
	return limit
}

func (m *model) openTarget(target string, from stage) tea.Cmd {
	m.loadSeq++
	m.returnStage = from
	m.loadingLabel = target
	m.stage = stageLoading
	m.errMsg = ""
	if opensLocally(target, m.cfg.Documents != nil) {
		return m.jobs.Start(jobKindOpen, loadFileJob(m.loadSeq, target))
	}
	return m.jobs.Start(jobKindOpen, fetchDocumentJob(m.cfg.Documents, m.loadSeq, target))
}

func (m *model) handleDocumentLoaded(msg documentLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.loadSeq || m.stage != stageLoading {
		return m, nil
	}
	if msg.err != nil {
		m.stage = m.returnStage
		m.input.Focus()
		m.setError(describeError(msg.err))
		return m, nil
	}
	m.openDocument(msg.doc)
	return m, nil
}

func (m *model) openDocument(doc document.Document) {
	if m.session != nil {
		m.session.Close()
	}
	m.session = reader.Open(doc, scrollsync.WithLookAhead(rowLookAhead), scrollsync.WithLineHeight(rowLineHeight))
	m.matchIndex = 0
	m.focus = focusContent
	m.tocCursor = 0
	m.showHelp = false
	m.question, m.answer = "", ""
	m.search.SetValue("")
	m.cancelScroll()
	m.stage = stageReader
	m.input.Blur()
	m.viewport.GotoTop()
	m.applyLayout()
	m.setStatus(fmt.Sprintf("Opened %s with %d sections", doc.DisplayTitle(), len(m.session.Headings())))
	m.logger.Info("document opened",
		zap.String("id", doc.ID),
		zap.Int("headings", len(m.session.Headings())),
		zap.Int("chars", len(doc.TextContent)),
	)
}

func (m *model) closeReader() {
	if m.session != nil {
		m.session.Close()
		m.logger.Info("document closed", zap.String("id", m.session.Document().ID))
	}
	m.session = nil
	m.view = documentView{}
	m.state = reader.State{}
	m.viewport.SetContent("")
	m.cancelScroll()
	m.stage = stageInput
	m.input.Focus()
	m.setStatus("Closed document")
}

func (m *model) handleLibraryResults(msg librarySearchMsg) (tea.Model, tea.Cmd) {
	if m.stage != stageLoading || msg.query != m.resultsQuery {
		return m, nil
	}
	if msg.err != nil {
		m.stage = stageInput
		m.input.Focus()
		m.setError("Library search failed: " + describeError(msg.err))
		return m, nil
	}
	m.results = msg.results
	m.resultCursor = 0
	m.stage = stageResults
	m.input.Blur()
	m.setStatus(fmt.Sprintf("%d documents matched", len(msg.results)))
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.stage {
	case stageInput:
		return m.handleInputKey(msg)
	case stageLoading:
		if msg.Type == tea.KeyEsc {
			// stale results are dropped by sequence
			m.loadSeq++
			m.resultsQuery = ""
			m.stage = m.returnStage
			m.input.Focus()
			m.setStatus("Cancelled")
		}
		return m, nil
	case stageResults:
		return m.handleResultsKey(msg)
	case stageSearch:
		return m.handleSearchKey(msg)
	case stageAsk:
		return m.handleAskKey(msg)
	}
	return m.handleReaderKey(msg)
}

func (m *model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		target := strings.TrimSpace(m.input.Value())
		if target == "" {
			m.setError("Enter a document id, a file path, or ?terms to search the library.")
			return m, nil
		}
		if strings.HasPrefix(target, "?") {
			query := strings.TrimSpace(strings.TrimPrefix(target, "?"))
			if query == "" {
				m.setError("Type search terms after the ?")
				return m, nil
			}
			m.resultsQuery = query
			m.loadingLabel = "library for " + query
			m.returnStage = stageInput
			m.stage = stageLoading
			return m, m.jobs.Start(jobKindLibrary, librarySearchJob(m.cfg.Documents, query))
		}
		return m, m.openTarget(target, stageInput)
	case tea.KeyEsc:
		m.input.SetValue("")
		m.errMsg = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.resultCursor > 0 {
			m.resultCursor--
		}
	case "down", "j":
		if m.resultCursor < len(m.results)-1 {
			m.resultCursor++
		}
	case "enter":
		if len(m.results) == 0 {
			return m, nil
		}
		return m, m.openTarget(m.results[m.resultCursor].ID, stageResults)
	case "esc":
		m.stage = stageInput
		m.input.Focus()
		m.status = ""
	}
	return m, nil
}

func (m *model) handleReaderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.showHelp {
		if key == "?" || key == "esc" {
			m.showHelp = false
		}
		return m, nil
	}
	if m.focus == focusTOC {
		if cmd, handled := m.handleTOCKey(key); handled {
			return m, cmd
		}
	}
	doc := m.session.Document()
	switch key {
	case "?":
		m.showHelp = true
		return m, nil
	case "esc":
		if m.session.Searching() {
			m.clearSearch()
			m.setStatus("Search cleared")
			return m, nil
		}
		m.closeReader()
		return m, nil
	case "/":
		m.stage = stageSearch
		m.search.SetValue(m.session.State().SearchQuery)
		m.search.CursorEnd()
		m.search.Focus()
		return m, textinput.Blink
	case "n":
		return m, m.cycleMatch(1)
	case "N":
		return m, m.cycleMatch(-1)
	case "]":
		return m, m.jumpRelative(1)
	case "[":
		return m, m.jumpRelative(-1)
	case "t":
		if len(m.session.Headings()) == 0 {
			m.setStatus("This document has no outline")
			return m, nil
		}
		m.focus = focusTOC
		m.setStatus("Outline focused: ↑/↓ to choose, Enter to jump, Esc to return")
		return m, nil
	case "g", "home":
		return m, m.animateTo(0)
	case "G", "end":
		return m, m.animateTo(m.maxOffset())
	case "y":
		return m, m.jobs.Start(jobKindCopy, copyJob(doc.DisplayText(), m.cfg.Clipboard))
	case "d":
		if m.runningJob(jobKindDownload) {
			return m, nil
		}
		m.setStatus("Downloading original…")
		return m, m.jobs.Start(jobKindDownload, downloadJob(m.cfg.Documents, doc))
	case "p":
		m.setStatus("Preparing print view…")
		return m, m.jobs.Start(jobKindPrint, printJob(doc, m.session.State().SearchQuery, m.cfg.Open))
	case "a":
		m.stage = stageAsk
		m.ask.Focus()
		return m, textinput.Blink
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	m.cancelScroll()
	m.syncScroll()
	return m, cmd
}

func (m *model) handleTOCKey(key string) (tea.Cmd, bool) {
	headings := m.session.Headings()
	switch key {
	case "up", "k":
		if m.tocCursor > 0 {
			m.tocCursor--
		}
		return nil, true
	case "down", "j":
		if m.tocCursor < len(headings)-1 {
			m.tocCursor++
		}
		return nil, true
	case "enter":
		if m.tocCursor < len(headings) {
			return m.jumpToSection(headings[m.tocCursor].SectionID), true
		}
		return nil, true
	case "esc", "t":
		m.focus = focusContent
		m.status = ""
		m.syncScroll()
		return nil, true
	}
	return nil, false
}

func (m *model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.stage = stageReader
		m.search.Blur()
		m.setStatus(m.searchSummary())
		return m, nil
	case tea.KeyEsc:
		m.stage = stageReader
		m.search.Blur()
		m.clearSearch()
		m.status = ""
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if value := m.search.Value(); value != before {
		m.applySearch(value)
	}
	return m, cmd
}

func (m *model) handleAskKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		question := strings.TrimSpace(m.ask.Value())
		if question == "" || m.asking {
			return m, nil
		}
		m.asking = true
		m.question = question
		m.answer = ""
		m.ask.SetValue("")
		m.errMsg = ""
		return m, m.jobs.Start(jobKindAsk, askJob(m.cfg.Documents, m.session.Document(), question))
	case tea.KeyEsc:
		m.stage = stageReader
		m.ask.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.ask, cmd = m.ask.Update(msg)
	return m, cmd
}

// applySearch highlights query and moves to its first match.
func (m *model) applySearch(query string) {
	m.matchIndex = 0
	m.cancelScroll()
	m.renderDocument(query)
	m.showCurrentMatch()
}

func (m *model) clearSearch() {
	m.search.SetValue("")
	m.matchIndex = 0
	m.renderDocument("")
}

func (m *model) cycleMatch(delta int) tea.Cmd {
	count := m.session.State().SearchMatchCount
	if count == 0 {
		m.setStatus("Press / to search within the document")
		return nil
	}
	m.matchIndex = ((m.matchIndex+delta)%count + count) % count
	m.renderDocument(m.session.State().SearchQuery)
	m.showCurrentMatch()
	m.setStatus(m.searchSummary())
	return nil
}

func (m *model) showCurrentMatch() {
	if m.matchIndex >= len(m.view.matchRows) {
		return
	}
	row := m.view.matchRows[m.matchIndex] - rowLookAhead
	m.viewport.SetYOffset(clamp(row, 0, m.maxOffset()))
	m.syncScroll()
}

func (m *model) searchSummary() string {
	st := m.session.State()
	if st.SearchQuery == "" {
		return ""
	}
	if st.SearchMatchCount == 0 {
		return fmt.Sprintf("No matches for %q", st.SearchQuery)
	}
	noun := "matches"
	if st.SearchMatchCount == 1 {
		noun = "match"
	}
	return fmt.Sprintf("%d %s for %q (%d/%d)", st.SearchMatchCount, noun, st.SearchQuery, m.matchIndex+1, st.SearchMatchCount)
}

// jumpRelative moves to the next or previous heading relative to the top of
// the viewport.
func (m *model) jumpRelative(delta int) tea.Cmd {
	headings := m.session.Headings()
	if len(headings) == 0 {
		m.setStatus("This document has no outline")
		return nil
	}
	if m.session.Searching() {
		m.setStatus("Clear the search with Esc to jump between sections")
		return nil
	}
	rows := sectionRows(headings, m.session.Anchors())
	top := m.viewport.YOffset
	target := -1
	if delta > 0 {
		for idx, row := range rows {
			if row > top {
				target = idx
				break
			}
		}
	} else {
		for idx := len(rows) - 1; idx >= 0; idx-- {
			if rows[idx] < top {
				target = idx
				break
			}
		}
	}
	if target < 0 {
		if delta > 0 {
			m.setStatus("Already past the last section")
		} else {
			m.setStatus("Already at the first section")
		}
		return nil
	}
	return m.jumpToSection(headings[target].SectionID)
}

func (m *model) jumpToSection(sectionID string) tea.Cmd {
	target, err := m.session.ScrollTo(sectionID)
	switch {
	case errors.Is(err, scrollsync.ErrSuspended):
		m.setStatus("Clear the search with Esc to jump between sections")
		return nil
	case err != nil:
		m.setError(err.Error())
		return nil
	}
	for _, h := range m.session.Headings() {
		if h.SectionID == sectionID {
			m.setStatus("Jumped to " + h.Title)
		}
	}
	return m.animateTo(target.Offset)
}

// animateTo eases the viewport towards offset one frame per tick. Starting a
// new animation or scrolling manually abandons the previous one.
func (m *model) animateTo(offset int) tea.Cmd {
	offset = clamp(offset, 0, m.maxOffset())
	m.scrollGen++
	m.scrollPath = scrollsync.SmoothPath(m.viewport.YOffset, offset, scrollFrames)
	return scrollFrameCmd(m.scrollGen)
}

func (m *model) advanceScroll(msg scrollFrameMsg) tea.Cmd {
	if msg.generation != m.scrollGen || len(m.scrollPath) == 0 || m.session == nil {
		return nil
	}
	next := m.scrollPath[0]
	m.scrollPath = m.scrollPath[1:]
	m.viewport.SetYOffset(next)
	m.syncScroll()
	if len(m.scrollPath) == 0 {
		return nil
	}
	return scrollFrameCmd(m.scrollGen)
}

func (m *model) cancelScroll() {
	m.scrollGen++
	m.scrollPath = nil
}

func describeError(err error) string {
	if errors.Is(err, docapi.ErrNotFound) {
		return "Document not found."
	}
	var apiErr *docapi.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "Not authorised: check DOCREADER_TOKEN."
		}
	}
	return err.Error()
}
