package tui

import "time"

type stage int

const (
	stageInput stage = iota
	stageLoading
	stageResults
	stageReader
	stageSearch
	stageAsk
)

const heroTagline = "Read library documents with their outline at hand."

const (
	inputPlaceholder  = "Document id, file path, or ?terms to search the library"
	searchPlaceholder = "Search within this document…"
	askPlaceholder    = "Ask the library about this document…"
)

const (
	minViewportWidth          = 20
	viewportHorizontalPadding = 2
	tocMinWidth               = 20
	tocMaxWidth               = 36
	// title, badges, progress bar, status and key hints plus one spare row
	readerChromeHeight = 6
)

// Scroll tracking runs in terminal rows.
const (
	rowLookAhead  = 3
	rowLineHeight = 1
)

const (
	scrollFrames   = 8
	scrollFrameGap = 16 * time.Millisecond
)

type tocFocus int

const (
	focusContent tocFocus = iota
	focusTOC
)
