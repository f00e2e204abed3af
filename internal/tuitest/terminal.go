package tuitest

import (
	"bytes"
	"io"
)

// terminalQueries are the capability probes lipgloss and bubbletea send on
// start, with the answers of a dark xterm.
var terminalQueries = []struct {
	query, reply string
}{
	{"\x1b[6n", "\x1b[1;1R"},
	{"\x1b]10;?\x07", "\x1b]10;rgb:cccc/cccc/cccc\x07"},
	{"\x1b]10;?\x1b\\", "\x1b]10;rgb:cccc/cccc/cccc\x1b\\"},
	{"\x1b]11;?\x07", "\x1b]11;rgb:0000/0000/0000\x07"},
	{"\x1b]11;?\x1b\\", "\x1b]11;rgb:0000/0000/0000\x1b\\"},
}

// terminalResponder answers probes so the program under test does not block
// waiting for a real terminal.
type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 128)}
}

func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	// keep a tail for probes split across reads
	if len(tr.buf) > 256 {
		tr.buf = tr.buf[len(tr.buf)-64:]
	}
}

func (tr *terminalResponder) answerNext() bool {
	for _, q := range terminalQueries {
		idx := bytes.Index(tr.buf, []byte(q.query))
		if idx < 0 {
			continue
		}
		tr.buf = tr.buf[idx+len(q.query):]
		_, _ = io.WriteString(tr.w, q.reply)
		return true
	}
	return false
}
