package tui

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/docreader/internal/docapi"
	"github.com/csheth/docreader/internal/document"
	"github.com/csheth/docreader/internal/printview"
	"github.com/csheth/docreader/internal/textextract"
)

var errNoBackend = errors.New("no document API configured (set DOCREADER_API_URL or pass -api)")

type documentLoadedMsg struct {
	seq int
	doc document.Document
	err error
}

type librarySearchMsg struct {
	query   string
	results []docapi.SearchResult
	err     error
}

type answerMsg struct {
	question string
	answer   string
	err      error
}

type downloadMsg struct {
	path string
	err  error
}

type printMsg struct {
	path string
	err  error
}

type copyMsg struct {
	chars int
	err   error
}

type scrollFrameMsg struct {
	generation int
}

func scrollFrameCmd(generation int) tea.Cmd {
	return tea.Tick(scrollFrameGap, func(time.Time) tea.Msg {
		return scrollFrameMsg{generation: generation}
	})
}

// isLocalPath reports whether target names an existing file we can extract.
func isLocalPath(target string) bool {
	info, err := os.Stat(expandHome(target))
	return err == nil && !info.IsDir()
}

// opensLocally decides whether target is read from disk. With a backend
// configured, a bare name such as "5" is a document id even when a file of
// that name exists; it must look like a path to be opened locally.
func opensLocally(target string, hasBackend bool) bool {
	if !isLocalPath(target) {
		return false
	}
	if !hasBackend {
		return true
	}
	return strings.ContainsRune(target, filepath.Separator) ||
		strings.ContainsRune(target, '/') ||
		strings.HasPrefix(target, "~") ||
		filepath.Ext(target) != ""
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func loadFileJob(seq int, path string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		doc, err := textextract.LoadFile(expandHome(path))
		return documentLoadedMsg{seq: seq, doc: doc, err: err}, err
	}
}

func fetchDocumentJob(svc DocumentService, seq int, id string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		if svc == nil {
			return documentLoadedMsg{seq: seq, err: errNoBackend}, errNoBackend
		}
		doc, err := svc.Document(ctx, id)
		if err != nil {
			return documentLoadedMsg{seq: seq, err: err}, err
		}
		return documentLoadedMsg{seq: seq, doc: *doc}, nil
	}
}

func librarySearchJob(svc DocumentService, query string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		if svc == nil {
			return librarySearchMsg{query: query, err: errNoBackend}, errNoBackend
		}
		results, err := svc.Search(ctx, docapi.SearchQuery{Text: query})
		return librarySearchMsg{query: query, results: results, err: err}, err
	}
}

func askJob(svc DocumentService, doc document.Document, question string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		if svc == nil {
			return answerMsg{question: question, err: errNoBackend}, errNoBackend
		}
		resp, err := svc.Ask(ctx, docapi.QueryRequest{Question: withDocumentContext(doc, question)})
		if err != nil {
			return answerMsg{question: question, err: err}, err
		}
		return answerMsg{question: question, answer: resp.Text()}, nil
	}
}

func withDocumentContext(doc document.Document, question string) string {
	return question + "\n\n(Asked while reading \"" + doc.DisplayTitle() + "\")"
}

func downloadJob(svc DocumentService, doc document.Document) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		if isLocalDocument(doc) {
			return downloadMsg{path: doc.Path}, nil
		}
		if svc == nil {
			return downloadMsg{err: errNoBackend}, errNoBackend
		}
		path, err := svc.Download(ctx, doc)
		return downloadMsg{path: path, err: err}, err
	}
}

func isLocalDocument(doc document.Document) bool {
	return doc.StorageLocation == "local" && strings.HasPrefix(doc.ID, "file:")
}

func printJob(doc document.Document, query string, open func(string) error) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		path, err := printview.WriteTemp(doc, query)
		if err != nil {
			return printMsg{err: err}, err
		}
		if open != nil {
			if err := open(path); err != nil {
				return printMsg{path: path, err: err}, err
			}
		}
		return printMsg{path: path}, nil
	}
}

func copyJob(text string, write func(string) error) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		err := write(text)
		return copyMsg{chars: len([]rune(text)), err: err}, err
	}
}

func writeClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// openExternal hands path to the desktop's default application.
func openExternal(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
