package main

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/csheth/docreader/internal/tuitest"
)

func TestReaderOpensLocalFileAndSearches(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and drives the binary")
	}
	t.Parallel()

	cmdDir := moduleDir(t)
	fixture := filepath.Join(cmdDir, "testdata", "handbook.md")
	binary := buildBinary(t, cmdDir)

	rec, err := tuitest.Run(context.Background(), tuitest.Config{
		Command: []string{binary, "-no-alt-screen", "-offline", "-env", filepath.Join(t.TempDir(), "none.env"), fixture},
		Dir:     cmdDir,
		Env:     []string{"DOCREADER_LOG_FILE=" + filepath.Join(t.TempDir(), "reader.log")},
		Width:   100,
		Height:  30,
		Steps: []tuitest.Step{
			{Expect: "Getting started", Input: []byte("/")},
			{Delay: 200 * time.Millisecond, Input: tuitest.Type("questions")},
			{Delay: 300 * time.Millisecond, Input: tuitest.KeyEnter},
			{Expect: "1 match", Delay: 200 * time.Millisecond, Input: tuitest.KeyEsc},
			{Delay: 200 * time.Millisecond, Input: tuitest.KeyCtrlC},
		},
		Timeout:        15 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	if _, ok := rec.LastWith("Team Handbook"); !ok {
		t.Fatalf("document never rendered; final output:\n%s", lastPlain(rec))
	}
	for _, want := range []string{"Local", "min read", "CHAPTER: TWO", `1 match for "questions"`} {
		if !rec.Contains(want) {
			t.Fatalf("output never showed %q; final output:\n%s", want, lastPlain(rec))
		}
	}
}

func lastPlain(rec *tuitest.Recording) string {
	frame, ok := rec.FinalFrame()
	if !ok {
		return "<no frames>"
	}
	return frame.Plain
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	name := "docreader-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
