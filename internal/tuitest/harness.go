// Package tuitest drives the reader binary inside a pseudo terminal and
// records what it draws.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultWidth   = 100
	defaultHeight  = 30
	defaultTimeout = 10 * time.Second
	pollInterval   = 20 * time.Millisecond
)

// Step is one scripted interaction. When Expect is set the harness waits until
// the screen shows that text before sleeping Delay and writing Input.
type Step struct {
	Expect string
	Delay  time.Duration
	Input  []byte
}

// Config configures how the harness spawns and drives the program.
type Config struct {
	Command          []string
	Dir              string
	Env              []string
	Width            int
	Height           int
	Steps            []Step
	Timeout          time.Duration
	AllowedExitCodes []int
	AllowInterrupt   bool
}

// Recording is the raw terminal stream plus its parsed frames.
type Recording struct {
	Raw      []byte
	Frames   []Frame
	Duration time.Duration
}

// screen collects PTY output for the reader goroutine and the script.
type screen struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *screen) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.buf.Bytes()...)
}

func (s *screen) waitFor(ctx context.Context, text string) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if strings.Contains(stripANSI(string(s.Bytes())), text) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("tuitest: %q never appeared: %w", text, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Run executes the command inside a PTY, replays the script and captures
// every byte written to the terminal.
func Run(ctx context.Context, cfg Config) (*Recording, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	width := cfg.Width
	if width <= 0 {
		width = defaultWidth
	}
	height := cfg.Height
	if height <= 0 {
		height = defaultHeight
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Command[0], cfg.Command[1:]...)
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(height), Cols: uint16(width)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start program: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	out := &screen{}
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		responder := newTerminalResponder(ptmx)
		buf := make([]byte, 4096)
		for {
			n, readErr := ptmx.Read(buf)
			if n > 0 {
				responder.Process(buf[:n])
				_, _ = out.Write(buf[:n])
			}
			if readErr != nil {
				return
			}
		}
	}()

	start := time.Now()
	for _, step := range cfg.Steps {
		if step.Expect != "" {
			if err := out.waitFor(ctx, step.Expect); err != nil {
				return &Recording{Raw: out.Bytes(), Frames: parseFrames(out.Bytes())}, err
			}
		}
		if step.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("tuitest: context cancelled before script finished: %w", ctx.Err())
			case <-time.After(step.Delay):
			}
		}
		if len(step.Input) > 0 {
			if _, err := ptmx.Write(step.Input); err != nil {
				return nil, fmt.Errorf("tuitest: write input: %w", err)
			}
		}
	}

	if err := waitExit(ctx, cmd, cfg); err != nil {
		return nil, err
	}

	// Closing the PTY lets the reader goroutine finish draining.
	_ = ptmx.Close()
	<-copyDone

	raw := out.Bytes()
	return &Recording{Raw: raw, Frames: parseFrames(raw), Duration: time.Since(start)}, nil
}

func waitExit(ctx context.Context, cmd *exec.Cmd, cfg Config) error {
	allowed := map[int]struct{}{0: {}}
	for _, code := range cfg.AllowedExitCodes {
		allowed[code] = struct{}{}
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err == nil {
			return nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if _, ok := allowed[exitErr.ExitCode()]; ok {
				return nil
			}
		}
		if cfg.AllowInterrupt && strings.Contains(err.Error(), "signal: interrupt") {
			return nil
		}
		return fmt.Errorf("tuitest: program exited with error: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("tuitest: timeout waiting for program exit: %w", ctx.Err())
	}
}

func buildEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

// Type returns the bytes of text as typed keys.
func Type(text string) []byte {
	return []byte(text)
}

var (
	KeyEnter = []byte{'\r'}
	KeyCtrlC = []byte{3}
	KeyEsc   = []byte{27}
	KeyDown  = []byte("\x1b[B")
	KeyUp    = []byte("\x1b[A")
)
