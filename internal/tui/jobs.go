package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type jobKind string

type jobStatus string

const (
	jobKindOpen     jobKind = "open"
	jobKindLibrary  jobKind = "library"
	jobKindAsk      jobKind = "ask"
	jobKindDownload jobKind = "download"
	jobKindPrint    jobKind = "print"
	jobKindCopy     jobKind = "copy"
)

const (
	jobStatusRunning   jobStatus = "running"
	jobStatusSucceeded jobStatus = "succeeded"
	jobStatusFailed    jobStatus = "failed"
)

type jobSnapshot struct {
	ID          string
	Kind        jobKind
	Status      jobStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Err         string
	Duration    time.Duration
}

type jobSignalMsg struct {
	Snapshot jobSnapshot
}

type jobResultEnvelope struct {
	Snapshot jobSnapshot
	Payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

// jobBus runs blocking work off the update loop. Each job reports a running
// signal first and then an envelope carrying the runner's message.
type jobBus struct {
	counter int64
	timeout time.Duration
	logger  *zap.Logger
}

func newJobBus(logger *zap.Logger, timeout time.Duration) *jobBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &jobBus{timeout: timeout, logger: logger.With(zap.String("component", "jobs"))}
}

func (b *jobBus) nextID(kind jobKind) string {
	idx := atomic.AddInt64(&b.counter, 1)
	return fmt.Sprintf("%s-%d", kind, idx)
}

func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	id := b.nextID(kind)
	started := time.Now()
	startSnapshot := jobSnapshot{ID: id, Kind: kind, Status: jobStatusRunning, StartedAt: started}
	startCmd := func() tea.Msg {
		return jobSignalMsg{Snapshot: startSnapshot}
	}

	runCmd := func() tea.Msg {
		ctx := context.Background()
		if b.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.timeout)
			defer cancel()
		}
		payload, err := runner(ctx)
		snapshot := jobSnapshot{
			ID:          id,
			Kind:        kind,
			StartedAt:   started,
			CompletedAt: time.Now(),
		}
		if err != nil {
			snapshot.Status = jobStatusFailed
			snapshot.Err = err.Error()
		} else {
			snapshot.Status = jobStatusSucceeded
		}
		snapshot.Duration = snapshot.CompletedAt.Sub(started)
		fields := []zap.Field{
			zap.String("id", id),
			zap.String("kind", string(kind)),
			zap.String("status", string(snapshot.Status)),
			zap.Duration("duration", snapshot.Duration),
		}
		if err != nil {
			b.logger.Warn("job finished", append(fields, zap.Error(err))...)
		} else {
			b.logger.Info("job finished", fields...)
		}
		return jobResultEnvelope{Snapshot: snapshot, Payload: payload}
	}

	return tea.Sequence(startCmd, runCmd)
}
