package download

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ytget/tubegrab/internal/config"
	"github.com/ytget/tubegrab/internal/extractor"
	"github.com/ytget/tubegrab/internal/model"
)

const testTimeout = 5 * time.Second

type transferFunc func(ctx context.Context, item Item, report Reporter, checkpoint Checkpoint) ([]string, error)

// fakeTransfer records calls and delegates to fn.
type fakeTransfer struct {
	name  string
	fn    transferFunc
	calls atomic.Int32
	items chan Item
}

func newFakeTransfer(name string, fn transferFunc) *fakeTransfer {
	return &fakeTransfer{name: name, fn: fn, items: make(chan Item, 64)}
}

func (f *fakeTransfer) Name() string { return f.name }

func (f *fakeTransfer) Download(ctx context.Context, item Item, report Reporter, checkpoint Checkpoint) ([]string, error) {
	f.calls.Add(1)
	f.items <- item
	return f.fn(ctx, item, report, checkpoint)
}

func succeed(ctx context.Context, item Item, report Reporter, checkpoint Checkpoint) ([]string, error) {
	report(ItemProgress{Percent: 50})
	report(ItemProgress{Percent: 100})
	return []string{item.OutputDir + "/" + item.Title + ".mp4"}, nil
}

// waitForCancel blocks until the checkpoint trips.
func waitForCancel(ctx context.Context, item Item, report Reporter, checkpoint Checkpoint) ([]string, error) {
	deadline := time.Now().Add(testTimeout)
	for time.Now().Before(deadline) {
		if err := checkpoint(); err != nil {
			return nil, err
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil, context.DeadlineExceeded
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Events.ProgressInterval = 0
	cfg.Network.ExpandTimeout = testTimeout
	return cfg
}

func withFFmpeg(path string) Option {
	return WithToolLocator(func(string) string { return path })
}

func newTestSupervisor(t *testing.T, transfer Transfer, opts ...Option) *Supervisor {
	t.Helper()
	base := []Option{
		WithConfig(testConfig()),
		WithTransfer(transfer),
		WithRegistry(extractor.Default()),
		withFFmpeg("/usr/bin/ffmpeg"),
	}
	return NewSupervisor(append(base, opts...)...)
}

func videoRequest(location string) model.Request {
	return model.Request{
		Location:        location,
		OutputDirectory: "/tmp/out",
		Mode:            model.ModeVideo,
		Quality:         model.QualityBest,
	}
}

// drain collects events until the terminal one.
func drain(t *testing.T, s *Supervisor) []model.ProgressEvent {
	t.Helper()
	var events []model.ProgressEvent
	timer := time.NewTimer(testTimeout)
	defer timer.Stop()
	for {
		select {
		case ev := <-s.Events():
			events = append(events, ev)
			if ev.IsTerminal() {
				return events
			}
		case <-timer.C:
			t.Fatalf("no terminal event after %s; got %d events", testTimeout, len(events))
			return nil
		}
	}
}

// waitFor consumes events until pred matches and returns them.
func waitFor(t *testing.T, s *Supervisor, pred func(model.ProgressEvent) bool) []model.ProgressEvent {
	t.Helper()
	var events []model.ProgressEvent
	timer := time.NewTimer(testTimeout)
	defer timer.Stop()
	for {
		select {
		case ev := <-s.Events():
			events = append(events, ev)
			if pred(ev) {
				return events
			}
			require.False(t, ev.IsTerminal(), "job finished before the awaited event: %+v", ev)
		case <-timer.C:
			t.Fatalf("awaited event not seen after %s", testTimeout)
			return nil
		}
	}
}

func assertQuiet(t *testing.T, s *Supervisor) {
	t.Helper()
	select {
	case ev := <-s.Events():
		t.Fatalf("unexpected event after terminal: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func kinds(events []model.ProgressEvent) []model.EventKind {
	out := make([]model.EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}
