package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunCompletesAllJobs(t *testing.T) {
	d := NewDispatcher(discardLogger(), 2)

	var mu sync.Mutex
	done := make(map[string]error)

	jobs := make([]Job, 5)
	for i := range jobs {
		sessionID := fmt.Sprintf("session-%d", i)
		jobs[i] = Job{
			SessionID: sessionID,
			Filename:  "hello.wav",
			Play: func(ctx context.Context, sessionID, filename string) error {
				return nil
			},
			Done: func(err error) {
				mu.Lock()
				done[sessionID] = err
				mu.Unlock()
			},
		}
	}

	if err := d.Run(context.Background(), jobs); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(done) != 5 {
		t.Fatalf("Done fired for %d jobs, want 5", len(done))
	}
	for sessionID, err := range done {
		if err != nil {
			t.Fatalf("job %s reported error: %v", sessionID, err)
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	const limit = 2
	d := NewDispatcher(discardLogger(), limit)

	var active, peak atomic.Int32

	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = Job{
			SessionID: fmt.Sprintf("session-%d", i),
			Filename:  "hello.wav",
			Play: func(ctx context.Context, sessionID, filename string) error {
				now := active.Add(1)
				for {
					p := peak.Load()
					if now <= p || peak.CompareAndSwap(p, now) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				active.Add(-1)
				return nil
			},
			Done: func(error) {},
		}
	}

	if err := d.Run(context.Background(), jobs); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := peak.Load(); got > limit {
		t.Fatalf("peak concurrency = %d, want <= %d", got, limit)
	}
}

func TestRunJobFailureDoesNotCancelOthers(t *testing.T) {
	d := NewDispatcher(discardLogger(), 4)

	playErr := errors.New("file not found")
	var mu sync.Mutex
	results := make(map[string]error)

	jobs := []Job{
		{
			SessionID: "bad",
			Filename:  "missing.wav",
			Play: func(ctx context.Context, sessionID, filename string) error {
				return playErr
			},
			Done: func(err error) {
				mu.Lock()
				results["bad"] = err
				mu.Unlock()
			},
		},
		{
			SessionID: "good",
			Filename:  "hello.wav",
			Play: func(ctx context.Context, sessionID, filename string) error {
				return nil
			},
			Done: func(err error) {
				mu.Lock()
				results["good"] = err
				mu.Unlock()
			},
		},
	}

	if err := d.Run(context.Background(), jobs); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !errors.Is(results["bad"], playErr) {
		t.Fatalf("bad job result = %v, want %v", results["bad"], playErr)
	}
	if results["good"] != nil {
		t.Fatalf("good job result = %v, want nil", results["good"])
	}
}
