// Package playback bounds how many PlayFileRequests the demo drives
// into the media layer concurrently: a semaphore guards a fixed worker
// budget, an errgroup collects the workers.
package playback

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// MaxConcurrentPlayouts limits how many files are played into the media
// layer at once, independent of how many calls are CONNECTED_BUSY.
const MaxConcurrentPlayouts = 8

// Job is one unit of playback work: play filename into sessionID, report
// the outcome via done.
type Job struct {
	SessionID string
	Filename  string
	Play      func(ctx context.Context, sessionID, filename string) error
	Done      func(err error)
}

// Dispatcher runs Jobs with bounded concurrency.
type Dispatcher struct {
	logger *slog.Logger
	sem    *semaphore.Weighted
}

// NewDispatcher builds a Dispatcher with the given concurrency limit (use
// MaxConcurrentPlayouts if unsure).
func NewDispatcher(logger *slog.Logger, limit int64) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger, sem: semaphore.NewWeighted(limit)}
}

// Run submits jobs and blocks until all have completed or ctx is canceled.
// A job's own failure does not cancel the others; it only determines that
// job's Done callback argument.
func (d *Dispatcher) Run(ctx context.Context, jobs []Job) error {
	g, gCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := d.sem.Acquire(gCtx, 1); err != nil {
				mu.Lock()
				job.Done(err)
				mu.Unlock()
				return nil
			}
			defer d.sem.Release(1)

			d.logger.Debug("[Playback] starting playout", "session_id", job.SessionID, "file", job.Filename)
			err := job.Play(gCtx, job.SessionID, job.Filename)
			if err != nil {
				d.logger.Warn("[Playback] playout failed", "session_id", job.SessionID, "file", job.Filename, "error", err)
			}
			mu.Lock()
			job.Done(err)
			mu.Unlock()
			return nil
		})
	}

	return g.Wait()
}
