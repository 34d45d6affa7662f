// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// ThreadPoolScheduler runs jobs concurrently over a bounded goroutine
// pool, grounded on run_batch_threaded's ThreadPoolExecutor usage and
// the teacher's resolveCallsParallel worker-pool idiom. Uses
// golang.org/x/sync/errgroup's SetLimit instead of a hand-rolled
// channel-based pool, the way a modern Go codebase in this corpus would
// bound concurrent work.
type ThreadPoolScheduler struct {
	NumWorkers int

	tracker *jobTracker
	start   time.Time
}

// NewThreadPoolScheduler constructs a ThreadPoolScheduler bounded to
// numWorkers concurrent jobs (clamped to at least 1).
func NewThreadPoolScheduler(numWorkers int) *ThreadPoolScheduler {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &ThreadPoolScheduler{NumWorkers: numWorkers, tracker: newJobTracker()}
}

// RunBatch runs jobs across the bounded worker pool and blocks until
// every job has completed or failed.
func (s *ThreadPoolScheduler) RunBatch(jobs []Job) BatchResult {
	s.start = time.Now()

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(s.NumWorkers)

	for _, job := range jobs {
		job := job
		jobID := newJobID(job.FilePath)
		info := s.tracker.register(jobID, job.FilePath, job.Language)

		g.Go(func() error {
			runJob(info, job)
			return nil
		})
	}

	_ = g.Wait()

	return computeBatchResult(len(jobs), s.tracker.snapshot(), s.start, time.Now())
}

// Progress reports the tracker's current aggregate state.
func (s *ThreadPoolScheduler) Progress() Progress {
	return s.tracker.progress(s.start)
}
