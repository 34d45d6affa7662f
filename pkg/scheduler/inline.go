// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package scheduler

import (
	"fmt"
	"time"
)

// InlineScheduler runs every job sequentially on the calling goroutine,
// grounded on run_batch_inline — the mode the original reserves for
// environments where concurrent execution is unsafe (shared DB
// connections); here that's any sink that isn't safe for concurrent
// EnsureNode/EnsureRelationship calls.
type InlineScheduler struct {
	tracker *jobTracker
	start   time.Time
}

// NewInlineScheduler constructs an InlineScheduler.
func NewInlineScheduler() *InlineScheduler {
	return &InlineScheduler{tracker: newJobTracker()}
}

// RunBatch runs jobs one at a time in submission order.
func (s *InlineScheduler) RunBatch(jobs []Job) BatchResult {
	s.start = time.Now()
	infos := make(map[string]*JobInfo, len(jobs))

	for _, job := range jobs {
		jobID := newJobID(job.FilePath)
		info := s.tracker.register(jobID, job.FilePath, job.Language)
		infos[jobID] = info
		runJob(info, job)
	}

	return computeBatchResult(len(jobs), s.tracker.snapshot(), s.start, time.Now())
}

// Progress reports the tracker's current aggregate state.
func (s *InlineScheduler) Progress() Progress {
	return s.tracker.progress(s.start)
}

func runJob(info *JobInfo, job Job) {
	info.Status = StatusRunning
	info.StartedAt = time.Now()

	result, err := job.ParseFn(job.FilePath, job.Language)

	info.ExecutionTime = time.Since(info.StartedAt)
	info.CompletedAt = time.Now()
	if err != nil {
		info.Status = StatusFailed
		info.Error = fmt.Sprintf("%v", err)
		return
	}
	info.Status = StatusCompleted
	info.Result = result
}
