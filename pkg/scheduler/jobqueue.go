// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package scheduler

import (
	"sync"
	"time"
)

// jobTracker is the shared, mutex-guarded job registry every Scheduler
// implementation updates as jobs move through their lifecycle,
// generalizing ParserJobQueue's job_info dict + lock.
type jobTracker struct {
	mu   sync.Mutex
	jobs map[string]*JobInfo
}

func newJobTracker() *jobTracker {
	return &jobTracker{jobs: make(map[string]*JobInfo)}
}

func (t *jobTracker) register(jobID, filePath, language string) *JobInfo {
	info := &JobInfo{JobID: jobID, Status: StatusQueued, FilePath: filePath, Language: language}
	t.mu.Lock()
	t.jobs[jobID] = info
	t.mu.Unlock()
	return info
}

func (t *jobTracker) snapshot() map[string]*JobInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]*JobInfo, len(t.jobs))
	for id, info := range t.jobs {
		copied := *info
		out[id] = &copied
	}
	return out
}

func (t *jobTracker) progress(start time.Time) Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := len(t.jobs)
	if total == 0 {
		return Progress{}
	}

	var completed, failed, running, queued int
	var runningExecTime time.Duration
	for _, info := range t.jobs {
		switch info.Status {
		case StatusCompleted:
			completed++
		case StatusFailed:
			failed++
		case StatusRunning:
			running++
			if info.ExecutionTime > 0 {
				runningExecTime += info.ExecutionTime
			} else {
				runningExecTime += time.Second
			}
		case StatusQueued:
			queued++
		}
	}

	p := Progress{
		Total:      total,
		Completed:  completed,
		Failed:     failed,
		Running:    running,
		Queued:     queued,
		Percentage: float64(completed) / float64(total) * 100,
		Elapsed:    time.Since(start),
	}

	if running > 0 {
		avg := runningExecTime / time.Duration(running)
		remaining := total - completed - failed
		p.ETA = time.Duration(float64(remaining)/float64(running)) * avg
		p.HasETA = true
	}

	return p
}
