// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// WorkerInvoker runs one file through an out-of-process worker and
// returns its raw result payload. ProcessScheduler shells out to
// os/exec rather than attempting a literal port of Python's
// multiprocessing.Process + Queue, since that has no direct Go
// equivalent; a real binary wires this to re-exec itself with a
// --worker flag (see cmd/cie-graph), passing filePath/language as
// arguments and parsing the worker's stdout as the result.
type WorkerInvoker interface {
	Invoke(ctx context.Context, filePath, language string) ([]byte, error)
}

// ExecInvoker is the default WorkerInvoker: it runs execPath with
// workerArgs plus (filePath, language) appended, and treats the
// subprocess's stdout as a JSON-encoded result payload.
type ExecInvoker struct {
	ExecPath   string
	WorkerArgs []string
	Timeout    time.Duration
}

// Invoke runs the worker subprocess and returns its stdout.
func (e ExecInvoker) Invoke(ctx context.Context, filePath, language string) ([]byte, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, e.WorkerArgs...), filePath, language)
	cmd := exec.CommandContext(ctx, e.ExecPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("worker subprocess failed: %w: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// ProcessScheduler runs jobs across daemonized OS-process workers,
// grounded on ParserProcessManager's worker_processes pool — the
// multiprocessing.Process target is replaced by an out-of-process
// WorkerInvoker since Go has no fork-a-worker-loop primitive matching
// Python's multiprocessing.
type ProcessScheduler struct {
	Invoker    WorkerInvoker
	NumWorkers int
	Timeout    time.Duration

	tracker *jobTracker
	start   time.Time
}

// NewProcessScheduler constructs a ProcessScheduler bound to an
// invoker, bounded to numWorkers concurrent subprocesses.
func NewProcessScheduler(invoker WorkerInvoker, numWorkers int, timeout time.Duration) *ProcessScheduler {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &ProcessScheduler{Invoker: invoker, NumWorkers: numWorkers, Timeout: timeout, tracker: newJobTracker()}
}

// RunBatch dispatches each job to a subprocess via the invoker, bounded
// to NumWorkers concurrent subprocesses, and blocks until all complete.
func (s *ProcessScheduler) RunBatch(jobs []Job) BatchResult {
	s.start = time.Now()

	sem := make(chan struct{}, s.NumWorkers)
	done := make(chan struct{}, len(jobs))

	for _, job := range jobs {
		job := job
		jobID := newJobID(job.FilePath)
		info := s.tracker.register(jobID, job.FilePath, job.Language)

		sem <- struct{}{}
		go func() {
			defer func() { <-sem; done <- struct{}{} }()
			s.runProcessJob(info, job)
		}()
	}

	for range jobs {
		<-done
	}

	return computeBatchResult(len(jobs), s.tracker.snapshot(), s.start, time.Now())
}

func (s *ProcessScheduler) runProcessJob(info *JobInfo, job Job) {
	info.Status = StatusRunning
	info.StartedAt = time.Now()

	raw, err := s.Invoker.Invoke(context.Background(), job.FilePath, job.Language)
	info.ExecutionTime = time.Since(info.StartedAt)
	info.CompletedAt = time.Now()

	if err != nil {
		info.Status = StatusFailed
		info.Error = err.Error()
		return
	}

	var result any
	if uerr := json.Unmarshal(raw, &result); uerr != nil {
		info.Status = StatusFailed
		info.Error = fmt.Sprintf("decoding worker result: %v", uerr)
		return
	}

	info.Status = StatusCompleted
	info.Result = result
}

// Progress reports the tracker's current aggregate state.
func (s *ProcessScheduler) Progress() Progress {
	return s.tracker.progress(s.start)
}
