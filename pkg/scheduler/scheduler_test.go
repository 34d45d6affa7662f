// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOK(filePath, language string) (any, error) {
	return map[string]string{"path": filePath, "lang": language}, nil
}

func parseFails(filePath, language string) (any, error) {
	return nil, errors.New("boom")
}

func TestInlineSchedulerRunsJobsSequentially(t *testing.T) {
	s := NewInlineScheduler()
	result := s.RunBatch([]Job{
		{FilePath: "a.go", Language: "go", ParseFn: parseOK},
		{FilePath: "b.go", Language: "go", ParseFn: parseFails},
	})

	assert.Equal(t, 2, result.TotalJobs)
	assert.Equal(t, 1, result.Completed)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Results, "a.go")
	assert.Contains(t, result.Errors, "b.go")
}

func TestThreadPoolSchedulerRunsJobsConcurrentlyBounded(t *testing.T) {
	s := NewThreadPoolScheduler(2)
	var jobs []Job
	for i := 0; i < 10; i++ {
		jobs = append(jobs, Job{FilePath: "f.go", Language: "go", ParseFn: parseOK})
	}
	result := s.RunBatch(jobs)

	assert.Equal(t, 10, result.TotalJobs)
	assert.Equal(t, 10, result.Completed)
	assert.Equal(t, 0, result.Failed)
}

func TestSchedulerProgressReflectsCompletion(t *testing.T) {
	s := NewInlineScheduler()
	s.RunBatch([]Job{{FilePath: "a.go", Language: "go", ParseFn: parseOK}})

	p := s.Progress()
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, 1, p.Completed)
	assert.Equal(t, float64(100), p.Percentage)
}

type fakeInvoker struct{}

func (fakeInvoker) Invoke(ctx context.Context, filePath, language string) ([]byte, error) {
	return json.Marshal(map[string]string{"path": filePath})
}

func TestProcessSchedulerDecodesInvokerResult(t *testing.T) {
	s := NewProcessScheduler(fakeInvoker{}, 2, time.Second)
	result := s.RunBatch([]Job{{FilePath: "a.py", Language: "python"}})

	require.Equal(t, 1, result.Completed)
	assert.Contains(t, result.Results, "a.py")
}
