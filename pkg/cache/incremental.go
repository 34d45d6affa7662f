// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cache

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// IncrementalStats reports aggregate cache activity for one pipeline run.
type IncrementalStats struct {
	FilesChecked int
	FilesReused  int
	FilesParsed  int
}

// Incremental composes FileHashCache, ParseResultCache, and GitDeltaCache
// into the facade the orchestrator calls per file, ported from
// original_source's IncrementalParsingCache.
type Incremental struct {
	Parse    *ParseResultCache
	GitDelta *GitDeltaCache

	stats IncrementalStats
}

// NewIncremental opens the full incremental-cache trio rooted at dir.
func NewIncremental(dir string, ttl time.Duration) (*Incremental, error) {
	parse, err := NewParseResultCache(dir, ttl)
	if err != nil {
		return nil, err
	}
	gitDelta, err := NewGitDeltaCache(filepath.Join(dir, "git_delta.json"))
	if err != nil {
		return nil, err
	}
	return &Incremental{Parse: parse, GitDelta: gitDelta}, nil
}

// NeedsParsing reports whether filePath must be (re-)parsed: true when no
// usable cache entry exists (changed content, expired entry, or a cache
// miss).
func (c *Incremental) NeedsParsing(filePath string) (bool, error) {
	c.stats.FilesChecked++
	_, _, ok, err := c.Parse.Get(filePath)
	if err != nil {
		return true, err
	}
	if ok {
		c.stats.FilesReused++
		return false, nil
	}
	return true, nil
}

// GetResult unmarshals the cached result for filePath into dst, returning
// ok=false if nothing usable is cached.
func (c *Incremental) GetResult(filePath string, dst any) (bool, error) {
	raw, _, ok, err := c.Parse.Get(filePath)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache: unmarshal cached parse result for %s: %w", filePath, err)
	}
	return true, nil
}

// CacheResult marshals and stores result for filePath.
func (c *Incremental) CacheResult(filePath, language, structureSignature string, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cache: marshal parse result for %s: %w", filePath, err)
	}
	c.stats.FilesParsed++
	return c.Parse.Put(filePath, data, language, structureSignature)
}

// Invalidate drops the cached entry for filePath.
func (c *Incremental) Invalidate(filePath string) error {
	return c.Parse.Invalidate(filePath)
}

// Statistics returns a snapshot of activity counters for this run.
func (c *Incremental) Statistics() IncrementalStats {
	return c.stats
}
