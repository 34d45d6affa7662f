// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ParseResultMetadata accompanies each cached parse result. StructureSignature
// is optional — set only by languages whose EntityExtractor computes one
// (used to short-circuit the resolver passes when only whitespace/comments
// changed in an otherwise-reparsed file).
type ParseResultMetadata struct {
	CachedAt            time.Time `json:"cached_at"`
	Language            string    `json:"language"`
	ResultSize          int       `json:"result_size"`
	StructureSignature  string    `json:"structure_signature,omitempty"`
}

// ParseResultCache persists one JSON payload per source file under
// <dir>/parse_results/<safe-name>.json, plus a metadata.json index, and
// composes a FileHashCache to invalidate entries whose file content
// changed. Ported from original_source's ParseResultCache.
type ParseResultCache struct {
	dir       string
	hashCache *FileHashCache
	ttl       time.Duration // 0 = no expiry

	mu       sync.Mutex
	metadata map[string]ParseResultMetadata
}

// NewParseResultCache opens (or creates) a parse-result cache rooted at
// dir, with the given TTL (0 disables expiry).
func NewParseResultCache(dir string, ttl time.Duration) (*ParseResultCache, error) {
	resultsDir := filepath.Join(dir, "parse_results")
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create parse result dir %s: %w", resultsDir, err)
	}
	hashCache, err := NewFileHashCache(filepath.Join(dir, "file_hashes.json"))
	if err != nil {
		return nil, err
	}
	c := &ParseResultCache{
		dir:       dir,
		hashCache: hashCache,
		ttl:       ttl,
		metadata:  make(map[string]ParseResultMetadata),
	}
	if err := c.loadMetadata(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ParseResultCache) metadataPath() string {
	return filepath.Join(c.dir, "parse_results", "metadata.json")
}

func (c *ParseResultCache) loadMetadata() error {
	data, err := os.ReadFile(c.metadataPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cache: read parse result metadata: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &c.metadata)
}

func (c *ParseResultCache) saveMetadataLocked() error {
	data, err := json.MarshalIndent(c.metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: marshal parse result metadata: %w", err)
	}
	tmp := c.metadataPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cache: write temp parse result metadata: %w", err)
	}
	return os.Rename(tmp, c.metadataPath())
}

var safeNameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "")

func safeCacheFileName(filePath string) string {
	return safeNameReplacer.Replace(filePath) + ".json"
}

func (c *ParseResultCache) resultPath(filePath string) string {
	return filepath.Join(c.dir, "parse_results", safeCacheFileName(filePath))
}

// Get returns the cached result for filePath, or ok=false when the file
// changed, the entry expired, or no entry exists. Check order mirrors
// the original: hash-changed, then expired, then missing-on-disk.
func (c *ParseResultCache) Get(filePath string) (json.RawMessage, ParseResultMetadata, bool, error) {
	changed, err := c.hashCache.HasChanged(filePath)
	if err != nil {
		return nil, ParseResultMetadata{}, false, err
	}
	if changed {
		return nil, ParseResultMetadata{}, false, nil
	}

	c.mu.Lock()
	meta, ok := c.metadata[filePath]
	c.mu.Unlock()
	if !ok {
		return nil, ParseResultMetadata{}, false, nil
	}
	if c.ttl > 0 && time.Since(meta.CachedAt) > c.ttl {
		return nil, ParseResultMetadata{}, false, nil
	}

	data, err := os.ReadFile(c.resultPath(filePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ParseResultMetadata{}, false, nil
		}
		return nil, ParseResultMetadata{}, false, fmt.Errorf("cache: read parse result for %s: %w", filePath, err)
	}
	return json.RawMessage(data), meta, true, nil
}

// Put stores a parse result and updates the file hash + metadata.
func (c *ParseResultCache) Put(filePath string, result json.RawMessage, language, structureSignature string) error {
	tmp := c.resultPath(filePath) + ".tmp"
	if err := os.WriteFile(tmp, result, 0o644); err != nil {
		return fmt.Errorf("cache: write temp parse result for %s: %w", filePath, err)
	}
	if err := os.Rename(tmp, c.resultPath(filePath)); err != nil {
		return fmt.Errorf("cache: rename parse result for %s: %w", filePath, err)
	}
	if err := c.hashCache.UpdateHash(filePath); err != nil {
		return err
	}
	if err := c.hashCache.Save(); err != nil {
		return err
	}

	c.mu.Lock()
	c.metadata[filePath] = ParseResultMetadata{
		CachedAt:           time.Now(),
		Language:           language,
		ResultSize:         len(result),
		StructureSignature: structureSignature,
	}
	err := c.saveMetadataLocked()
	c.mu.Unlock()
	return err
}

// Invalidate drops the cached result and recorded hash for filePath.
func (c *ParseResultCache) Invalidate(filePath string) error {
	c.mu.Lock()
	delete(c.metadata, filePath)
	err := c.saveMetadataLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}
	_ = os.Remove(c.resultPath(filePath))
	c.hashCache.Delete(filePath)
	return c.hashCache.Save()
}

// GetStructureSignature returns the stored structure signature for
// filePath, if any was recorded.
func (c *ParseResultCache) GetStructureSignature(filePath string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	meta, ok := c.metadata[filePath]
	if !ok || meta.StructureSignature == "" {
		return "", false
	}
	return meta.StructureSignature, true
}

// Delete removes a single hash record (used by Invalidate); exported on
// FileHashCache since ParseResultCache composes it.
func (c *FileHashCache) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.hash, path)
	c.dirty = true
}
