// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package orchestrator

import (
	"sync"
	"time"

	"github.com/kraklabs/cie-graph/pkg/astcache"
	"github.com/kraklabs/cie-graph/pkg/entityextract"
	"github.com/kraklabs/cie-graph/pkg/resolve"
	"github.com/kraklabs/cie-graph/pkg/typeinfer"
)

// RunContext is the set of shared, cross-file registries every pass
// reads or writes during one indexing run — split out of Orchestrator
// itself so passes can take a *RunContext instead of the whole
// Orchestrator (narrower dependency, easier to unit test in isolation).
type RunContext struct {
	Functions *entityextract.FunctionRegistry
	Simple    *entityextract.SimpleNameIndex
	Files     *entityextract.ModuleFilePathMap
	Imports   *resolve.ImportIndex
	AST       *astcache.Driver

	mu      sync.Mutex
	engines map[string]*typeinfer.Engine

	// ImportMapping feeds pkg/crossfile.NewResolver once parsing
	// completes: module QN -> the module QNs it imports.
	ImportMapping map[string][]string
}

// NewRunContext constructs an empty RunContext with an AST cache sized
// for a repository-scale run (cacheTTL 0 disables expiry, matching
// Config.CacheTTLSeconds == 0).
func NewRunContext(cacheTTL time.Duration) *RunContext {
	return &RunContext{
		Functions:     entityextract.NewFunctionRegistry(),
		Simple:        entityextract.NewSimpleNameIndex(),
		Files:         entityextract.NewModuleFilePathMap(),
		Imports:       resolve.NewImportIndex(),
		AST:           astcache.NewDriver(4096, cacheTTL),
		engines:       make(map[string]*typeinfer.Engine),
		ImportMapping: make(map[string][]string),
	}
}

// EngineFor returns the shared typeinfer.Engine for language, creating
// one (pre-seeded with builtins) on first use. Engines are shared across
// files of the same language so RegisterFunction calls accumulate a
// repository-wide signature registry rather than starting over per file.
func (rc *RunContext) EngineFor(language string) *typeinfer.Engine {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	eng, ok := rc.engines[language]
	if !ok {
		eng = typeinfer.NewEngine(language)
		rc.engines[language] = eng
	}
	return eng
}

// RecordImport threads one file's import edges into both the
// ImportIndex (for call resolution) and the module-level ImportMapping
// (for pkg/crossfile's dependency graph).
func (rc *RunContext) RecordImport(filePath, moduleQN, alias, targetModuleQN string) {
	rc.Imports.AddImport(filePath, alias, targetModuleQN)

	rc.mu.Lock()
	defer rc.mu.Unlock()
	for _, existing := range rc.ImportMapping[moduleQN] {
		if existing == targetModuleQN {
			return
		}
	}
	rc.ImportMapping[moduleQN] = append(rc.ImportMapping[moduleQN], targetModuleQN)
}
