// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package resolve implements the passes that run after every file has
// been parsed and its entities registered: cross-file call resolution
// (ResolverPass, generalized from pkg/ingestion/resolver.go's
// CallResolver), return/parameter type linking (TypeRelationPass), and
// decorator/exception linking (ExtendedRelationPass) — both grounded on
// original_source/codebase_rag/parsers/extended_relation_pass.py.
//
// The teacher's CallResolver is Go-only: it keys everything by directory
// path and Go import strings. This package keeps its exact sequential
// (<1000 calls) vs. parallel (>=1000, capped at 8 workers) dispatch and
// its seen-edge dedup, but replaces the package-path maps with
// pkg/entityextract's FunctionRegistry/SimpleNameIndex so the same pass
// resolves Go, TypeScript, and Python calls alike.
package resolve

import (
	"runtime"
	"strings"
	"sync"

	"github.com/kraklabs/cie-graph/pkg/entityextract"
	"github.com/kraklabs/cie-graph/pkg/prescan"
)

// ImportIndex answers "what QN prefix does this file's import alias
// refer to", the cross-language stand-in for the teacher's
// fileImports/importPathToPackagePath maps.
type ImportIndex struct {
	mu sync.RWMutex
	// fileAliases: file path -> alias -> imported module QN (or path, for
	// languages that import by path rather than QN; ResolverPass treats
	// both uniformly since FunctionRegistry is keyed by QN segments).
	fileAliases map[string]map[string]string
	// dotImports: file path -> list of module QNs imported unqualified
	// (Go dot-imports, Python "from x import *").
	dotImports map[string][]string
}

// NewImportIndex constructs an empty index.
func NewImportIndex() *ImportIndex {
	return &ImportIndex{
		fileAliases: make(map[string]map[string]string),
		dotImports:  make(map[string][]string),
	}
}

// AddImport records one file's import: alias is the local name the file
// uses to refer to moduleQN ("" or "." for an unqualified/dot import).
func (idx *ImportIndex) AddImport(filePath, alias, moduleQN string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if alias == "" || alias == "." || alias == "_" {
		if alias != "_" {
			idx.dotImports[filePath] = append(idx.dotImports[filePath], moduleQN)
		}
		return
	}

	if _, ok := idx.fileAliases[filePath]; !ok {
		idx.fileAliases[filePath] = make(map[string]string)
	}
	idx.fileAliases[filePath][alias] = moduleQN
}

func (idx *ImportIndex) aliasTarget(filePath, alias string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	aliases, ok := idx.fileAliases[filePath]
	if !ok {
		return "", false
	}
	target, ok := aliases[alias]
	return target, ok
}

func (idx *ImportIndex) dotImportsFor(filePath string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, len(idx.dotImports[filePath]))
	copy(out, idx.dotImports[filePath])
	return out
}

// ResolverPass resolves UnresolvedCall entries into CallsEdge entries
// using a FunctionRegistry (QN trie), a SimpleNameIndex (bare-name
// lookup for same-file/same-package calls), an ImportIndex (alias
// resolution for qualified calls), and — as the last-resort binding
// source, after the other three have failed to produce a unique match —
// the PreScanner's module/symbol Index.
type ResolverPass struct {
	Functions *entityextract.FunctionRegistry
	Simple    *entityextract.SimpleNameIndex
	Imports   *ImportIndex
	Prescan   *prescan.Index
}

// NewResolverPass constructs a ResolverPass bound to the shared
// registries the pipeline built during extraction. prescanIdx may be
// nil (PreScan disabled, or no repo-wide pass run), in which case the
// pass simply has one fewer binding source to fall back on.
func NewResolverPass(functions *entityextract.FunctionRegistry, simple *entityextract.SimpleNameIndex, imports *ImportIndex, prescanIdx *prescan.Index) *ResolverPass {
	return &ResolverPass{Functions: functions, Simple: simple, Imports: imports, Prescan: prescanIdx}
}

// resolveViaPrescan looks up a bare callee name in the pre-scan's
// symbol-to-module index, the same fallback CallResolver reaches for
// when the registries built during full extraction have nothing:
// pre-scan only records "some module defines this name" without a
// resolved QN, so the guess is usable only when exactly one module
// claims the symbol.
func (p *ResolverPass) resolveViaPrescan(name string) string {
	if p.Prescan == nil {
		return ""
	}
	modules := p.Prescan.SymbolToModules[name]
	if len(modules) != 1 {
		return ""
	}
	for module := range modules {
		return module + "." + name
	}
	return ""
}

// Resolve resolves every unresolved call, returning deduplicated CALLS
// edges. Dispatches sequential vs. worker-pool processing on the same
// 1000-call threshold the teacher's CallResolver uses.
func (p *ResolverPass) Resolve(calls []entityextract.UnresolvedCall) []entityextract.CallsEdge {
	if len(calls) < 1000 {
		return p.resolveSequential(calls)
	}
	return p.resolveParallel(calls)
}

func (p *ResolverPass) resolveSequential(calls []entityextract.UnresolvedCall) []entityextract.CallsEdge {
	seen := make(map[string]bool)
	var resolved []entityextract.CallsEdge
	for _, call := range calls {
		calleeQN := p.resolveCall(call)
		if calleeQN == "" {
			continue
		}
		key := call.CallerQN + "->" + calleeQN
		if seen[key] {
			continue
		}
		seen[key] = true
		resolved = append(resolved, entityextract.CallsEdge{CallerQN: call.CallerQN, CalleeQN: calleeQN})
	}
	return resolved
}

func (p *ResolverPass) resolveParallel(calls []entityextract.UnresolvedCall) []entityextract.CallsEdge {
	numWorkers := runtime.NumCPU()
	if numWorkers > 8 {
		numWorkers = 8
	}

	jobs := make(chan int, len(calls))
	type resolved struct{ callerQN, calleeQN string }
	results := make(chan resolved, len(calls))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				call := calls[i]
				if calleeQN := p.resolveCall(call); calleeQN != "" {
					results <- resolved{callerQN: call.CallerQN, calleeQN: calleeQN}
				}
			}
		}()
	}

	for i := range calls {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	seen := make(map[string]bool)
	var edges []entityextract.CallsEdge
	for r := range results {
		key := r.callerQN + "->" + r.calleeQN
		if seen[key] {
			continue
		}
		seen[key] = true
		edges = append(edges, entityextract.CallsEdge{CallerQN: r.callerQN, CalleeQN: r.calleeQN})
	}
	return edges
}

// resolveCall mirrors CallResolver.resolveCall's two cases (qualified
// call via import alias, unqualified call via dot-import) plus a third
// case the Go-only teacher never needed: a same-file/same-package bare
// name resolved directly through SimpleNameIndex, narrowed by the
// caller's own QN prefix when more than one candidate shares the name.
func (p *ResolverPass) resolveCall(call entityextract.UnresolvedCall) string {
	if strings.Contains(call.CalleeName, ".") {
		lastDot := strings.LastIndex(call.CalleeName, ".")
		alias := call.CalleeName[:lastDot]
		if idx := strings.LastIndex(alias, "."); idx != -1 {
			alias = alias[idx+1:]
		}
		name := call.CalleeName[lastDot+1:]

		if target, ok := p.Imports.aliasTarget(call.FilePath, alias); ok {
			candidates := p.Functions.FindByPrefix(target)
			if qn := matchBySimpleName(candidates, name); qn != "" {
				return qn
			}
		}

		if qns := p.Functions.FindEndingWith(name); len(qns) == 1 {
			return qns[0]
		}
		return p.resolveViaPrescan(name)
	}

	for _, module := range p.Imports.dotImportsFor(call.FilePath) {
		candidates := p.Functions.FindByPrefix(module)
		if qn := matchBySimpleName(candidates, call.CalleeName); qn != "" {
			return qn
		}
	}

	candidates := p.Simple.Lookup(call.CalleeName)
	if qn := narrowByCallerPrefix(candidates, call.CallerQN); qn != "" {
		return qn
	}
	return p.resolveViaPrescan(call.CalleeName)
}

func matchBySimpleName(candidates []string, name string) string {
	for _, qn := range candidates {
		if entityextract.NormalizeSimpleName(qn) == name {
			return qn
		}
	}
	return ""
}

// narrowByCallerPrefix picks the candidate sharing the longest QN prefix
// with the calling function (the earliest such candidate on a tie),
// returning the sole candidate when there is exactly one and "" when
// there are none.
func narrowByCallerPrefix(candidates []string, callerQN string) string {
	if len(candidates) == 1 {
		return candidates[0]
	}
	if len(candidates) == 0 {
		return ""
	}

	callerSegments := splitQNPrefix(callerQN)
	best := ""
	bestShared := -1
	for _, qn := range candidates {
		shared := sharedPrefixLen(callerSegments, splitQNPrefix(qn))
		if shared > bestShared {
			bestShared = shared
			best = qn
		}
	}
	return best
}

func splitQNPrefix(qn string) []string {
	return strings.Split(qn, ".")
}

func sharedPrefixLen(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
