// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package crossfile ports
// original_source/codebase_rag/parsers/cross_file_resolver.py's
// CrossFileResolver: import-graph analytics computed once after every
// file's imports have been registered. The Python original builds
// dependency/reverse-dependency sets from a flat import_mapping and
// reports total edges plus the top-10 importers and dependents; this
// port keeps that shape and adds cycle detection (SPEC_FULL.md's §9
// "Cyclic references" requirement, absent from the original) since the
// module-QN graph this pass already holds is exactly what cycle
// detection needs.
package crossfile

import "sort"

// Stats mirrors CrossFileStats: aggregate counts plus the top-10
// modules by import count (importers) and by dependent count
// (dependents).
type Stats struct {
	TotalModules  int
	TotalEdges    int
	TopImporters  []ModuleCount
	TopDependents []ModuleCount
	Cycles        [][]string
}

// ModuleCount pairs a module QN with an edge count.
type ModuleCount struct {
	ModuleQN string
	Count    int
}

// Resolver builds dependency/reverse-dependency sets from a module's
// import graph and reports aggregate stats.
type Resolver struct {
	dependencies map[string]map[string]struct{} // module -> modules it imports
	reverseDeps  map[string]map[string]struct{} // module -> modules that import it
}

// NewResolver constructs a Resolver from an import mapping: module QN ->
// set of module QNs it imports, the same shape as the Python original's
// import_mapping parameter.
func NewResolver(importMapping map[string][]string) *Resolver {
	r := &Resolver{
		dependencies: make(map[string]map[string]struct{}),
		reverseDeps:  make(map[string]map[string]struct{}),
	}
	for module, imports := range importMapping {
		if _, ok := r.dependencies[module]; !ok {
			r.dependencies[module] = make(map[string]struct{})
		}
		for _, target := range imports {
			r.dependencies[module][target] = struct{}{}
			if _, ok := r.reverseDeps[target]; !ok {
				r.reverseDeps[target] = make(map[string]struct{})
			}
			r.reverseDeps[target][module] = struct{}{}
		}
	}
	return r
}

// BuildIndex computes total_edges/total_modules and the top-10 modules
// by import count and by dependent count, mirroring
// CrossFileResolver.build_index.
func (r *Resolver) BuildIndex() Stats {
	modules := make(map[string]struct{})
	totalEdges := 0
	for module, deps := range r.dependencies {
		modules[module] = struct{}{}
		totalEdges += len(deps)
		for dep := range deps {
			modules[dep] = struct{}{}
		}
	}
	for module := range r.reverseDeps {
		modules[module] = struct{}{}
	}

	return Stats{
		TotalModules:  len(modules),
		TotalEdges:    totalEdges,
		TopImporters:  r.topN(r.dependencies, 10),
		TopDependents: r.topN(r.reverseDeps, 10),
		Cycles:        r.detectCycles(),
	}
}

func (r *Resolver) topN(sets map[string]map[string]struct{}, n int) []ModuleCount {
	counts := make([]ModuleCount, 0, len(sets))
	for module, set := range sets {
		counts = append(counts, ModuleCount{ModuleQN: module, Count: len(set)})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].ModuleQN < counts[j].ModuleQN
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// detectCycles finds cycles in the import graph via DFS with a
// recursion-stack, reporting one cycle per back edge as the ordered module
// QNs that form it (first module repeated at the end omitted). A cycle
// that only closes through an already-finished module is not reported
// separately, so not every simple cycle appears in the result. This has no
// equivalent in the Python original; it's a SPEC_FULL.md addition
// answering spec.md §9's open question on cyclic references.
func (r *Resolver) detectCycles() [][]string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var stack []string
	var cycles [][]string

	var visit func(module string)
	visit = func(module string) {
		color[module] = gray
		stack = append(stack, module)

		deps := make([]string, 0, len(r.dependencies[module]))
		for dep := range r.dependencies[module] {
			deps = append(deps, dep)
		}
		sort.Strings(deps)

		for _, dep := range deps {
			switch color[dep] {
			case white:
				visit(dep)
			case gray:
				cycles = append(cycles, cyclePath(stack, dep))
			}
		}

		stack = stack[:len(stack)-1]
		color[module] = black
	}

	modules := make([]string, 0, len(r.dependencies))
	for module := range r.dependencies {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	for _, module := range modules {
		if color[module] == white {
			visit(module)
		}
	}
	return cycles
}

func cyclePath(stack []string, closingModule string) []string {
	for i, m := range stack {
		if m == closingModule {
			path := make([]string, len(stack)-i)
			copy(path, stack[i:])
			return path
		}
	}
	return nil
}
