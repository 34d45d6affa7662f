// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package entityextract

import (
	"strings"
	"sync"

	"github.com/kraklabs/cie-graph/pkg/graphmodel"
)

type trieNode struct {
	children map[string]*trieNode
	qns      []string // QNs whose segment path ends exactly here
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}

// FunctionRegistry indexes every known function/method QN in a radix
// trie over dot-separated QN segments, supporting prefix lookup and
// FindEndingWith(simpleName) in close to O(k) where k is the number of
// QNs sharing that trailing segment — generalized from the teacher's
// CallResolver package-path index (resolver.go) to a full cross-language
// QN trie.
type FunctionRegistry struct {
	mu   sync.RWMutex
	root *trieNode
	// reverse index: trailing segment -> QNs ending with it
	byLastSegment map[string][]string
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{root: newTrieNode(), byLastSegment: make(map[string][]string)}
}

// Add registers a function/method QN.
func (r *FunctionRegistry) Add(qn string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	segments := graphmodel.SplitQN(qn)
	if len(segments) == 0 {
		return
	}
	node := r.root
	for _, seg := range segments {
		child, ok := node.children[seg]
		if !ok {
			child = newTrieNode()
			node.children[seg] = child
		}
		node = child
	}
	node.qns = append(node.qns, qn)

	last := segments[len(segments)-1]
	r.byLastSegment[last] = append(r.byLastSegment[last], qn)
}

// Has reports whether qn is registered exactly.
func (r *FunctionRegistry) Has(qn string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	node := r.root
	for _, seg := range graphmodel.SplitQN(qn) {
		child, ok := node.children[seg]
		if !ok {
			return false
		}
		node = child
	}
	return len(node.qns) > 0
}

// FindEndingWith returns every registered QN whose final dotted segment
// equals simpleName, in insertion order.
func (r *FunctionRegistry) FindEndingWith(simpleName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := r.byLastSegment[simpleName]
	out := make([]string, len(matches))
	copy(out, matches)
	return out
}

// FindByPrefix returns every registered QN that starts with prefix
// (dot-boundary aware: "a.b" matches "a.b.c" but not "a.bc").
func (r *FunctionRegistry) FindByPrefix(prefix string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node := r.root
	for _, seg := range graphmodel.SplitQN(prefix) {
		child, ok := node.children[seg]
		if !ok {
			return nil
		}
		node = child
	}
	var out []string
	collect(node, &out)
	return out
}

func collect(node *trieNode, out *[]string) {
	*out = append(*out, node.qns...)
	for _, child := range node.children {
		collect(child, out)
	}
}

// SimpleNameIndex maps a bare identifier (no package/module qualification)
// to every QN sharing that name, preserving insertion order so ties
// resolve deterministically (first-seen wins unless a caller narrows the
// candidate set further, e.g. by QN prefix).
type SimpleNameIndex struct {
	mu    sync.RWMutex
	index map[string][]string
}

// NewSimpleNameIndex constructs an empty index.
func NewSimpleNameIndex() *SimpleNameIndex {
	return &SimpleNameIndex{index: make(map[string][]string)}
}

// Add records that qn's simple (leaf) name maps to qn.
func (s *SimpleNameIndex) Add(qn string) {
	segments := graphmodel.SplitQN(qn)
	if len(segments) == 0 {
		return
	}
	simple := segments[len(segments)-1]

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.index[simple] {
		if existing == qn {
			return
		}
	}
	s.index[simple] = append(s.index[simple], qn)
}

// Lookup returns every QN registered under simpleName.
func (s *SimpleNameIndex) Lookup(simpleName string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := s.index[simpleName]
	out := make([]string, len(matches))
	copy(out, matches)
	return out
}

// ModuleFilePathMap is the bijective module-QN <-> file-path mapping
// spec.md's module/file invariant requires.
type ModuleFilePathMap struct {
	mu          sync.RWMutex
	qnToPath    map[string]string
	pathToQN    map[string]string
}

// NewModuleFilePathMap constructs an empty map.
func NewModuleFilePathMap() *ModuleFilePathMap {
	return &ModuleFilePathMap{qnToPath: make(map[string]string), pathToQN: make(map[string]string)}
}

// Set records the module QN <-> file path pair, overwriting any prior
// mapping for either side (a file is re-parsed in place; a module QN is
// never shared by two files).
func (m *ModuleFilePathMap) Set(moduleQN, filePath string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.qnToPath[moduleQN] = filePath
	m.pathToQN[filePath] = moduleQN
}

// PathFor returns the file path for a module QN.
func (m *ModuleFilePathMap) PathFor(moduleQN string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.qnToPath[moduleQN]
	return p, ok
}

// QNFor returns the module QN for a file path.
func (m *ModuleFilePathMap) QNFor(filePath string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qn, ok := m.pathToQN[filePath]
	return qn, ok
}

// IsBijective reports whether every recorded mapping round-trips cleanly.
func (m *ModuleFilePathMap) IsBijective() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.qnToPath) != len(m.pathToQN) {
		return false
	}
	for qn, path := range m.qnToPath {
		if m.pathToQN[path] != qn {
			return false
		}
	}
	return true
}

// NormalizeSimpleName strips a receiver prefix from a Go-style method
// name like "(*Server).Start" down to "Start", used when indexing methods
// by simple name alongside plain functions.
func NormalizeSimpleName(name string) string {
	if idx := strings.LastIndex(name, "."); idx != -1 {
		return name[idx+1:]
	}
	return name
}
