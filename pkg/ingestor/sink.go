// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package ingestor defines the abstract sink the pipeline streams its
// graph into. A production property-graph database (CozoDB, Neo4j, ...)
// is an external collaborator and is never imported here — see
// SPEC_FULL.md §6. This package also ships an in-memory reference Sink
// used by the pipeline's own tests, grounded on the shape of the
// teacher's storage.Backend interface (Query/Execute) adapted to an
// upsert-style node/relationship API.
package ingestor

import (
	"context"
	"fmt"
	"sync"

	"github.com/kraklabs/cie-graph/pkg/graphmodel"
)

// Sink is the boundary every pass writes through. Implementations must
// treat EnsureNode/EnsureRelationship as idempotent upserts keyed by
// (label, qualified name): calling EnsureNode twice for the same key
// merges properties rather than creating a duplicate node, and a
// placeholder node is promoted in place when the real entity arrives.
type Sink interface {
	EnsureNode(ctx context.Context, label graphmodel.Label, qualifiedName, name string, props map[string]any, isPlaceholder bool) error
	EnsureRelationship(ctx context.Context, source graphmodel.Ref, relType graphmodel.RelType, target graphmodel.Ref, props map[string]any) error

	// FetchAll runs a read query against the sink. It exists for
	// collaborators downstream of indexing (a query/QA layer, a report
	// renderer) and is optional: implementations that are write-only may
	// return an error. It is not exercised by the pipeline itself.
	FetchAll(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

type nodeRecord struct {
	label         graphmodel.Label
	qualifiedName string
	name          string
	isPlaceholder bool
	props         map[string]any
}

// MemorySink is a thread-safe, in-memory Sink implementation. It is not a
// production graph database; it exists so this module's own tests (and
// any standalone use of the pipeline) have a working sink without an
// external dependency.
type MemorySink struct {
	mu    sync.Mutex
	nodes map[string]*nodeRecord
	edges map[string]*graphmodel.Relationship
}

// NewMemorySink constructs an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		nodes: make(map[string]*nodeRecord),
		edges: make(map[string]*graphmodel.Relationship),
	}
}

func nodeKey(label graphmodel.Label, qn string) string {
	return string(label) + "|" + qn
}

// EnsureNode inserts or merges a node. Merge semantics: an existing
// non-placeholder node keeps priority — incoming placeholder writes never
// downgrade a concrete node, but a concrete write always promotes an
// existing placeholder (resolver-monotonicity, SPEC_FULL.md §3).
func (m *MemorySink) EnsureNode(_ context.Context, label graphmodel.Label, qualifiedName, name string, props map[string]any, isPlaceholder bool) error {
	if qualifiedName == "" {
		return fmt.Errorf("ingestor: EnsureNode requires a non-empty qualified name (label=%s)", label)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := nodeKey(label, qualifiedName)
	existing, ok := m.nodes[key]
	if !ok {
		merged := make(map[string]any, len(props))
		for k, v := range props {
			merged[k] = v
		}
		m.nodes[key] = &nodeRecord{label: label, qualifiedName: qualifiedName, name: name, isPlaceholder: isPlaceholder, props: merged}
		return nil
	}

	for k, v := range props {
		existing.props[k] = v
	}
	if name != "" {
		existing.name = name
	}
	if !isPlaceholder {
		existing.isPlaceholder = false
	}
	return nil
}

// EnsureRelationship inserts or merges an edge. Relationships are never
// withdrawn once written (monotonicity): a later call with the same key
// only merges properties.
func (m *MemorySink) EnsureRelationship(_ context.Context, source graphmodel.Ref, relType graphmodel.RelType, target graphmodel.Ref, props map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rel := &graphmodel.Relationship{Source: source, Rel: relType, Target: target, Props: props}
	key := rel.Key()
	if existing, ok := m.edges[key]; ok {
		for k, v := range props {
			existing.Props[k] = v
		}
		return nil
	}
	cp := make(map[string]any, len(props))
	for k, v := range props {
		cp[k] = v
	}
	rel.Props = cp
	m.edges[key] = rel
	return nil
}

// FetchAll supports two trivial built-in queries used by tests and the
// CLI summary: "nodes" and "relationships". Any other query returns an
// error — MemorySink is a test double, not a query engine.
func (m *MemorySink) FetchAll(_ context.Context, query string, _ map[string]any) ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch query {
	case "nodes":
		out := make([]map[string]any, 0, len(m.nodes))
		for _, n := range m.nodes {
			out = append(out, map[string]any{
				"label":          string(n.label),
				"qualified_name": n.qualifiedName,
				"name":           n.name,
				"is_placeholder": n.isPlaceholder,
			})
		}
		return out, nil
	case "relationships":
		out := make([]map[string]any, 0, len(m.edges))
		for _, e := range m.edges {
			out = append(out, map[string]any{
				"source": e.Source.QualifiedName,
				"type":   string(e.Rel),
				"target": e.Target.QualifiedName,
			})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("ingestor: MemorySink does not support query %q", query)
	}
}

// NodeCount returns the number of distinct (label, qualified name) nodes
// currently stored. Primarily used by tests to assert QN-uniqueness
// (duplicate EnsureNode calls must not grow the count).
func (m *MemorySink) NodeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes)
}

// EdgeCount returns the number of distinct edges currently stored.
func (m *MemorySink) EdgeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.edges)
}

// HasPlaceholder reports whether the node for (label, qn) exists and is
// still a placeholder. Used to assert resolver-monotonicity in tests.
func (m *MemorySink) HasPlaceholder(label graphmodel.Label, qn string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[nodeKey(label, qn)]
	return ok && n.isPlaceholder
}
