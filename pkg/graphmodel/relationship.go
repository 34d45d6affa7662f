// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package graphmodel

// RelType identifies the kind of edge a Relationship represents.
type RelType string

const (
	RelContains          RelType = "CONTAINS"
	RelImports           RelType = "IMPORTS"
	RelCalls             RelType = "CALLS"
	RelInherits          RelType = "INHERITS"
	RelImplements        RelType = "IMPLEMENTS"
	RelReturnsType       RelType = "RETURNS_TYPE"
	RelParameterType     RelType = "PARAMETER_TYPE"
	RelThrows            RelType = "THROWS"
	RelCaughtBy          RelType = "CAUGHT_BY"
	RelDecorates         RelType = "DECORATES"
	RelAnnotates         RelType = "ANNOTATES"
	RelHasEndpoint       RelType = "HAS_ENDPOINT"
	RelRoutesToController RelType = "ROUTES_TO_CONTROLLER"
	RelRoutesToAction    RelType = "ROUTES_TO_ACTION"
	RelRequestsEndpoint  RelType = "REQUESTS_ENDPOINT"
	RelUsesMiddleware    RelType = "USES_MIDDLEWARE"
	RelRegistersService  RelType = "REGISTERS_SERVICE"
	RelProvidesService   RelType = "PROVIDES_SERVICE"
	RelRendersView       RelType = "RENDERS_VIEW"
	RelEmbeds            RelType = "EMBEDS"
	RelUsesHandler       RelType = "USES_HANDLER"
	RelUsesUtility       RelType = "USES_UTILITY"
	RelUsesAsset         RelType = "USES_ASSET"
	RelHooks             RelType = "HOOKS"
	RelRegistersBlock    RelType = "REGISTERS_BLOCK"
	RelEloquentRelation  RelType = "ELOQUENT_RELATION"
)

// Ref is a minimal pointer to an already-known or not-yet-known entity,
// sufficient to key an EnsureRelationship call without re-sending the
// full entity payload. It doubles as the sink boundary reference form
// settled by SPEC_FULL.md §9 open question 1: (label, key property, key
// value), specialized here to the QN as the sole key property.
type Ref struct {
	Label         Label
	QualifiedName string
}

// NewRef builds a Ref from a label and a qualified name.
func NewRef(label Label, qn string) Ref { return Ref{Label: label, QualifiedName: qn} }

// Relationship is a single edge in the code graph.
type Relationship struct {
	Source Ref
	Rel    RelType
	Target Ref
	Props  map[string]any
}

// NewRelationship builds a Relationship with an initialized property bag.
func NewRelationship(source Ref, rel RelType, target Ref) *Relationship {
	return &Relationship{Source: source, Rel: rel, Target: target, Props: make(map[string]any)}
}

// WithProp sets a property and returns the relationship for chaining.
func (r *Relationship) WithProp(key string, value any) *Relationship {
	r.Props[key] = value
	return r
}

// Key returns a stable string uniquely identifying this edge's identity
// (source, type, target). MemorySink stores edges under this key, so
// ensuring the same edge again lands on the existing entry instead of
// adding a duplicate, which is what makes repeated pass execution
// idempotent (see SPEC_FULL.md Testable Property 5).
func (r *Relationship) Key() string {
	return string(r.Source.Label) + "|" + r.Source.QualifiedName + "->" +
		string(r.Rel) + "->" +
		string(r.Target.Label) + "|" + r.Target.QualifiedName
}
