// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package graphmodel defines the labeled-property-graph data model shared
// by every pass of the indexing pipeline: entity labels, the
// qualified-name (QN) convention that keys them, relationship types, and
// the helpers used to build both.
package graphmodel

import "strings"

// Label identifies the kind of node an Entity represents.
type Label string

const (
	LabelProject         Label = "Project"
	LabelFolder          Label = "Folder"
	LabelFile            Label = "File"
	LabelModule          Label = "Module"
	LabelClass           Label = "Class"
	LabelInterface       Label = "Interface"
	LabelFunction        Label = "Function"
	LabelMethod          Label = "Method"
	LabelType            Label = "Type"
	LabelEndpoint        Label = "Endpoint"
	LabelHook            Label = "Hook"
	LabelBlock           Label = "Block"
	LabelAsset           Label = "Asset"
	LabelTailwindUtility Label = "TailwindUtility"
)

// Entity is a single node in the code graph. Every entity is identified
// by (Label, QualifiedName) — this pair is the primary key enforced by
// the ingestor sink (see pkg/ingestor): a second EnsureNode call for the
// same (Label, QualifiedName) merges into the existing node rather than
// creating a duplicate.
type Entity struct {
	Label         Label
	QualifiedName string
	Name          string
	IsPlaceholder bool
	Props         map[string]any
}

// NewEntity builds an Entity with an initialized property bag.
func NewEntity(label Label, qualifiedName, name string) *Entity {
	return &Entity{
		Label:         label,
		QualifiedName: qualifiedName,
		Name:          name,
		Props:         make(map[string]any),
	}
}

// WithProp sets a property and returns the entity for chaining.
func (e *Entity) WithProp(key string, value any) *Entity {
	e.Props[key] = value
	return e
}

// MarkPlaceholder flags the entity as a placeholder created by a resolver
// pass ahead of the real definition being ingested. Placeholders are
// merged, never duplicated, when the real entity later arrives with the
// same (Label, QualifiedName) — see the resolver-monotonicity invariant.
func (e *Entity) MarkPlaceholder() *Entity {
	e.IsPlaceholder = true
	return e
}

// BuildModuleQN builds the qualified name of a module from a project name
// and a dot-joined list of path segments (directories plus the file stem),
// e.g. BuildModuleQN("myproj", []string{"internal", "server"}) ->
// "myproj.internal.server".
func BuildModuleQN(project string, segments []string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, project)
	for _, s := range segments {
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}

// BuildMemberQN appends a member name (function, class, field, ...) to an
// owning qualified name, e.g. BuildMemberQN("myproj.internal.server",
// "Start") -> "myproj.internal.server.Start".
func BuildMemberQN(ownerQN, member string) string {
	if ownerQN == "" {
		return member
	}
	return ownerQN + "." + member
}

// SplitQN splits a qualified name into its dot-separated segments.
func SplitQN(qn string) []string {
	if qn == "" {
		return nil
	}
	return strings.Split(qn, ".")
}
