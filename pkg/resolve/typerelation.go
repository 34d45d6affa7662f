// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package resolve

import (
	"context"

	"github.com/kraklabs/cie-graph/pkg/entityextract"
	"github.com/kraklabs/cie-graph/pkg/graphmodel"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
)

// TypeRelationPass ingests RETURNS_TYPE and PARAMETER_TYPE edges from
// already-extracted function signatures, grounded on
// extended_relation_pass.py's _ingest_type_relations. Unlike the Python
// original this needs no separate EnhancedFunctionExtractor walk: Go's
// entityextract.FunctionEntity already carries ReturnType and
// Params[].Type from the initial parse, so this pass only has to ensure
// Type nodes and wire the edges. It does not consult pkg/typeinfer: a
// type the extractor left blank stays blank and gets no edge, and every
// linked type name gets a placeholder Type node whether or not a class
// of that name is declared.
type TypeRelationPass struct {
	Sink ingestor.Sink
}

// NewTypeRelationPass constructs a TypeRelationPass bound to a sink.
func NewTypeRelationPass(sink ingestor.Sink) *TypeRelationPass {
	return &TypeRelationPass{Sink: sink}
}

// Process ingests the type relations for one function/method entity.
// label distinguishes a Function node from a Method node the same way
// metadata.label does in the Python original.
func (p *TypeRelationPass) Process(ctx context.Context, fn entityextract.FunctionEntity, label graphmodel.Label) error {
	if fn.ReturnType != "" {
		if err := p.ensureTypeNode(ctx, fn.ReturnType); err != nil {
			return err
		}
		if err := p.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(label, fn.QualifiedName), graphmodel.RelReturnsType,
			graphmodel.NewRef(graphmodel.LabelType, fn.ReturnType), nil); err != nil {
			return err
		}
	}

	for _, param := range fn.Params {
		if param.Type == "" {
			continue
		}
		if err := p.ensureTypeNode(ctx, param.Type); err != nil {
			return err
		}
		if err := p.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(label, fn.QualifiedName), graphmodel.RelParameterType,
			graphmodel.NewRef(graphmodel.LabelType, param.Type),
			map[string]any{"name": param.Name}); err != nil {
			return err
		}
	}

	return nil
}

func (p *TypeRelationPass) ensureTypeNode(ctx context.Context, typeName string) error {
	return p.Sink.EnsureNode(ctx, graphmodel.LabelType, typeName, typeName, nil, true)
}
