// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-graph/pkg/entityextract"
	"github.com/kraklabs/cie-graph/pkg/graphmodel"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
)

func TestTypeRelationPassIngestsReturnAndParameterTypes(t *testing.T) {
	sink := ingestor.NewMemorySink()
	pass := NewTypeRelationPass(sink)

	fn := entityextract.FunctionEntity{
		QualifiedName: "myproj.pkg.Handler",
		Name:          "Handler",
		ReturnType:    "error",
		Params: []entityextract.ParamInfo{
			{Name: "ctx", Type: "context.Context"},
			{Name: "untyped", Type: ""},
		},
	}

	err := pass.Process(context.Background(), fn, graphmodel.LabelFunction)
	require.NoError(t, err)

	rows, err := sink.FetchAll(context.Background(), "relationships", nil)
	require.NoError(t, err)

	var sawReturns, sawParam bool
	for _, r := range rows {
		if r["type"] == string(graphmodel.RelReturnsType) {
			sawReturns = true
		}
		if r["type"] == string(graphmodel.RelParameterType) {
			sawParam = true
		}
	}
	assert.True(t, sawReturns, "expected RETURNS_TYPE edge")
	assert.True(t, sawParam, "expected PARAMETER_TYPE edge")
}

func TestTypeRelationPassSkipsBlankTypes(t *testing.T) {
	sink := ingestor.NewMemorySink()
	pass := NewTypeRelationPass(sink)

	fn := entityextract.FunctionEntity{QualifiedName: "myproj.pkg.NoTypes", Name: "NoTypes"}
	err := pass.Process(context.Background(), fn, graphmodel.LabelFunction)
	require.NoError(t, err)

	rows, err := sink.FetchAll(context.Background(), "relationships", nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
