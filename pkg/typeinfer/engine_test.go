// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package typeinfer

import (
	"context"
	"testing"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-graph/pkg/astcache"
)

func TestInferTypeTriesStrategiesInOrder(t *testing.T) {
	engine := NewEngine("go")
	ctx := NewContext("go", "sample.go")
	ctx.Source = []byte("int")

	driver := astcache.NewDriver(4, time.Minute)
	tree, err := driver.Parse(context.Background(), "sample.go", astcache.LangGo, []byte("int"))
	require.NoError(t, err)

	engine.InferFromAnnotation = func(node *sitter.Node, c *Context) *Result {
		return &Result{TypeString: "int", Confidence: 1.0, Source: SourceAnnotation, Language: "go"}
	}

	result := engine.InferType(tree.Root, ctx, DefaultStrategies)
	require.NotNil(t, result)
	assert.Equal(t, "int", result.TypeString)
	assert.Equal(t, SourceAnnotation, result.Source, "annotation strategy must win over registry/builtin when present")
}

func TestInferTypeFallsBackToRegistryBuiltin(t *testing.T) {
	engine := NewEngine("go")
	ctx := NewContext("go", "sample.go")
	ctx.Source = []byte("int")

	driver := astcache.NewDriver(4, time.Minute)
	tree, err := driver.Parse(context.Background(), "sample.go", astcache.LangGo, []byte("int"))
	require.NoError(t, err)

	result := engine.InferType(tree.Root, ctx, []Strategy{StrategyRegistry})
	require.NotNil(t, result)
	assert.Equal(t, "int", result.TypeString)
	assert.Equal(t, SourceBuiltin, result.Source)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestInferTypeReturnsNilWhenNoStrategyMatches(t *testing.T) {
	engine := NewEngine("go")
	ctx := NewContext("go", "sample.go")
	ctx.Source = []byte("NotAKnownType")

	driver := astcache.NewDriver(4, time.Minute)
	tree, err := driver.Parse(context.Background(), "sample.go", astcache.LangGo, []byte("NotAKnownType"))
	require.NoError(t, err)

	result := engine.InferType(tree.Root, ctx, []Strategy{StrategyRegistry})
	assert.Nil(t, result)
}

func TestContextScopeAndImportResolution(t *testing.T) {
	ctx := NewContext("python", "sample.py")
	ctx.AddFromImport("os.path", []string{"join", "exists"})
	ctx.AddImport("np", "numpy")

	module, ok := ctx.ResolveImport("join")
	require.True(t, ok)
	assert.Equal(t, "os.path.join", module)

	module, ok = ctx.ResolveImport("np")
	require.True(t, ok)
	assert.Equal(t, "numpy", module)

	ctx.EnterScope("class", "Server")
	ctx.EnterScope("function", "start")
	ctx.AddVariable(VariableInfo{Name: "count", InitialValue: "0"})
	v, ok := ctx.GetVariable("count")
	require.True(t, ok)
	assert.Equal(t, "0", v.InitialValue)

	ctx.ExitScope()
	assert.Equal(t, "Server", ctx.CurrentClass())
	assert.Empty(t, ctx.CurrentFunction())

	ctx.ExitScope()
	assert.Empty(t, ctx.CurrentClass())
}
