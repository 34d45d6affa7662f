// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-graph/pkg/entityextract"
	"github.com/kraklabs/cie-graph/pkg/prescan"
)

func newIndex() (*entityextract.FunctionRegistry, *entityextract.SimpleNameIndex, *ImportIndex) {
	return entityextract.NewFunctionRegistry(), entityextract.NewSimpleNameIndex(), NewImportIndex()
}

func TestResolveQualifiedCallViaImportAlias(t *testing.T) {
	functions, simple, imports := newIndex()
	functions.Add("myproj.pkg.handlers.Serve")
	simple.Add("myproj.pkg.handlers.Serve")
	imports.AddImport("main.go", "handlers", "myproj.pkg.handlers")

	pass := NewResolverPass(functions, simple, imports, nil)
	edges := pass.Resolve([]entityextract.UnresolvedCall{
		{CallerQN: "myproj.main.Run", CalleeName: "handlers.Serve", FilePath: "main.go"},
	})

	require.Len(t, edges, 1)
	assert.Equal(t, "myproj.pkg.handlers.Serve", edges[0].CalleeQN)
}

func TestResolveUnqualifiedCallViaDotImport(t *testing.T) {
	functions, simple, imports := newIndex()
	functions.Add("myproj.pkg.util.Helper")
	imports.AddImport("main.go", ".", "myproj.pkg.util")

	pass := NewResolverPass(functions, simple, imports, nil)
	edges := pass.Resolve([]entityextract.UnresolvedCall{
		{CallerQN: "myproj.main.Run", CalleeName: "Helper", FilePath: "main.go"},
	})

	require.Len(t, edges, 1)
	assert.Equal(t, "myproj.pkg.util.Helper", edges[0].CalleeQN)
}

func TestResolveUnqualifiedCallNarrowsBySharedCallerPrefix(t *testing.T) {
	functions, simple, imports := newIndex()
	simple.Add("myproj.pkg.a.Run")
	simple.Add("myproj.pkg.b.Run")

	pass := NewResolverPass(functions, simple, imports, nil)
	edges := pass.Resolve([]entityextract.UnresolvedCall{
		{CallerQN: "myproj.pkg.a.Caller", CalleeName: "Run", FilePath: "a.go"},
	})

	require.Len(t, edges, 1)
	assert.Equal(t, "myproj.pkg.a.Run", edges[0].CalleeQN)
}

func TestResolveUnknownCallReturnsNoEdge(t *testing.T) {
	functions, simple, imports := newIndex()
	pass := NewResolverPass(functions, simple, imports, nil)
	edges := pass.Resolve([]entityextract.UnresolvedCall{
		{CallerQN: "myproj.main.Run", CalleeName: "nope.Missing", FilePath: "main.go"},
	})
	assert.Empty(t, edges)
}

func TestResolveUnqualifiedCallFallsBackToPrescanIndex(t *testing.T) {
	functions, simple, imports := newIndex()
	// Neither registry knows about Helper: it was only ever seen by the
	// cheap pre-scan pass, e.g. a forward reference the per-file extractor
	// hadn't reached yet when this caller's file was parsed.
	prescanIdx := prescan.NewIndex()
	prescanIdx.Add("myproj.pkg.util", "Helper")

	pass := NewResolverPass(functions, simple, imports, prescanIdx)
	edges := pass.Resolve([]entityextract.UnresolvedCall{
		{CallerQN: "myproj.main.Run", CalleeName: "Helper", FilePath: "main.go"},
	})

	require.Len(t, edges, 1)
	assert.Equal(t, "myproj.pkg.util.Helper", edges[0].CalleeQN)
}

func TestResolveUnqualifiedCallPrescanAmbiguousYieldsNoEdge(t *testing.T) {
	functions, simple, imports := newIndex()
	prescanIdx := prescan.NewIndex()
	prescanIdx.Add("myproj.pkg.a", "Run")
	prescanIdx.Add("myproj.pkg.b", "Run")

	pass := NewResolverPass(functions, simple, imports, prescanIdx)
	edges := pass.Resolve([]entityextract.UnresolvedCall{
		{CallerQN: "myproj.main.Run", CalleeName: "Run", FilePath: "main.go"},
	})

	assert.Empty(t, edges)
}

func TestResolveParallelDedupesEdgesAboveThreshold(t *testing.T) {
	functions, simple, imports := newIndex()
	functions.Add("myproj.pkg.handlers.Serve")
	imports.AddImport("main.go", "handlers", "myproj.pkg.handlers")

	var calls []entityextract.UnresolvedCall
	for i := 0; i < 1200; i++ {
		calls = append(calls, entityextract.UnresolvedCall{
			CallerQN: "myproj.main.Run", CalleeName: "handlers.Serve", FilePath: "main.go",
		})
	}

	pass := NewResolverPass(functions, simple, imports, nil)
	edges := pass.Resolve(calls)
	require.Len(t, edges, 1)
	assert.Equal(t, "myproj.pkg.handlers.Serve", edges[0].CalleeQN)
}
