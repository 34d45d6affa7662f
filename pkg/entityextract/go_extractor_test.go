// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package entityextract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-graph/pkg/astcache"
)

const goFixture = `package sample

import (
	"fmt"
	alias "strings"
)

type Server struct {
	Name string
}

type Greeter interface {
	Greet() string
}

func Add(a int, b int) int {
	return a + b
}

func (s *Server) Start() {
	fmt.Println(alias.ToUpper(s.Name))
	Add(1, 2)
	helper := func() {
		Add(3, 4)
	}
	helper()
}
`

const goBrokenFixture = `package sample

func broken( {
	return
}

func Valid() int {
	return 1
}
`

func TestExtractFunctionsMethodsAndAnonymous(t *testing.T) {
	driver := astcache.NewDriver(16, time.Minute)
	tree, err := driver.Parse(context.Background(), "sample.go", astcache.LangGo, []byte(goFixture))
	require.NoError(t, err)

	registry := NewFunctionRegistry()
	simpleNames := NewSimpleNameIndex()
	extractor := NewGoExtractor(registry, simpleNames)

	result := extractor.Extract(tree.Root, []byte(goFixture), "sample.go", "proj.sample")

	assert.Equal(t, "sample", result.PackageName)

	var names []string
	for _, fn := range result.Functions {
		names = append(names, fn.Name)
	}
	assert.Contains(t, names, "Add")
	assert.Contains(t, names, "Server.Start")
	assert.Contains(t, names, "$anon_1")

	assert.True(t, registry.Has("proj.sample.Add"))
	assert.True(t, registry.Has("proj.sample.Server.Start"))

	var typeNames []string
	for _, ty := range result.Types {
		typeNames = append(typeNames, ty.Name)
	}
	assert.Contains(t, typeNames, "Server")
	assert.Contains(t, typeNames, "Greeter")

	var importPaths []string
	for _, imp := range result.Imports {
		importPaths = append(importPaths, imp.ImportPath)
	}
	assert.Contains(t, importPaths, "fmt")
	assert.Contains(t, importPaths, "strings")
}

func TestExtractResolvesSameFileCallsAndLeavesUnresolvedCrossFile(t *testing.T) {
	driver := astcache.NewDriver(16, time.Minute)
	tree, err := driver.Parse(context.Background(), "sample.go", astcache.LangGo, []byte(goFixture))
	require.NoError(t, err)

	extractor := NewGoExtractor(NewFunctionRegistry(), NewSimpleNameIndex())
	result := extractor.Extract(tree.Root, []byte(goFixture), "sample.go", "proj.sample")

	foundAddCall := false
	for _, c := range result.Calls {
		if c.CallerQN == "proj.sample.Server.Start" && c.CalleeQN == "proj.sample.Add" {
			foundAddCall = true
		}
	}
	assert.True(t, foundAddCall, "Start should resolve its direct call to Add within the same file")

	foundUnresolvedPrintln := false
	for _, u := range result.UnresolvedCalls {
		if u.CalleeName == "fmt.Println" {
			foundUnresolvedPrintln = true
		}
	}
	assert.True(t, foundUnresolvedPrintln, "cross-package calls must surface as unresolved for the resolver pass")
}

func TestExtractTolerantOfSyntaxErrors(t *testing.T) {
	driver := astcache.NewDriver(16, time.Minute)
	tree, err := driver.Parse(context.Background(), "broken.go", astcache.LangGo, []byte(goBrokenFixture))
	require.NoError(t, err)

	extractor := NewGoExtractor(NewFunctionRegistry(), NewSimpleNameIndex())
	result := extractor.Extract(tree.Root, []byte(goBrokenFixture), "broken.go", "proj.broken")

	var names []string
	for _, fn := range result.Functions {
		names = append(names, fn.Name)
	}
	assert.Contains(t, names, "Valid", "a syntax error in one declaration must not prevent extracting valid siblings")
}
