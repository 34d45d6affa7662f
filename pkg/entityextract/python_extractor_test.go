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

const pyFixture = `import os
from collections import OrderedDict


def add(a, b):
    return a + b


class Server:
    def start(self):
        add(1, 2)
        self.helper()

    def helper(self):
        os.getcwd()
`

func TestPythonExtractFunctionsClassesAndCalls(t *testing.T) {
	driver := astcache.NewDriver(16, time.Minute)
	tree, err := driver.Parse(context.Background(), "sample.py", astcache.LangPython, []byte(pyFixture))
	require.NoError(t, err)

	extractor := NewPythonExtractor(NewFunctionRegistry(), NewSimpleNameIndex())
	result := extractor.Extract(tree.Root, []byte(pyFixture), "sample.py", "proj.sample")

	var names []string
	for _, fn := range result.Functions {
		names = append(names, fn.Name)
	}
	assert.Contains(t, names, "add")
	assert.Contains(t, names, "Server.start")
	assert.Contains(t, names, "Server.helper")

	var typeNames []string
	for _, ty := range result.Types {
		typeNames = append(typeNames, ty.Name)
	}
	assert.Contains(t, typeNames, "Server")

	var importPaths []string
	for _, imp := range result.Imports {
		importPaths = append(importPaths, imp.ImportPath)
	}
	assert.Contains(t, importPaths, "os")
	assert.Contains(t, importPaths, "collections")

	foundAddCall, foundHelperCall := false, false
	for _, c := range result.Calls {
		if c.CallerQN == "proj.sample.Server.start" && c.CalleeQN == "proj.sample.add" {
			foundAddCall = true
		}
		if c.CallerQN == "proj.sample.Server.start" && c.CalleeQN == "proj.sample.Server.helper" {
			foundHelperCall = true
		}
	}
	assert.True(t, foundAddCall, "start should resolve its call to the module-level add function")
	assert.True(t, foundHelperCall, "start should resolve its call to the sibling method helper via self.")
}
