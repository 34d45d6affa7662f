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

const tsFixture = `import { helper } from "./helper";

interface Greeter {
	greet(): string;
}

class Server implements Greeter {
	greet(): string {
		return add(1, 2).toString();
	}
}

function add(a: number, b: number): number {
	return a + b;
}

const run = () => {
	add(3, 4);
	helper();
};
`

func TestTSExtractFunctionsAndTypes(t *testing.T) {
	driver := astcache.NewDriver(16, time.Minute)
	tree, err := driver.Parse(context.Background(), "sample.ts", astcache.LangTypeScript, []byte(tsFixture))
	require.NoError(t, err)

	extractor := NewTSExtractor(NewFunctionRegistry(), NewSimpleNameIndex())
	result := extractor.Extract(tree.Root, []byte(tsFixture), "sample.ts", "proj.sample")

	var names []string
	for _, fn := range result.Functions {
		names = append(names, fn.Name)
	}
	assert.Contains(t, names, "add")
	assert.Contains(t, names, "greet")
	assert.Contains(t, names, "run")

	var typeNames []string
	for _, ty := range result.Types {
		typeNames = append(typeNames, ty.Name)
	}
	assert.Contains(t, typeNames, "Greeter")
	assert.Contains(t, typeNames, "Server")

	var importPaths []string
	for _, imp := range result.Imports {
		importPaths = append(importPaths, imp.ImportPath)
	}
	assert.Contains(t, importPaths, "./helper")

	foundAddCall := false
	for _, c := range result.Calls {
		if c.CalleeQN == "proj.sample.add" {
			foundAddCall = true
		}
	}
	assert.True(t, foundAddCall, "run should resolve its direct call to add within the same file")
}
