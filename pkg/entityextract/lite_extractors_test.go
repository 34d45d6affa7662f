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

const csharpFixture = `using System;

namespace Sample {
	public interface IGreeter {
		string Greet();
	}

	public class Server : IGreeter {
		public string Greet() {
			return "hi";
		}
	}
}
`

const phpFixture = `<?php

interface Greeter {
	public function greet(): string;
}

class Server implements Greeter {
	public function greet(): string {
		return "hi";
	}
}

function add($a, $b) {
	return $a + $b;
}
`

const rustFixture = `use std::fmt;

trait Greeter {
	fn greet(&self) -> String;
}

struct Server;

fn add(a: i32, b: i32) -> i32 {
	a + b
}
`

func TestCSharpExtractFunctionsAndTypes(t *testing.T) {
	driver := astcache.NewDriver(16, time.Minute)
	tree, err := driver.Parse(context.Background(), "sample.cs", astcache.LangCSharp, []byte(csharpFixture))
	require.NoError(t, err)

	extractor := NewCSharpExtractor(NewFunctionRegistry(), NewSimpleNameIndex())
	result := extractor.Extract(tree.Root, []byte(csharpFixture), "sample.cs", "proj.sample")

	var typeNames []string
	for _, ty := range result.Types {
		typeNames = append(typeNames, ty.Name)
	}
	assert.Contains(t, typeNames, "IGreeter")
	assert.Contains(t, typeNames, "Server")

	var names []string
	for _, fn := range result.Functions {
		names = append(names, fn.Name)
	}
	assert.Contains(t, names, "Greet")
}

func TestPHPExtractFunctionsAndTypes(t *testing.T) {
	driver := astcache.NewDriver(16, time.Minute)
	tree, err := driver.Parse(context.Background(), "sample.php", astcache.LangPHP, []byte(phpFixture))
	require.NoError(t, err)

	extractor := NewPHPExtractor(NewFunctionRegistry(), NewSimpleNameIndex())
	result := extractor.Extract(tree.Root, []byte(phpFixture), "sample.php", "proj.sample")

	var typeNames []string
	for _, ty := range result.Types {
		typeNames = append(typeNames, ty.Name)
	}
	assert.Contains(t, typeNames, "Greeter")
	assert.Contains(t, typeNames, "Server")

	var names []string
	for _, fn := range result.Functions {
		names = append(names, fn.Name)
	}
	assert.Contains(t, names, "add")
}

func TestRustExtractFunctionsAndTypes(t *testing.T) {
	driver := astcache.NewDriver(16, time.Minute)
	tree, err := driver.Parse(context.Background(), "sample.rs", astcache.LangRust, []byte(rustFixture))
	require.NoError(t, err)

	extractor := NewRustExtractor(NewFunctionRegistry(), NewSimpleNameIndex())
	result := extractor.Extract(tree.Root, []byte(rustFixture), "sample.rs", "proj.sample")

	var typeNames []string
	for _, ty := range result.Types {
		typeNames = append(typeNames, ty.Name)
	}
	assert.Contains(t, typeNames, "Greeter")
	assert.Contains(t, typeNames, "Server")

	var names []string
	for _, fn := range result.Functions {
		names = append(names, fn.Name)
	}
	assert.Contains(t, names, "add")

	var importPaths []string
	for _, imp := range result.Imports {
		importPaths = append(importPaths, imp.ImportPath)
	}
	assert.NotEmpty(t, importPaths)
}
