// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package astcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCachesUnchangedSource(t *testing.T) {
	d := NewDriver(8, 0)
	src := []byte("package sample\n\nfunc Foo() {}\n")

	first, err := d.Parse(context.Background(), "sample.go", LangGo, src)
	require.NoError(t, err)
	require.NotNil(t, first.Root)

	second, err := d.Parse(context.Background(), "sample.go", LangGo, src)
	require.NoError(t, err)
	assert.Same(t, first, second, "unchanged source should be served from the AST cache")

	stats := d.Stats()
	assert.GreaterOrEqual(t, stats.Hits, int64(1))
}

func TestParseToleratesSyntaxErrors(t *testing.T) {
	d := NewDriver(8, 0)
	broken := []byte("package sample\n\nfunc broken( {\n\nfunc Valid() {}\n")

	tree, err := d.Parse(context.Background(), "broken.go", LangGo, broken)
	require.NoError(t, err, "a syntax error must not fail the parse")
	require.NotNil(t, tree.Root)
}

func TestParseReparsesOnSourceChange(t *testing.T) {
	d := NewDriver(8, 0)
	ctx := context.Background()

	first, err := d.Parse(ctx, "sample.go", LangGo, []byte("package sample\n"))
	require.NoError(t, err)

	second, err := d.Parse(ctx, "sample.go", LangGo, []byte("package sample\n\nfunc Foo() {}\n"))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestParseUnsupportedLanguage(t *testing.T) {
	d := NewDriver(8, time.Second)
	_, err := d.Parse(context.Background(), "x.unknown", Language("cobol"), []byte("x"))
	assert.Error(t, err)
}
