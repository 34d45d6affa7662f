// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package crossfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndexCountsModulesAndEdges(t *testing.T) {
	r := NewResolver(map[string][]string{
		"app.main":    {"app.handlers", "app.util"},
		"app.handlers": {"app.util"},
	})

	stats := r.BuildIndex()
	assert.Equal(t, 3, stats.TotalModules)
	assert.Equal(t, 3, stats.TotalEdges)
}

func TestBuildIndexTopImportersAndDependents(t *testing.T) {
	r := NewResolver(map[string][]string{
		"app.main":    {"app.util"},
		"app.handlers": {"app.util"},
		"app.jobs":    {"app.util"},
	})

	stats := r.BuildIndex()
	require.NotEmpty(t, stats.TopDependents)
	assert.Equal(t, "app.util", stats.TopDependents[0].ModuleQN)
	assert.Equal(t, 3, stats.TopDependents[0].Count)
}

func TestDetectCyclesFindsSimpleCycle(t *testing.T) {
	r := NewResolver(map[string][]string{
		"app.a": {"app.b"},
		"app.b": {"app.c"},
		"app.c": {"app.a"},
	})

	stats := r.BuildIndex()
	require.NotEmpty(t, stats.Cycles)
	assert.Contains(t, stats.Cycles[0], "app.a")
	assert.Contains(t, stats.Cycles[0], "app.b")
	assert.Contains(t, stats.Cycles[0], "app.c")
}

func TestDetectCyclesNoneForAcyclicGraph(t *testing.T) {
	r := NewResolver(map[string][]string{
		"app.main": {"app.util"},
	})
	stats := r.BuildIndex()
	assert.Empty(t, stats.Cycles)
}
