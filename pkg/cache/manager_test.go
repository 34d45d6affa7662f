// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLRUEviction(t *testing.T) {
	m := NewManager[int](2)
	m.Set("a", 1)
	m.Set("b", 2)

	// touch "a" so "b" becomes the least recently used entry
	_, ok := m.Get("a")
	require.True(t, ok)

	m.Set("c", 3)

	_, ok = m.Get("b")
	assert.False(t, ok, "b should have been evicted as LRU")
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = m.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	stats := m.StatsSnapshot()
	assert.Equal(t, int64(1), stats.Evictions)
}

func TestManagerTTLExpiration(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	m := NewManager[string](10, WithTTL[string](time.Second), WithClock[string](clock))

	m.Set("k", "v")
	v, ok := m.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", v)

	now = now.Add(2 * time.Second)
	_, ok = m.Get("k")
	assert.False(t, ok, "entry should be expired")

	stats := m.StatsSnapshot()
	assert.Equal(t, int64(1), stats.Expirations)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestManagerContainsReflectsEviction(t *testing.T) {
	m := NewManager[int](1)
	m.Set("a", 1)
	m.Set("b", 2) // evicts "a"

	assert.False(t, m.Contains("a"))
	assert.True(t, m.Contains("b"))
}

func TestManagerClearAndKeys(t *testing.T) {
	m := NewManager[int](5)
	m.Set("a", 1)
	m.Set("b", 2)
	assert.ElementsMatch(t, []string{"a", "b"}, m.Keys())

	m.Clear()
	assert.Equal(t, 0, m.Size())
	assert.Empty(t, m.Keys())
}
