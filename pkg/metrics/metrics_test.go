// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitIsIdempotent(t *testing.T) {
	var p Pipeline
	p.Init()
	p.Init()

	p.FilesScanned.Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(p.FilesScanned))
}

func TestCountersIncrementIndependently(t *testing.T) {
	var p Pipeline
	p.Init()

	p.FilesParsed.Inc()
	p.FilesParsed.Inc()
	p.ParseErrors.Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(p.FilesParsed))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.ParseErrors))
	assert.Equal(t, float64(0), testutil.ToFloat64(p.CacheHits))
}
