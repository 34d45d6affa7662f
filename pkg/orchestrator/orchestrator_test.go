// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-graph/pkg/astcache"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProjectName = "demo"
	cfg.RepoPath = "/tmp/demo"
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidateRejectsMissingFields(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "repo_path is unset")

	cfg.ProjectName = "demo"
	assert.Error(t, cfg.Validate(), "repo_path is still unset")

	cfg.RepoPath = "/tmp/demo"
	cfg.ParseWorkers = 0
	assert.Error(t, cfg.Validate(), "parse_workers must be positive")

	cfg.ParseWorkers = 4
	cfg.SchedulerMode = "bogus"
	assert.Error(t, cfg.Validate(), "unknown scheduler mode")
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cie-graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project_name: demo\nrepo_path: /tmp/demo\nparse_workers: 2\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.ProjectName)
	assert.Equal(t, "/tmp/demo", cfg.RepoPath)
	assert.Equal(t, 2, cfg.ParseWorkers)
	// Fields absent from the YAML keep DefaultConfig's values.
	assert.Equal(t, SchedulerThreadPool, cfg.SchedulerMode)
	assert.True(t, cfg.EnablePreScan)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunContextEngineForIsSharedPerLanguage(t *testing.T) {
	rc := NewRunContext(0)
	goEngine := rc.EngineFor("go")
	again := rc.EngineFor("go")
	assert.Same(t, goEngine, again)

	pyEngine := rc.EngineFor("python")
	assert.NotSame(t, goEngine, pyEngine)
}

func TestRunContextRecordImportDedupes(t *testing.T) {
	rc := NewRunContext(0)
	rc.RecordImport("a.go", "demo.a", "", "demo.b")
	rc.RecordImport("a.go", "demo.a", "", "demo.b")
	rc.RecordImport("a.go", "demo.a", "", "demo.c")

	assert.ElementsMatch(t, []string{"demo.b", "demo.c"}, rc.ImportMapping["demo.a"])
}

func TestGenerateRunIDDeterministic(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	a := generateRunID("demo", now)
	b := generateRunID("demo", now)
	assert.Equal(t, a, b)

	c := generateRunID("other", now)
	assert.NotEqual(t, a, c)
}

func TestShouldSkipMatchesExcludeGlobs(t *testing.T) {
	o := &Orchestrator{Config: Config{RepoPath: "/repo", ExcludeGlobs: []string{"**/node_modules/**"}}}
	assert.True(t, o.shouldSkip(filepath.Join("/repo", "node_modules", "pkg", "index.js")))
	assert.False(t, o.shouldSkip(filepath.Join("/repo", "src", "index.js")))
}

func TestLanguageForExt(t *testing.T) {
	assert.Equal(t, astcache.LangGo, languageForExt(".go"))
	assert.Equal(t, astcache.LangPython, languageForExt(".py"))
	assert.Equal(t, astcache.Language(""), languageForExt(".bogus"))
}

// TestRunIndexesSmallGoRepo exercises the full pipeline end to end
// against a two-file fixture repo, confirming the file and function
// counts local.indexing.complete reports and that nodes and edges land
// in the sink.
func TestRunIndexesSmallGoRepo(t *testing.T) {
	repo := t.TempDir()
	mainSrc := `package demo

func Caller() int {
	return Callee()
}
`
	calleeSrc := `package demo

func Callee() int {
	return 42
}
`
	require.NoError(t, os.WriteFile(filepath.Join(repo, "main.go"), []byte(mainSrc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "callee.go"), []byte(calleeSrc), 0o644))

	cfg := DefaultConfig()
	cfg.ProjectName = "demo"
	cfg.RepoPath = repo
	cfg.CacheDir = filepath.Join(repo, ".cie-cache")
	cfg.SchedulerMode = SchedulerInline
	cfg.EnableFrameworkLinker = false
	cfg.EnableTailwind = false
	cfg.EnableDjangoTemplates = false

	sink := ingestor.NewMemorySink()
	o, err := New(cfg, sink, nil)
	require.NoError(t, err)

	result, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "demo", result.ProjectName)
	assert.Equal(t, 2, result.FilesScanned)
	assert.Equal(t, 2, result.FilesParsed)
	assert.GreaterOrEqual(t, result.FunctionsFound, 2)
	assert.Greater(t, sink.NodeCount(), 0)
	assert.Greater(t, sink.EdgeCount(), 0)
}
