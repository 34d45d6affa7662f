// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRepoPathDefaultsToCwd(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	resolved, err := resolveRepoPath(nil)
	require.NoError(t, err)
	assert.Equal(t, cwd, resolved)
}

func TestResolveRepoPathRejectsMissingDir(t *testing.T) {
	_, err := resolveRepoPath([]string{filepath.Join(t.TempDir(), "does-not-exist")})
	assert.Error(t, err)
}

func TestResolveRepoPathRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := resolveRepoPath([]string{file})
	assert.Error(t, err)
}

func TestLoadProjectConfigDefaultsWhenNoFile(t *testing.T) {
	repo := t.TempDir()
	cfg, err := loadProjectConfig("", repo)
	require.NoError(t, err)
	assert.Equal(t, repo, cfg.RepoPath)
	assert.Equal(t, filepath.Base(repo), cfg.ProjectName)
	assert.True(t, cfg.EnablePreScan)
}

func TestLoadProjectConfigReadsImplicitYAML(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repo, ".cie-graph.yaml"),
		[]byte("project_name: explicit-name\nparse_workers: 7\n"), 0o644))

	cfg, err := loadProjectConfig("", repo)
	require.NoError(t, err)
	assert.Equal(t, "explicit-name", cfg.ProjectName)
	assert.Equal(t, 7, cfg.ParseWorkers)
	assert.Equal(t, repo, cfg.RepoPath, "RepoPath is always the resolved argument, never read from the config file")
}
