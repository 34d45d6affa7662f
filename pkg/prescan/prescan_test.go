// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package prescan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanRepoGoAndPython(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "internal", "server", "server.go"), `package server

func Start() {}
type Config struct{}
`)
	writeFile(t, filepath.Join(root, "scripts", "build.py"), `def build():
    pass


class Builder:
    pass
`)
	writeFile(t, filepath.Join(root, "scripts", "__init__.py"), ``)

	scanner := NewScanner(root, "myproj", nil)
	index, err := scanner.ScanRepo()
	require.NoError(t, err)

	_, ok := index.SymbolToModules["Start"]["myproj.internal.server.server"]
	assert.True(t, ok)
	_, ok = index.SymbolToModules["Config"]["myproj.internal.server.server"]
	assert.True(t, ok)

	_, ok = index.SymbolToModules["build"]["myproj.scripts.build"]
	assert.True(t, ok)
	_, ok = index.SymbolToModules["Builder"]["myproj.scripts.build"]
	assert.True(t, ok)
}

func TestScanRepoNeverFalseNegativesTopLevelNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lib.rs"), `pub fn helper() {}
struct Thing;
trait Doer {}
enum Kind { A, B }
`)

	scanner := NewScanner(root, "rustproj", nil)
	index, err := scanner.ScanRepo()
	require.NoError(t, err)

	for _, sym := range []string{"helper", "Thing", "Doer", "Kind"} {
		assert.Contains(t, index.SymbolToModules, sym, "symbol %s must be found", sym)
	}
}

func TestScanRepoRespectsShouldSkip(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "vendor", "ignored.go"), `package ignored

func Hidden() {}
`)

	scanner := NewScanner(root, "proj", func(path string) bool {
		return filepath.Base(filepath.Dir(path)) == "vendor"
	})
	index, err := scanner.ScanRepo()
	require.NoError(t, err)
	assert.NotContains(t, index.SymbolToModules, "Hidden")
}
