// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package astcache owns the tree-sitter parser pool and the AST cache
// keyed by file path. Grounded on kraklabs-cie/pkg/ingestion's per-language
// parser fields (p.goParser, the TypeScript equivalent referenced by
// parser_typescript.go) and its error-tolerant parse pattern in
// parser_go.go's parseGoAST (HasError / countErrors, never panics across
// file boundaries), generalized here from a Go/TypeScript-only parser to
// every language SPEC_FULL.md names.
package astcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kraklabs/cie-graph/pkg/cache"
)

// Language identifies one of the grammars the driver can parse.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangCSharp     Language = "csharp"
	LangPHP        Language = "php"
	LangRust       Language = "rust"
)

func grammarFor(lang Language) *sitter.Language {
	switch lang {
	case LangGo:
		return golang.GetLanguage()
	case LangPython:
		return python.GetLanguage()
	case LangJavaScript:
		return javascript.GetLanguage()
	case LangTypeScript:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	case LangCSharp:
		return csharp.GetLanguage()
	case LangPHP:
		return php.GetLanguage()
	case LangRust:
		return rust.GetLanguage()
	default:
		return nil
	}
}

// CachedTree retains a parsed root node together with the exact source
// bytes it was parsed from — both are released together on eviction so a
// stale root node is never read against new bytes.
type CachedTree struct {
	Root     *sitter.Node
	Source   []byte
	Language Language
	tree     *sitter.Tree
}

// Close releases the underlying tree-sitter tree.
func (c *CachedTree) Close() {
	if c.tree != nil {
		c.tree.Close()
	}
}

// Driver owns one *sitter.Parser per language plus the AST cache.
type Driver struct {
	mu      sync.Mutex
	parsers map[Language]*sitter.Parser
	astCache *cache.Manager[*CachedTree]
}

// NewDriver builds a Driver with an AST cache capped at maxEntries
// entries and the given TTL (0 disables expiry).
func NewDriver(maxEntries int, ttl time.Duration) *Driver {
	return &Driver{
		parsers:  make(map[Language]*sitter.Parser),
		astCache: cache.NewManager[*CachedTree](maxEntries, cache.WithTTL[*CachedTree](ttl)),
	}
}

func (d *Driver) parserFor(lang Language) (*sitter.Parser, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.parsers[lang]; ok {
		return p, nil
	}
	grammar := grammarFor(lang)
	if grammar == nil {
		return nil, fmt.Errorf("astcache: unsupported language %q", lang)
	}
	p := sitter.NewParser()
	p.SetLanguage(grammar)
	d.parsers[lang] = p
	return p, nil
}

// Parse returns the cached tree for filePath if the cached source bytes
// still match source, otherwise parses source fresh, caches it, and
// returns it. Parse errors tolerate syntax errors in the source (the
// partial tree is still returned and used) but propagate a hard
// tree-sitter failure so the caller can skip just this file — never
// panicking across file boundaries.
func (d *Driver) Parse(ctx context.Context, filePath string, lang Language, source []byte) (*CachedTree, error) {
	if cached, ok := d.astCache.Get(filePath); ok {
		if string(cached.Source) == string(source) {
			return cached, nil
		}
		cached.Close()
	}

	parser, err := d.parserFor(lang)
	if err != nil {
		return nil, err
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("astcache: parse %s: %w", filePath, err)
	}

	root := tree.RootNode()
	if root.HasError() {
		slog.Warn("astcache.syntax_errors", "path", filePath, "language", string(lang))
	}

	entry := &CachedTree{Root: root, Source: source, Language: lang, tree: tree}
	d.astCache.Set(filePath, entry)
	return entry, nil
}

// Invalidate evicts and closes the cached tree for filePath, if present.
func (d *Driver) Invalidate(filePath string) {
	if cached, ok := d.astCache.Get(filePath); ok {
		cached.Close()
	}
	d.astCache.Delete(filePath)
}

// Stats exposes the AST cache's hit/miss/eviction counters.
func (d *Driver) Stats() cache.Stats {
	return d.astCache.StatsSnapshot()
}
