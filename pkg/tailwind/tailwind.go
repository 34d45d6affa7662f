// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package tailwind scans source files for Tailwind CSS utility usage and
// wires USES_UTILITY/USES_ASSET edges into the graph, ported from
// original_source/codebase_rag/parsers/tailwind_processor.py's
// TailwindUsageProcessor. The Python original locates class attributes
// via a compiled tree-sitter query per language (one .scm file per
// grammar); this module has no query-file infrastructure, so Processor
// instead regex-scans each file's raw source for class/className
// attribute values — a shallower substitute for the same extraction, not
// a different feature set. Everything downstream of "here is a raw class
// attribute value" (template-literal splitting, classnames()/clsx() call
// parsing, object-key extraction, utility normalization) is ported
// faithfully.
package tailwind

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/kraklabs/cie-graph/pkg/graphmodel"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
)

// Processor scans files for Tailwind usage and ensures the resulting
// Asset/TailwindUtility nodes and USES_UTILITY/USES_ASSET edges in a
// Sink. A Processor is safe for concurrent use by multiple goroutines
// scanning different files of the same project.
type Processor struct {
	Sink        ingestor.Sink
	ProjectName string
	RepoRoot    string

	mu           sync.Mutex
	assetQN      string
	sourceInline map[string]struct{}
}

// NewProcessor constructs a Processor bound to a sink, project name, and
// repository root (used to resolve tailwind.config.* files).
func NewProcessor(sink ingestor.Sink, projectName, repoRoot string) *Processor {
	return &Processor{
		Sink:         sink,
		ProjectName:  projectName,
		RepoRoot:     repoRoot,
		sourceInline: make(map[string]struct{}),
	}
}

// markupExtensions are the languages the Python original scans class
// attributes in: HTML, JS, TS (and their JSX/TSX variants), Vue, Svelte.
var markupExtensions = map[string]bool{
	".html": true, ".htm": true,
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true,
	".vue": true, ".svelte": true,
}

var styleExtensions = map[string]bool{".css": true, ".scss": true}

// ProcessFile scans a single file's already-read source for Tailwind
// usage and ensures the corresponding module->utility/asset edges. It is
// a no-op for extensions outside markupExtensions/styleExtensions.
func (p *Processor) ProcessFile(ctx context.Context, filePath, moduleQN, source string) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch {
	case markupExtensions[ext]:
		return p.processClassAttributes(ctx, moduleQN, source)
	case styleExtensions[ext]:
		return p.processAtRules(ctx, moduleQN, source)
	default:
		return nil
	}
}

var (
	classAttrPattern = regexp.MustCompile(
		`(?i)\b(?:class(?:Name)?)\s*=\s*(` +
			"`[^`]*`" + `|\{(?:[^{}]|\{[^{}]*\})*\}|"[^"]*"|'[^']*')`)
)

func (p *Processor) processClassAttributes(ctx context.Context, moduleQN, source string) error {
	used := false
	for _, m := range classAttrPattern.FindAllStringSubmatch(source, -1) {
		raw := stripQuotes(m[1])
		var utilities []string
		if strings.HasPrefix(m[1], "{") {
			utilities = extractClassesFromExpression(raw)
		} else {
			utilities = extractClassesFromValue(raw)
		}
		for _, u := range utilities {
			u = normalizeUtility(u)
			if u == "" {
				continue
			}
			used = true
			if err := p.ensureUtilityUsage(ctx, moduleQN, u, "tailwind"); err != nil {
				return err
			}
		}
	}
	if used {
		return p.ensureAssetUsage(ctx, moduleQN)
	}
	return nil
}

var tailwindAtRulePattern = regexp.MustCompile(`(?m)@(apply|tailwind|layer|source)\b[^;{}]*[;{]?`)

func (p *Processor) processAtRules(ctx context.Context, moduleQN, source string) error {
	used := false
	for _, m := range tailwindAtRulePattern.FindAllString(source, -1) {
		switch {
		case strings.Contains(m, "@apply"):
			for _, u := range parseApplyUtilities(m) {
				u = normalizeUtility(u)
				if u == "" {
					continue
				}
				used = true
				if err := p.ensureUtilityUsage(ctx, moduleQN, u, "tailwind_apply"); err != nil {
					return err
				}
			}
		case strings.Contains(m, "@source"):
			for _, inline := range parseSourceInline(m) {
				p.mu.Lock()
				p.sourceInline[inline] = struct{}{}
				p.mu.Unlock()
			}
		case strings.Contains(m, "@tailwind"), strings.Contains(m, "@layer"):
			used = true
		}
	}
	if used {
		return p.ensureAssetUsage(ctx, moduleQN)
	}
	return nil
}

func (p *Processor) ensureUtilityUsage(ctx context.Context, moduleQN, utility, relationKind string) error {
	utilityQN := p.ensureUtilityNode(ctx, utility)
	if utilityQN == "" {
		return nil
	}
	return p.Sink.EnsureRelationship(ctx,
		graphmodel.NewRef(graphmodel.LabelModule, moduleQN), graphmodel.RelUsesUtility,
		graphmodel.NewRef(graphmodel.LabelTailwindUtility, utilityQN),
		map[string]any{"relation_type": relationKind})
}

func (p *Processor) ensureUtilityNode(ctx context.Context, utility string) string {
	normalized := nonWordPattern.ReplaceAllString(utility, "_")
	normalized = strings.Trim(normalized, "_")
	if normalized == "" {
		sum := md5.Sum([]byte(utility))
		normalized = hex.EncodeToString(sum[:])[:8]
	}
	utilityQN := p.ProjectName + ".tailwind.utility." + normalized
	if err := p.Sink.EnsureNode(ctx, graphmodel.LabelTailwindUtility, utilityQN, utility,
		map[string]any{"utility_name": utility}, false); err != nil {
		return ""
	}
	return utilityQN
}

func (p *Processor) ensureAssetUsage(ctx context.Context, moduleQN string) error {
	assetQN := p.ensureTailwindAsset(ctx)
	return p.Sink.EnsureRelationship(ctx,
		graphmodel.NewRef(graphmodel.LabelModule, moduleQN), graphmodel.RelUsesAsset,
		graphmodel.NewRef(graphmodel.LabelAsset, assetQN),
		map[string]any{"relation_type": "tailwind"})
}

func (p *Processor) ensureTailwindAsset(ctx context.Context) string {
	p.mu.Lock()
	if p.assetQN != "" {
		defer p.mu.Unlock()
		return p.assetQN
	}
	p.assetQN = p.ProjectName + ".asset.css_framework.tailwindcss"
	assetQN := p.assetQN
	p.mu.Unlock()

	_ = p.Sink.EnsureNode(ctx, graphmodel.LabelAsset, assetQN, "tailwindcss",
		map[string]any{"asset_handle": "tailwindcss", "asset_type": "css_framework"}, false)
	return assetQN
}

// IngestConfigMetadata walks RepoRoot for tailwind.config.* files,
// extracts their content/safelist globs, and ensures a single
// tailwind.config Asset node carrying that metadata plus any @source
// inline(...) directives collected during ProcessFile calls. Call this
// once after all files in the project have been processed.
func (p *Processor) IngestConfigMetadata(ctx context.Context) error {
	var configPaths []string
	content := make(map[string]struct{})
	safelist := make(map[string]struct{})

	if p.RepoRoot != "" {
		_ = filepath.WalkDir(p.RepoRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(path), "tailwind.config.") {
				return nil
			}
			rel, relErr := filepath.Rel(p.RepoRoot, path)
			if relErr != nil {
				rel = path
			}
			configPaths = append(configPaths, rel)

			raw, readErr := os.ReadFile(path)
			if readErr != nil {
				return nil
			}
			text := string(raw)
			for _, v := range extractConfigList(text, "content") {
				content[v] = struct{}{}
			}
			for _, v := range extractConfigList(text, "safelist") {
				safelist[v] = struct{}{}
			}
			for _, v := range extractConfigNestedList(text, "content", "files") {
				content[v] = struct{}{}
			}
			return nil
		})
	}

	p.mu.Lock()
	sourceInline := make([]string, 0, len(p.sourceInline))
	for s := range p.sourceInline {
		sourceInline = append(sourceInline, s)
	}
	p.mu.Unlock()

	if len(configPaths) == 0 && len(sourceInline) == 0 {
		return nil
	}

	props := map[string]any{"asset_handle": "tailwind.config", "asset_type": "tailwind_config"}
	if len(configPaths) > 0 {
		props["asset_path"] = mustJSON(configPaths)
	}
	if len(content) > 0 {
		props["tailwind_content"] = mustJSON(mapKeys(content))
	}
	if len(safelist) > 0 {
		props["tailwind_safelist"] = mustJSON(mapKeys(safelist))
	}
	if len(sourceInline) > 0 {
		props["tailwind_source_inline"] = mustJSON(sourceInline)
	}

	configQN := p.ProjectName + ".asset.tailwind.config"
	if err := p.Sink.EnsureNode(ctx, graphmodel.LabelAsset, configQN, "tailwind.config", props, false); err != nil {
		return err
	}
	return p.Sink.EnsureRelationship(ctx,
		graphmodel.NewRef(graphmodel.LabelProject, p.ProjectName), graphmodel.RelUsesAsset,
		graphmodel.NewRef(graphmodel.LabelAsset, configQN),
		map[string]any{"relation_type": "tailwind_config"})
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func mapKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
