// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package djangotmpl walks Django (and Django-style Jinja2) templates for
// tag/variable usage and include/extends inheritance, ported from
// original_source/codebase_rag/parsers/frameworks/django_template_parser.py's
// DjangoTemplateParser. Templating languages are not one of the
// tree-sitter grammars this module parses with (see pkg/astcache), so —
// exactly as the Python original does — this is a small regex scanner
// over the raw template text rather than an AST walk.
package djangotmpl

import (
	"context"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kraklabs/cie-graph/pkg/graphmodel"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
)

// Extraction holds everything found in one template file.
type Extraction struct {
	Tags      []string
	Variables []string
	Includes  []string
	Extends   []string
}

// HasContent reports whether any field of the extraction is non-empty,
// mirroring the "skip ingest if nothing found" guard the original applies
// before calling ingest_template.
func (e Extraction) HasContent() bool {
	return len(e.Tags) > 0 || len(e.Variables) > 0 || len(e.Includes) > 0 || len(e.Extends) > 0
}

var (
	tagPattern     = regexp.MustCompile(`(?m)\{%\s*([a-zA-Z_][\w-]*)\b`)
	varPattern     = regexp.MustCompile(`(?m)\{\{\s*([^}]+?)\s*\}\}`)
	includePattern = regexp.MustCompile(`(?i)\{%\s*include\s+['"]([^'"]+)['"]`)
	extendsPattern = regexp.MustCompile(`(?i)\{%\s*extends\s+['"]([^'"]+)['"]`)
)

// LooksLikeTemplate is the cheap pre-filter the original applies before
// doing any real parsing: a file with neither `{{` nor `{%` cannot be a
// Django/Jinja2 template.
func LooksLikeTemplate(source string) bool {
	return strings.Contains(source, "{{") || strings.Contains(source, "{%")
}

// ParseTemplate extracts tags, variables, includes, and extends from a
// template's source. Tag and variable lists are deduplicated in
// first-seen order, matching dict.fromkeys(...) in the original.
func ParseTemplate(source string) Extraction {
	tags := dedupe(findAllGroup1(tagPattern, source))

	var variables []string
	for _, m := range varPattern.FindAllStringSubmatch(source, -1) {
		v := strings.TrimSpace(strings.SplitN(m[1], "|", 2)[0])
		v = strings.TrimSpace(strings.SplitN(v, ".", 2)[0])
		if v != "" {
			variables = append(variables, v)
		}
	}
	variables = dedupe(variables)

	var includes, extends []string
	for _, m := range includePattern.FindAllStringSubmatch(source, -1) {
		includes = append(includes, normalizeTemplateName(m[1]))
	}
	for _, m := range extendsPattern.FindAllStringSubmatch(source, -1) {
		extends = append(extends, normalizeTemplateName(m[1]))
	}

	return Extraction{Tags: tags, Variables: variables, Includes: includes, Extends: extends}
}

func findAllGroup1(re *regexp.Regexp, source string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(source, -1) {
		out = append(out, m[1])
	}
	return out
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func normalizeTemplateName(name string) string {
	cleaned := strings.Trim(strings.TrimSpace(name), `"'`)
	return strings.ReplaceAll(cleaned, `\`, "/")
}

// BuildTemplateIndex walks repoRoot for *.htm/*.html files and indexes
// each one under its repo-relative path, its bare filename, and (for
// files under a templates/ directory) the suffix after templates/ — the
// same three lookup keys DjangoTemplateParser.build_template_index
// registers, so a `{% include "blog/post.html" %}` resolves whether the
// file lives at templates/blog/post.html or app/templates/blog/post.html.
func BuildTemplateIndex(repoRoot string) map[string]string {
	index := make(map[string]string)
	if repoRoot == "" {
		return index
	}
	_ = filepath.WalkDir(repoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".htm" && ext != ".html" {
			return nil
		}
		addTemplateIndexKeys(index, repoRoot, path)
		return nil
	})
	return index
}

func addTemplateIndexKeys(index map[string]string, repoRoot, path string) {
	rel, err := filepath.Rel(repoRoot, path)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if _, ok := index[rel]; !ok {
		index[rel] = rel
	}
	filename := filepath.Base(rel)
	if _, ok := index[filename]; !ok {
		index[filename] = rel
	}
	if idx := strings.Index(rel, "/templates/"); idx != -1 {
		suffix := rel[idx+len("/templates/"):]
		if _, ok := index[suffix]; !ok {
			index[suffix] = rel
		}
	}
}

// ResolveTemplatePath resolves a raw template reference (from an
// include/extends tag, or a Django view's render() call) to a
// repo-relative path using a template index built by BuildTemplateIndex.
// An exact key match wins; otherwise an indexed path whose key ends with
// the normalized reference is returned. The index is a map, so which one
// is returned when several keys end with the reference is not defined.
func ResolveTemplatePath(index map[string]string, ref string) (string, bool) {
	normalized := normalizeTemplateName(ref)
	if normalized == "" {
		return "", false
	}
	if path, ok := index[normalized]; ok {
		return path, true
	}
	for key, path := range index {
		if strings.HasSuffix(key, normalized) {
			return path, true
		}
	}
	return "", false
}

// FileQN builds the qualified name this module uses for File nodes: the
// project name followed by the repo-relative path with path separators
// turned into dots. Unlike a module QN (pkg/prescan.moduleQNForPath),
// this keeps the file extension — a template is an asset, not a code
// module, so there's no language-specific "stem" to strip.
func FileQN(projectName, relPath string) string {
	dotted := strings.ReplaceAll(filepath.ToSlash(relPath), "/", ".")
	return projectName + "." + dotted
}

// Walker ties ParseTemplate/BuildTemplateIndex to a Sink, ensuring Block
// nodes for tags/variables and EMBEDS edges for includes/extends.
type Walker struct {
	Sink          ingestor.Sink
	ProjectName   string
	TemplateIndex map[string]string
}

// NewWalker constructs a Walker bound to a sink, project name, and a
// pre-built template index (see BuildTemplateIndex).
func NewWalker(sink ingestor.Sink, projectName string, templateIndex map[string]string) *Walker {
	return &Walker{Sink: sink, ProjectName: projectName, TemplateIndex: templateIndex}
}

// ProcessFile parses and, if anything was found, ingests one template
// file's source. relPath is the file's path relative to the repo root.
func (w *Walker) ProcessFile(ctx context.Context, relPath, source string) error {
	if !LooksLikeTemplate(source) {
		return nil
	}
	extraction := ParseTemplate(source)
	if !extraction.HasContent() {
		return nil
	}
	return w.IngestTemplate(ctx, relPath, extraction)
}

// IngestTemplate ensures the Block nodes and CONTAINS/EMBEDS edges for an
// already-parsed template extraction.
func (w *Walker) IngestTemplate(ctx context.Context, relPath string, extraction Extraction) error {
	fileQN := FileQN(w.ProjectName, relPath)
	if err := w.Sink.EnsureNode(ctx, graphmodel.LabelFile, fileQN, filepath.Base(relPath), nil, true); err != nil {
		return err
	}

	for _, tag := range extraction.Tags {
		if err := w.linkBlock(ctx, fileQN, tag, "django_tag"); err != nil {
			return err
		}
	}
	for _, v := range extraction.Variables {
		if err := w.linkBlock(ctx, fileQN, v, "django_var"); err != nil {
			return err
		}
	}

	for _, ref := range append(append([]string{}, extraction.Includes...), extraction.Extends...) {
		targetPath, ok := ResolveTemplatePath(w.TemplateIndex, ref)
		if !ok {
			continue
		}
		targetQN := FileQN(w.ProjectName, targetPath)
		if err := w.Sink.EnsureNode(ctx, graphmodel.LabelFile, targetQN, filepath.Base(targetPath), nil, true); err != nil {
			return err
		}
		if err := w.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(graphmodel.LabelFile, fileQN), graphmodel.RelEmbeds,
			graphmodel.NewRef(graphmodel.LabelFile, targetQN),
			map[string]any{"relation_type": "django_template"}); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) linkBlock(ctx context.Context, fileQN, blockName, blockType string) error {
	blockQN := w.ProjectName + ".block." + blockType + "." + blockName
	if err := w.Sink.EnsureNode(ctx, graphmodel.LabelBlock, blockQN, blockName,
		map[string]any{"block_name": blockName, "block_type": blockType}, false); err != nil {
		return err
	}
	return w.Sink.EnsureRelationship(ctx,
		graphmodel.NewRef(graphmodel.LabelFile, fileQN), graphmodel.RelContains,
		graphmodel.NewRef(graphmodel.LabelBlock, blockQN),
		map[string]any{"relation_type": "django_template"})
}
