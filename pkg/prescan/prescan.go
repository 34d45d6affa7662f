// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package prescan implements a cheap, regex-only first pass over a
// repository that records which module defines which top-level symbol,
// without attempting to parse any function body. Ported from
// original_source/codebase_rag/parsers/pre_scanner.py, generalized from
// Python's pathlib-walk to filepath.WalkDir.
package prescan

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Index maps symbols to the modules that define them, and vice-versa.
type Index struct {
	SymbolToModules map[string]map[string]struct{}
	ModuleToSymbols map[string]map[string]struct{}
}

// NewIndex builds an empty Index.
func NewIndex() *Index {
	return &Index{
		SymbolToModules: make(map[string]map[string]struct{}),
		ModuleToSymbols: make(map[string]map[string]struct{}),
	}
}

// Add records that moduleQN defines symbol. A blank symbol is ignored.
func (idx *Index) Add(moduleQN, symbol string) {
	if symbol == "" {
		return
	}
	if idx.ModuleToSymbols[moduleQN] == nil {
		idx.ModuleToSymbols[moduleQN] = make(map[string]struct{})
	}
	idx.ModuleToSymbols[moduleQN][symbol] = struct{}{}

	if idx.SymbolToModules[symbol] == nil {
		idx.SymbolToModules[symbol] = make(map[string]struct{})
	}
	idx.SymbolToModules[symbol][moduleQN] = struct{}{}
}

// Scanner performs the lightweight first pass over a repository.
type Scanner struct {
	RepoPath    string
	ProjectName string
	ShouldSkip  func(path string) bool // optional; nil means never skip
}

// NewScanner constructs a Scanner rooted at repoPath.
func NewScanner(repoPath, projectName string, shouldSkip func(string) bool) *Scanner {
	return &Scanner{RepoPath: repoPath, ProjectName: projectName, ShouldSkip: shouldSkip}
}

// ScanRepo walks the repository and builds a symbol-to-module Index.
func (s *Scanner) ScanRepo() (*Index, error) {
	index := NewIndex()

	err := filepath.WalkDir(s.RepoPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, never abort the walk
		}
		if d.IsDir() {
			return nil
		}
		if s.ShouldSkip != nil && s.ShouldSkip(path) {
			return nil
		}

		language := languageForPath(path)
		if language == "" {
			return nil
		}

		symbols := s.scanFile(path, language)
		if len(symbols) == 0 {
			return nil
		}
		moduleQN := s.moduleQNForPath(path, language)
		for symbol := range symbols {
			index.Add(moduleQN, symbol)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("prescan.complete", "modules", len(index.ModuleToSymbols), "symbols", len(index.SymbolToModules))
	return index, nil
}

func languageForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".py":
		return "python"
	case ".go":
		return "go"
	case ".cs":
		return "csharp"
	case ".php":
		return "php"
	case ".rs":
		return "rust"
	default:
		return ""
	}
}

func (s *Scanner) scanFile(path, language string) map[string]struct{} {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	text := string(data)

	switch language {
	case "javascript", "typescript":
		return scanJSTS(text)
	case "python":
		return scanPython(text)
	case "go":
		return scanGo(text)
	case "csharp":
		return scanCSharp(text)
	case "php":
		return scanPHP(text)
	case "rust":
		return scanRust(text)
	default:
		return nil
	}
}

func findAllGroup1(re *regexp.Regexp, text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if len(m) > 1 && m[1] != "" {
			out[m[1]] = struct{}{}
		}
	}
	return out
}

var (
	jsExportDecl = regexp.MustCompile(`(?m)\bexport\s+(?:default\s+)?(?:function|class|const|let|var|interface|type|enum)\s+([A-Za-z_][\w]*)`)
	jsExportList = regexp.MustCompile(`(?m)\bexport\s*\{([^}]+)\}`)
	jsExportDflt = regexp.MustCompile(`\bexport\s+default\b`)
)

func scanJSTS(text string) map[string]struct{} {
	symbols := findAllGroup1(jsExportDecl, text)
	for _, block := range jsExportList.FindAllStringSubmatch(text, -1) {
		for _, entry := range strings.Split(block[1], ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			if idx := strings.Index(entry, " as "); idx != -1 {
				entry = strings.TrimSpace(entry[idx+len(" as "):])
			}
			entry = strings.SplitN(entry, " ", 2)[0]
			entry = strings.TrimSpace(entry)
			if entry != "" {
				symbols[entry] = struct{}{}
			}
		}
	}
	if jsExportDflt.MatchString(text) {
		symbols["default"] = struct{}{}
	}
	return symbols
}

var (
	pyDef   = regexp.MustCompile(`(?m)^\s*def\s+([A-Za-z_][\w]*)`)
	pyClass = regexp.MustCompile(`(?m)^\s*class\s+([A-Za-z_][\w]*)`)
)

func scanPython(text string) map[string]struct{} {
	symbols := findAllGroup1(pyDef, text)
	for k := range findAllGroup1(pyClass, text) {
		symbols[k] = struct{}{}
	}
	return symbols
}

var goPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*func\s+([A-Za-z_][\w]*)`),
	regexp.MustCompile(`(?m)^\s*type\s+([A-Za-z_][\w]*)`),
	regexp.MustCompile(`(?m)^\s*var\s+([A-Za-z_][\w]*)`),
	regexp.MustCompile(`(?m)^\s*const\s+([A-Za-z_][\w]*)`),
}

func scanGo(text string) map[string]struct{} {
	symbols := make(map[string]struct{})
	for _, re := range goPatterns {
		for k := range findAllGroup1(re, text) {
			symbols[k] = struct{}{}
		}
	}
	return symbols
}

var (
	csTypePattern   = regexp.MustCompile(`(?m)\b(?:class|interface|struct|record|enum)\s+([A-Za-z_][\w]*)`)
	csMethodPattern = regexp.MustCompile(`(?m)\b(?:public|internal|private|protected|static|virtual|override|async|sealed|new)\s+[A-Za-z_][\w<>\[\]]*\s+([A-Za-z_][\w]*)\s*\(`)
)

func scanCSharp(text string) map[string]struct{} {
	symbols := findAllGroup1(csTypePattern, text)
	for k := range findAllGroup1(csMethodPattern, text) {
		symbols[k] = struct{}{}
	}
	return symbols
}

var (
	phpFunction  = regexp.MustCompile(`\bfunction\s+([A-Za-z_][\w]*)`)
	phpClass     = regexp.MustCompile(`\bclass\s+([A-Za-z_][\w]*)`)
	phpInterface = regexp.MustCompile(`\binterface\s+([A-Za-z_][\w]*)`)
	phpTrait     = regexp.MustCompile(`\btrait\s+([A-Za-z_][\w]*)`)
)

func scanPHP(text string) map[string]struct{} {
	symbols := make(map[string]struct{})
	for _, re := range []*regexp.Regexp{phpFunction, phpClass, phpInterface, phpTrait} {
		for k := range findAllGroup1(re, text) {
			symbols[k] = struct{}{}
		}
	}
	return symbols
}

var (
	rustFn     = regexp.MustCompile(`\bfn\s+([A-Za-z_][\w]*)`)
	rustStruct = regexp.MustCompile(`\bstruct\s+([A-Za-z_][\w]*)`)
	rustEnum   = regexp.MustCompile(`\benum\s+([A-Za-z_][\w]*)`)
	rustTrait  = regexp.MustCompile(`\btrait\s+([A-Za-z_][\w]*)`)
)

func scanRust(text string) map[string]struct{} {
	symbols := make(map[string]struct{})
	for _, re := range []*regexp.Regexp{rustFn, rustStruct, rustEnum, rustTrait} {
		for k := range findAllGroup1(re, text) {
			symbols[k] = struct{}{}
		}
	}
	return symbols
}

// moduleQNForPath builds a qualified module name for a file, special-casing
// Python's __init__.py and Rust's mod.rs to use their parent directory's
// path segments instead of the file's own stem.
func (s *Scanner) moduleQNForPath(path, language string) string {
	rel, err := filepath.Rel(s.RepoPath, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	dir, base := filepath.Split(rel)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var segments []string
	if base == "__init__.py" || base == "mod.rs" {
		dir = strings.TrimSuffix(dir, "/")
		if dir != "" {
			segments = strings.Split(dir, "/")
		}
	} else {
		dir = strings.TrimSuffix(dir, "/")
		if dir != "" {
			segments = append(segments, strings.Split(dir, "/")...)
		}
		segments = append(segments, stem)
	}

	parts := append([]string{s.ProjectName}, segments...)
	return strings.Join(parts, ".")
}
