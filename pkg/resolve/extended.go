// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package resolve

import (
	"context"
	"regexp"
	"strings"

	"github.com/kraklabs/cie-graph/pkg/entityextract"
	"github.com/kraklabs/cie-graph/pkg/graphmodel"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
)

// ExtendedRelationPass ingests DECORATES/ANNOTATES and THROWS/CAUGHT_BY
// edges, grounded on extended_relation_pass.py's
// _ingest_decorator_relations/_ingest_exception_relations. The Python
// original sources decorator/exception lists from a dedicated
// EnhancedFunctionExtractor AST walk that isn't part of this retrieval
// pack (only its caller is); entityextract.FunctionEntity likewise
// carries no decorator/exception fields. Rather than inventing that
// extractor's tree-sitter queries from nothing, this pass re-scans the
// function's own source lines (StartLine..EndLine, plus the lines
// immediately above for decorators) with the same kind of line-oriented
// regex this module already uses for Django views and Tailwind classes
// — a shallower substitute for the same extraction step, not a
// different feature set.
type ExtendedRelationPass struct {
	Sink ingestor.Sink
}

// NewExtendedRelationPass constructs an ExtendedRelationPass bound to a sink.
func NewExtendedRelationPass(sink ingestor.Sink) *ExtendedRelationPass {
	return &ExtendedRelationPass{Sink: sink}
}

var (
	pyDecoratorPattern    = regexp.MustCompile(`^@([A-Za-z_][A-Za-z0-9_.]*)(\(.*\))?`)
	javaAnnotationPattern = regexp.MustCompile(`^@([A-Za-z_][A-Za-z0-9_.]*)(\(.*\))?`)
	pyRaisePattern        = regexp.MustCompile(`\braise\s+([A-Za-z_][A-Za-z0-9_.]*)`)
	pyExceptPattern       = regexp.MustCompile(`\bexcept\s+([A-Za-z_][A-Za-z0-9_.]*(?:\s*,\s*[A-Za-z_][A-Za-z0-9_.]*)*)\s*(?:as\s+\w+)?\s*:`)
	javaThrowsPattern     = regexp.MustCompile(`\bthrows\s+([A-Za-z_][A-Za-z0-9_.,\s]*?)\s*\{`)
	javaThrowPattern      = regexp.MustCompile(`\bthrow\s+new\s+([A-Za-z_][A-Za-z0-9_.]*)`)
	javaCatchPattern      = regexp.MustCompile(`\bcatch\s*\(\s*([A-Za-z_][A-Za-z0-9_.]*(?:\s*\|\s*[A-Za-z_][A-Za-z0-9_.]*)*)\s+\w+\s*\)`)
)

// Decorator is one detected decorator/annotation: Name is its
// normalized identifier (dotted, call-args stripped); Args is the raw,
// unparsed text between its parentheses, kept alongside Name rather
// than discarded so a future consumer can widen the edge model (e.g.
// route paths, DI lifetimes) without re-scanning the source — spec.md's
// own suggested mitigation for the normalizer's argument-dropping
// tradeoff.
type Decorator struct {
	Name string
	Args string
}

// ExtractDecorators returns the Python-style "@decorator(...)" or
// Java-style "@Annotation(...)" lines immediately preceding startLine
// (1-indexed, tolerating blank lines between stacked decorators the way
// a decorator stack reads).
func ExtractDecorators(lines []string, startLine int, language string) []Decorator {
	var pattern *regexp.Regexp
	switch language {
	case "python":
		pattern = pyDecoratorPattern
	case "java":
		pattern = javaAnnotationPattern
	default:
		return nil
	}

	var decorators []Decorator
	for i := startLine - 2; i >= 0 && i < len(lines); i-- {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		m := pattern.FindStringSubmatch(trimmed)
		if m == nil {
			break
		}
		args := strings.TrimSuffix(strings.TrimPrefix(m[2], "("), ")")
		decorators = append([]Decorator{{Name: m[1], Args: args}}, decorators...)
	}
	return decorators
}

// ExtractThrownExceptions returns the exception/error types a function's
// body raises or declares, scanning lines[startLine-1:endLine].
func ExtractThrownExceptions(lines []string, startLine, endLine int, language string) []string {
	var out []string
	seen := make(map[string]bool)
	for i := clampLine(startLine - 1); i < clampLine(endLine) && i < len(lines); i++ {
		line := lines[i]
		switch language {
		case "python":
			if m := pyRaisePattern.FindStringSubmatch(line); m != nil {
				addUnique(&out, seen, m[1])
			}
		case "java":
			if m := javaThrowsPattern.FindStringSubmatch(line); m != nil {
				for _, t := range strings.Split(m[1], ",") {
					addUnique(&out, seen, strings.TrimSpace(t))
				}
			}
			if m := javaThrowPattern.FindStringSubmatch(line); m != nil {
				addUnique(&out, seen, m[1])
			}
		}
	}
	return out
}

// ExtractCaughtExceptions returns the exception types a function's body
// catches, scanning lines[startLine-1:endLine].
func ExtractCaughtExceptions(lines []string, startLine, endLine int, language string) []string {
	var out []string
	seen := make(map[string]bool)
	for i := clampLine(startLine - 1); i < clampLine(endLine) && i < len(lines); i++ {
		line := lines[i]
		switch language {
		case "python":
			if m := pyExceptPattern.FindStringSubmatch(line); m != nil {
				for _, t := range strings.Split(m[1], ",") {
					addUnique(&out, seen, strings.TrimSpace(t))
				}
			}
		case "java":
			if m := javaCatchPattern.FindStringSubmatch(line); m != nil {
				for _, t := range strings.Split(m[1], "|") {
					addUnique(&out, seen, strings.TrimSpace(t))
				}
			}
		}
	}
	return out
}

func clampLine(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func addUnique(out *[]string, seen map[string]bool, name string) {
	if name == "" || seen[name] {
		return
	}
	seen[name] = true
	*out = append(*out, name)
}

// ProcessDecorators ingests DECORATES/ANNOTATES edges for one function
// entity's decorators. moduleQN resolves a bare decorator name
// ("@app.route" stays dotted as-is, "@staticmethod" becomes
// "module_qn.staticmethod") the same way the Python original's
// _ingest_decorator_relations does.
func (p *ExtendedRelationPass) ProcessDecorators(ctx context.Context, fn entityextract.FunctionEntity, label graphmodel.Label, moduleQN, language string, decorators []Decorator) error {
	relType := graphmodel.RelDecorates
	if language == "java" {
		relType = graphmodel.RelAnnotates
	}

	for _, decorator := range decorators {
		normalized := strings.TrimSpace(decorator.Name)
		if normalized == "" {
			continue
		}

		var decoratorQN, simpleName string
		if strings.Contains(normalized, ".") {
			decoratorQN = normalized
			parts := strings.Split(normalized, ".")
			simpleName = parts[len(parts)-1]
		} else {
			decoratorQN = moduleQN + "." + normalized
			simpleName = normalized
		}

		if err := p.Sink.EnsureNode(ctx, graphmodel.LabelFunction, decoratorQN, simpleName, nil, true); err != nil {
			return err
		}
		props := map[string]any{}
		if decorator.Args != "" {
			props["args"] = decorator.Args
		} else {
			props = nil
		}
		if err := p.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(graphmodel.LabelFunction, decoratorQN), relType,
			graphmodel.NewRef(label, fn.QualifiedName), props); err != nil {
			return err
		}
	}
	return nil
}

// ProcessExceptions ingests THROWS (function -> exception type) and
// CAUGHT_BY (exception type -> function, the inverse direction) edges.
func (p *ExtendedRelationPass) ProcessExceptions(ctx context.Context, fn entityextract.FunctionEntity, label graphmodel.Label, thrown, caught []string) error {
	for _, exc := range thrown {
		if err := p.Sink.EnsureNode(ctx, graphmodel.LabelType, exc, exc, nil, true); err != nil {
			return err
		}
		if err := p.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(label, fn.QualifiedName), graphmodel.RelThrows,
			graphmodel.NewRef(graphmodel.LabelType, exc), nil); err != nil {
			return err
		}
	}

	for _, exc := range caught {
		if err := p.Sink.EnsureNode(ctx, graphmodel.LabelType, exc, exc, nil, true); err != nil {
			return err
		}
		if err := p.Sink.EnsureRelationship(ctx,
			graphmodel.NewRef(graphmodel.LabelType, exc), graphmodel.RelCaughtBy,
			graphmodel.NewRef(label, fn.QualifiedName), nil); err != nil {
			return err
		}
	}
	return nil
}

// Process runs decorator and exception ingestion for one function
// against its file's full source (split into lines by the caller once
// per file, not per function, for efficiency across many functions).
func (p *ExtendedRelationPass) Process(ctx context.Context, fn entityextract.FunctionEntity, label graphmodel.Label, moduleQN, language string, lines []string) error {
	decorators := ExtractDecorators(lines, fn.StartLine, language)
	if err := p.ProcessDecorators(ctx, fn, label, moduleQN, language, decorators); err != nil {
		return err
	}

	thrown := ExtractThrownExceptions(lines, fn.StartLine, fn.EndLine, language)
	caught := ExtractCaughtExceptions(lines, fn.StartLine, fn.EndLine, language)
	return p.ProcessExceptions(ctx, fn, label, thrown, caught)
}
