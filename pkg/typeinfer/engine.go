// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package typeinfer

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Strategy names a type-inference strategy, matching
// infer_type_with_strategies's "annotation"/"inference"/"registry"/
// "builtin" string set.
type Strategy string

const (
	StrategyAnnotation Strategy = "annotation"
	StrategyInference  Strategy = "inference"
	StrategyRegistry   Strategy = "registry"
	StrategyBuiltin    Strategy = "builtin"
)

// Engine is the per-language type inference strategy chain. Each language
// implementation supplies the three hooks below; Engine sequences them
// and owns the shared scoring/caching behavior, mirroring
// BaseTypeInferenceEngine's non-abstract methods.
type Engine struct {
	Language string
	Registry *Registry

	// InferFromAnnotation extracts a type from an explicit annotation on
	// node (e.g. a Python type hint, a Go parameter type, a TS type
	// annotation). Confidence should be 1.0 when it returns non-nil.
	InferFromAnnotation func(node *sitter.Node, ctx *Context) *Result

	// InferFromUsage infers a type from how a variable/parameter is used
	// (assignment RHS shape, constructor calls, literal values).
	// Confidence should fall in [0.6, 0.9].
	InferFromUsage func(node *sitter.Node, ctx *Context) *Result

	// ResolveCallTarget resolves a call/method-call node to the fully
	// qualified name of its target, or "" if it cannot be determined
	// from local information alone (cross-file resolution is
	// pkg/resolve's job).
	ResolveCallTarget func(node *sitter.Node, ctx *Context) string
}

// NewEngine constructs an Engine backed by a fresh builtin-seeded registry.
func NewEngine(language string) *Engine {
	return &Engine{Language: language, Registry: NewRegistry(language)}
}

// InferType runs the given strategies in order against node, returning the
// first non-nil result. Mirrors infer_type_with_strategies exactly,
// including silently skipping a strategy whose hook was left nil (the
// teacher's Python base class returns None from every hook by default;
// this is the Go equivalent of "subclass did not override").
func (e *Engine) InferType(node *sitter.Node, ctx *Context, strategies []Strategy) *Result {
	for _, strategy := range strategies {
		var result *Result
		switch strategy {
		case StrategyAnnotation:
			if e.InferFromAnnotation != nil {
				result = e.InferFromAnnotation(node, ctx)
			}
		case StrategyInference:
			if e.InferFromUsage != nil {
				result = e.InferFromUsage(node, ctx)
			}
		case StrategyRegistry, StrategyBuiltin:
			result = e.inferFromRegistry(node, ctx)
		}
		if result != nil {
			return result
		}
	}
	return nil
}

// inferFromRegistry looks up the node's source text directly in the
// registry (covers both the "registry" and "builtin" strategies, since
// builtins are themselves pre-loaded registry entries at confidence 1.0).
func (e *Engine) inferFromRegistry(node *sitter.Node, ctx *Context) *Result {
	if node == nil || ctx == nil || ctx.Source == nil {
		return nil
	}
	text := string(ctx.Source[node.StartByte():node.EndByte()])
	if text == "" {
		return nil
	}
	if result, ok := e.Registry.LookupType(text); ok {
		r := result
		return &r
	}
	return nil
}

// DefaultStrategies is the standard strategy order spec.md describes:
// annotation first, then usage inference, then registry/builtin lookup.
var DefaultStrategies = []Strategy{StrategyAnnotation, StrategyInference, StrategyRegistry}
