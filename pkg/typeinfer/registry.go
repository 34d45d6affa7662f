// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package typeinfer

import "sync"

// Registry is the global per-language registry of known types and
// function signatures, ported from
// original_source/codebase_rag/parsers/type_inference/context.py's
// TypeRegistry.
type Registry struct {
	language string

	mu           sync.RWMutex
	types        map[string]Result
	functionSigs map[string]FunctionSignature
	typeMappings map[string]string
}

// NewRegistry constructs a registry pre-seeded with language builtins.
func NewRegistry(language string) *Registry {
	r := &Registry{
		language:     language,
		types:        make(map[string]Result),
		functionSigs: make(map[string]FunctionSignature),
		typeMappings: make(map[string]string),
	}
	r.loadBuiltins()
	return r
}

// RegisterType records a known type.
func (r *Registry) RegisterType(typeString string, result Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[typeString] = result
}

// LookupType looks up a previously registered type.
func (r *Registry) LookupType(typeString string) (Result, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[typeString]
	return t, ok
}

// RegisterFunction records a known function signature under a caller-chosen key.
func (r *Registry) RegisterFunction(key string, sig FunctionSignature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functionSigs[key] = sig
}

// LookupFunction looks up a previously registered function signature.
func (r *Registry) LookupFunction(key string) (FunctionSignature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sig, ok := r.functionSigs[key]
	return sig, ok
}

// AddTypeMapping records an alias -> canonical type mapping (e.g. a
// TypeScript `type ID = string` alias).
func (r *Registry) AddTypeMapping(alias, canonical string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typeMappings[alias] = canonical
}

// ResolveTypeMapping resolves an alias to its canonical type, returning the
// alias itself if no mapping is registered.
func (r *Registry) ResolveTypeMapping(alias string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if canonical, ok := r.typeMappings[alias]; ok {
		return canonical
	}
	return alias
}

// Stats reports registry population counts.
type Stats struct {
	Language            string
	TypesRegistered     int
	FunctionsRegistered int
	TypeMappings        int
}

// Stats reports population counts for observability/logging.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		Language:            r.language,
		TypesRegistered:     len(r.types),
		FunctionsRegistered: len(r.functionSigs),
		TypeMappings:        len(r.typeMappings),
	}
}

func (r *Registry) loadBuiltins() {
	for name := range builtinTypes(r.language) {
		r.RegisterType(name, Result{
			TypeString: name,
			Confidence: 1.0,
			Source:     SourceBuiltin,
			Language:   r.language,
		})
	}
}

// builtinTypes mirrors TypeRegistry._get_builtin_types; languages with no
// entry here (the data-only languages spec.md names explicitly: JSON,
// YAML, HTML, CSS, SCSS, GraphQL, Dockerfile, SQL, Vue, Svelte) get an
// empty map and therefore only ever resolve types via annotation/usage
// strategies, never via a builtin lookup — the degenerate-but-correct
// behavior spec.md requires for languages with no type system to speak of.
func builtinTypes(language string) map[string]string {
	switch language {
	case "python":
		return map[string]string{
			"int": "int", "float": "float", "str": "str", "bool": "bool",
			"list": "list", "dict": "dict", "tuple": "tuple", "set": "set",
			"None": "NoneType", "Any": "Any",
		}
	case "javascript":
		return map[string]string{
			"number": "number", "string": "string", "boolean": "boolean",
			"undefined": "undefined", "null": "null", "object": "object",
			"Array": "Array", "any": "any",
		}
	case "typescript":
		return map[string]string{
			"number": "number", "string": "string", "boolean": "boolean",
			"undefined": "undefined", "null": "null", "any": "any",
			"void": "void", "never": "never",
		}
	case "go":
		return map[string]string{
			"int": "int", "int64": "int64", "int32": "int32", "float64": "float64",
			"string": "string", "bool": "bool", "error": "error", "byte": "byte",
			"rune": "rune", "any": "any",
		}
	case "csharp":
		return map[string]string{
			"int": "int", "long": "long", "float": "float", "double": "double",
			"bool": "bool", "char": "char", "byte": "byte", "short": "short",
			"string": "System.String", "object": "System.Object",
		}
	case "php":
		return map[string]string{
			"int": "int", "float": "float", "string": "string", "bool": "bool",
			"array": "array", "null": "null", "mixed": "mixed",
		}
	case "rust":
		return map[string]string{
			"i32": "i32", "i64": "i64", "u32": "u32", "u64": "u64", "f32": "f32",
			"f64": "f64", "bool": "bool", "str": "str", "String": "String",
		}
	default:
		return map[string]string{}
	}
}
