// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// C#, PHP, and Rust entity extraction. None of these have a teacher or
// other-pack equivalent (kraklabs-cie wires only Go/TypeScript grammars,
// and original_source's kept files stop at pre_scanner.py's regexes for
// these languages). These three extractors deliberately cover functions
// and types only, with no call-graph extraction — a narrower scope than
// Go/TypeScript/Python above, recorded honestly in DESIGN.md as a
// depth/breadth tradeoff rather than carried silently. Each follows the
// same dispatch-by-node-type shape as GoExtractor/PythonExtractor, applied
// to each grammar's declaration node names.
package entityextract

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// CSharpExtractor extracts functions and types from a C# file.
type CSharpExtractor struct {
	Registry   *FunctionRegistry
	SimpleName *SimpleNameIndex
}

// NewCSharpExtractor constructs a C# extractor.
func NewCSharpExtractor(registry *FunctionRegistry, simpleName *SimpleNameIndex) *CSharpExtractor {
	return &CSharpExtractor{Registry: registry, SimpleName: simpleName}
}

// Extract walks root and produces functions/types/imports for one C# file.
func (g *CSharpExtractor) Extract(root *sitter.Node, content []byte, filePath, moduleQN string) *ParseResult {
	result := &ParseResult{ModuleQN: moduleQN}
	if root == nil {
		return result
	}
	walkDeclarations(root, content, filePath, moduleQN, csharpNodeKinds, result)
	for _, fn := range result.Functions {
		g.Registry.Add(fn.QualifiedName)
		g.SimpleName.Add(fn.QualifiedName)
	}
	for _, ty := range result.Types {
		g.SimpleName.Add(ty.QualifiedName)
	}
	walkUsings(root, content, filePath, "using_directive", &result.Imports)
	return result
}

// PHPExtractor extracts functions and types from a PHP file.
type PHPExtractor struct {
	Registry   *FunctionRegistry
	SimpleName *SimpleNameIndex
}

// NewPHPExtractor constructs a PHP extractor.
func NewPHPExtractor(registry *FunctionRegistry, simpleName *SimpleNameIndex) *PHPExtractor {
	return &PHPExtractor{Registry: registry, SimpleName: simpleName}
}

// Extract walks root and produces functions/types for one PHP file.
func (g *PHPExtractor) Extract(root *sitter.Node, content []byte, filePath, moduleQN string) *ParseResult {
	result := &ParseResult{ModuleQN: moduleQN}
	if root == nil {
		return result
	}
	walkDeclarations(root, content, filePath, moduleQN, phpNodeKinds, result)
	for _, fn := range result.Functions {
		g.Registry.Add(fn.QualifiedName)
		g.SimpleName.Add(fn.QualifiedName)
	}
	for _, ty := range result.Types {
		g.SimpleName.Add(ty.QualifiedName)
	}
	return result
}

// RustExtractor extracts functions and types from a Rust file.
type RustExtractor struct {
	Registry   *FunctionRegistry
	SimpleName *SimpleNameIndex
}

// NewRustExtractor constructs a Rust extractor.
func NewRustExtractor(registry *FunctionRegistry, simpleName *SimpleNameIndex) *RustExtractor {
	return &RustExtractor{Registry: registry, SimpleName: simpleName}
}

// Extract walks root and produces functions/types for one Rust file.
func (g *RustExtractor) Extract(root *sitter.Node, content []byte, filePath, moduleQN string) *ParseResult {
	result := &ParseResult{ModuleQN: moduleQN}
	if root == nil {
		return result
	}
	walkDeclarations(root, content, filePath, moduleQN, rustNodeKinds, result)
	for _, fn := range result.Functions {
		g.Registry.Add(fn.QualifiedName)
		g.SimpleName.Add(fn.QualifiedName)
	}
	for _, ty := range result.Types {
		g.SimpleName.Add(ty.QualifiedName)
	}
	walkUsings(root, content, filePath, "use_declaration", &result.Imports)
	return result
}

// declKinds maps a grammar's function-like and type-like declaration node
// types to the TypeEntity.Kind the matching node represents ("" for
// functions, which are tracked separately).
type declKinds struct {
	function []string
	types    map[string]string // node type -> Kind
}

var csharpNodeKinds = declKinds{
	function: []string{"method_declaration", "local_function_statement", "constructor_declaration"},
	types: map[string]string{
		"class_declaration":     "class",
		"interface_declaration": "interface",
		"struct_declaration":    "struct",
		"record_declaration":    "class",
		"enum_declaration":      "enum",
	},
}

var phpNodeKinds = declKinds{
	function: []string{"function_definition", "method_declaration"},
	types: map[string]string{
		"class_declaration":     "class",
		"interface_declaration": "interface",
		"trait_declaration":     "trait",
	},
}

var rustNodeKinds = declKinds{
	function: []string{"function_item"},
	types: map[string]string{
		"struct_item": "struct",
		"enum_item":   "enum",
		"trait_item":  "trait",
	},
}

func walkDeclarations(node *sitter.Node, content []byte, filePath, moduleQN string, kinds declKinds, result *ParseResult) {
	if node == nil {
		return
	}

	nodeType := node.Type()
	for _, fnKind := range kinds.function {
		if nodeType == fnKind {
			if nameNode := node.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, content)
				result.Functions = append(result.Functions, FunctionEntity{
					QualifiedName: moduleQN + "." + name,
					Name:          name,
					FilePath:      filePath,
					StartLine:     int(node.StartPoint().Row) + 1,
					EndLine:       int(node.EndPoint().Row) + 1,
					StartCol:      int(node.StartPoint().Column) + 1,
					EndCol:        int(node.EndPoint().Column) + 1,
					IsExported:    true,
				})
			}
			break
		}
	}
	if kind, ok := kinds.types[nodeType]; ok {
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			name := nodeText(nameNode, content)
			result.Types = append(result.Types, TypeEntity{
				QualifiedName: moduleQN + "." + name,
				Name:          name,
				FilePath:      filePath,
				Kind:          kind,
				StartLine:     int(node.StartPoint().Row) + 1,
				EndLine:       int(node.EndPoint().Row) + 1,
			})
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkDeclarations(node.Child(i), content, filePath, moduleQN, kinds, result)
	}
}

func walkUsings(node *sitter.Node, content []byte, filePath, nodeType string, imports *[]ImportEntity) {
	if node == nil {
		return
	}
	if node.Type() == nodeType {
		*imports = append(*imports, ImportEntity{
			FilePath:   filePath,
			ImportPath: nodeText(node, content),
			StartLine:  int(node.StartPoint().Row) + 1,
		})
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkUsings(node.Child(i), content, filePath, nodeType, imports)
	}
}
