// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// JavaScript/TypeScript entity extraction, ported from
// kraklabs-cie/pkg/ingestion/parser_typescript.go (walkTSFunctions,
// extractTSInterface/extractTSClass/extractTSTypeAlias) and generalized
// to cover plain JavaScript function forms the teacher's walker already
// recognizes (function_declaration, arrow/function expressions assigned
// to a variable_declarator, method_definition, anonymous arrow functions).
package entityextract

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// TSExtractor extracts entities from a JavaScript or TypeScript file.
// The same walker serves both: TypeScript-only node types
// (method_signature, function_signature, interface_declaration,
// type_alias_declaration) simply never appear in plain JS ASTs.
type TSExtractor struct {
	Registry   *FunctionRegistry
	SimpleName *SimpleNameIndex
}

// NewTSExtractor constructs an extractor that feeds the given registries.
func NewTSExtractor(registry *FunctionRegistry, simpleName *SimpleNameIndex) *TSExtractor {
	return &TSExtractor{Registry: registry, SimpleName: simpleName}
}

type tsWalkCtx struct {
	moduleQN    string
	content     []byte
	filePath    string
	anonCounter int
	functions   []goFnWithNode
}

// Extract walks root and produces the ParseResult for one JS/TS file.
func (g *TSExtractor) Extract(root *sitter.Node, content []byte, filePath, moduleQN string) *ParseResult {
	result := &ParseResult{ModuleQN: moduleQN}
	if root == nil {
		return result
	}

	ctx := &tsWalkCtx{moduleQN: moduleQN, content: content, filePath: filePath}
	g.walkFunctions(root, ctx)

	funcNameToQN := make(map[string]string, len(ctx.functions))
	for _, fn := range ctx.functions {
		funcNameToQN[NormalizeSimpleName(fn.entity.Name)] = fn.entity.QualifiedName
		g.Registry.Add(fn.entity.QualifiedName)
		g.SimpleName.Add(fn.entity.QualifiedName)
		result.Functions = append(result.Functions, fn.entity)
	}

	for _, fn := range ctx.functions {
		calls, unresolved := extractJSCalls(fn.node, content, fn.entity.QualifiedName, funcNameToQN, filePath)
		result.Calls = append(result.Calls, calls...)
		result.UnresolvedCalls = append(result.UnresolvedCalls, unresolved...)
	}

	result.Types = extractTSTypes(root, content, filePath, moduleQN)
	for _, ty := range result.Types {
		g.SimpleName.Add(ty.QualifiedName)
	}
	result.Imports = extractESImports(root, content, filePath)

	return result
}

func (g *TSExtractor) walkFunctions(node *sitter.Node, ctx *tsWalkCtx) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_declaration":
		if fn := extractJSNamedFunction(node, ctx); fn != nil {
			ctx.functions = append(ctx.functions, goFnWithNode{entity: *fn, node: node})
		}
	case "variable_declarator":
		nameNode := node.ChildByFieldName("name")
		valueNode := node.ChildByFieldName("value")
		if nameNode != nil && valueNode != nil {
			switch valueNode.Type() {
			case "arrow_function", "function_expression", "function":
				if fn := extractJSAssignedFunction(nameNode, valueNode, ctx); fn != nil {
					ctx.functions = append(ctx.functions, goFnWithNode{entity: *fn, node: valueNode})
				}
			}
		}
	case "method_definition", "method_signature":
		if fn := extractJSMethodLike(node, ctx); fn != nil {
			ctx.functions = append(ctx.functions, goFnWithNode{entity: *fn, node: node})
		}
	case "function_signature":
		if fn := extractJSNamedFunction(node, ctx); fn != nil {
			ctx.functions = append(ctx.functions, goFnWithNode{entity: *fn, node: node})
		}
	case "arrow_function":
		parent := node.Parent()
		if parent == nil || parent.Type() != "variable_declarator" {
			ctx.anonCounter++
			name := fmt.Sprintf("$anon_%d", ctx.anonCounter)
			fn := buildJSFunctionEntity(node, ctx, name, name, false)
			ctx.functions = append(ctx.functions, goFnWithNode{entity: *fn, node: node})
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		g.walkFunctions(node.Child(i), ctx)
	}
}

func extractJSNamedFunction(node *sitter.Node, ctx *tsWalkCtx) *FunctionEntity {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, ctx.content)
	return buildJSFunctionEntity(node, ctx, name, name, false)
}

func extractJSAssignedFunction(nameNode, valueNode *sitter.Node, ctx *tsWalkCtx) *FunctionEntity {
	name := nodeText(nameNode, ctx.content)
	return buildJSFunctionEntity(valueNode, ctx, name, name, false)
}

func extractJSMethodLike(node *sitter.Node, ctx *tsWalkCtx) *FunctionEntity {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, ctx.content)
	return buildJSFunctionEntity(node, ctx, name, name, false)
}

func buildJSFunctionEntity(node *sitter.Node, ctx *tsWalkCtx, fullName, leafName string, anon bool) *FunctionEntity {
	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1
	startCol := int(node.StartPoint().Column) + 1
	endCol := int(node.EndPoint().Column) + 1

	qn := ctx.moduleQN + "." + fullName

	var params []ParamInfo
	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		for i := 0; i < int(paramsNode.ChildCount()); i++ {
			child := paramsNode.Child(i)
			switch child.Type() {
			case "identifier", "required_parameter", "optional_parameter":
				params = append(params, ParamInfo{Name: nodeText(child, ctx.content)})
			}
		}
	}

	return &FunctionEntity{
		QualifiedName: qn,
		Name:          fullName,
		FilePath:      ctx.filePath,
		Params:        params,
		StartLine:     startLine,
		EndLine:       endLine,
		StartCol:      startCol,
		EndCol:        endCol,
		IsAnonymous:   anon,
		IsExported:    true,
	}
}

func extractTSTypes(root *sitter.Node, content []byte, filePath, moduleQN string) []TypeEntity {
	var types []TypeEntity
	walkTSTypes(root, content, filePath, moduleQN, &types)
	return types
}

func walkTSTypes(node *sitter.Node, content []byte, filePath, moduleQN string, types *[]TypeEntity) {
	if node == nil {
		return
	}

	kind := ""
	switch node.Type() {
	case "interface_declaration":
		kind = "interface"
	case "class_declaration":
		kind = "class"
	case "type_alias_declaration":
		kind = "type_alias"
	}
	if kind != "" {
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			name := nodeText(nameNode, content)
			*types = append(*types, TypeEntity{
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
		walkTSTypes(node.Child(i), content, filePath, moduleQN, types)
	}
}

func extractESImports(root *sitter.Node, content []byte, filePath string) []ImportEntity {
	var imports []ImportEntity
	walkESImports(root, content, filePath, &imports)
	return imports
}

func walkESImports(node *sitter.Node, content []byte, filePath string, imports *[]ImportEntity) {
	if node == nil {
		return
	}
	if node.Type() == "import_statement" {
		if src := node.ChildByFieldName("source"); src != nil {
			path := trimQuotes(nodeText(src, content))
			*imports = append(*imports, ImportEntity{
				FilePath:   filePath,
				ImportPath: path,
				StartLine:  int(node.StartPoint().Row) + 1,
			})
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkESImports(node.Child(i), content, filePath, imports)
	}
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}

func extractJSCalls(fnNode *sitter.Node, content []byte, callerQN string, funcNameToQN map[string]string, filePath string) ([]CallsEdge, []UnresolvedCall) {
	var calls []CallsEdge
	var unresolved []UnresolvedCall
	if fnNode == nil {
		return calls, unresolved
	}

	bodyNode := fnNode.ChildByFieldName("body")
	if bodyNode == nil {
		return calls, unresolved
	}

	walkJSCallExpressions(bodyNode, content, callerQN, funcNameToQN, filePath, &calls, &unresolved)
	return calls, unresolved
}

func walkJSCallExpressions(node *sitter.Node, content []byte, callerQN string, funcNameToQN map[string]string, filePath string, calls *[]CallsEdge, unresolved *[]UnresolvedCall) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		if fnNode := node.ChildByFieldName("function"); fnNode != nil {
			calleeFull := jsCalleeName(fnNode, content)
			simple := NormalizeSimpleName(calleeFull)
			if qn, ok := funcNameToQN[simple]; ok && calleeFull == simple {
				*calls = append(*calls, CallsEdge{CallerQN: callerQN, CalleeQN: qn})
			} else if calleeFull != "" {
				*unresolved = append(*unresolved, UnresolvedCall{
					CallerQN:   callerQN,
					CalleeName: calleeFull,
					FilePath:   filePath,
					Line:       int(node.StartPoint().Row) + 1,
				})
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkJSCallExpressions(node.Child(i), content, callerQN, funcNameToQN, filePath, calls, unresolved)
	}
}

func jsCalleeName(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "identifier":
		return nodeText(node, content)
	case "member_expression":
		return nodeText(node, content)
	}
	return ""
}
