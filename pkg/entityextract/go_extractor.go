// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Go entity extraction, ported from kraklabs-cie/pkg/ingestion/parser_go.go
// (walkGoAST / extractGoFunctionDeclaration / extractGoMethodDeclaration /
// extractGoFuncLiteral / extractGoImports / extractGoTypes /
// extractGoCallsFromNodeV2), generalized from ID-string keys to QNs.
package entityextract

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// GoExtractor extracts entities from a Go file's parsed AST.
type GoExtractor struct {
	Registry   *FunctionRegistry
	SimpleName *SimpleNameIndex
}

// NewGoExtractor constructs an extractor that feeds the given registries.
func NewGoExtractor(registry *FunctionRegistry, simpleName *SimpleNameIndex) *GoExtractor {
	return &GoExtractor{Registry: registry, SimpleName: simpleName}
}

type goWalkCtx struct {
	moduleQN    string
	content     []byte
	filePath    string
	anonCounter int
	functions   []goFnWithNode
}

type goFnWithNode struct {
	entity FunctionEntity
	node   *sitter.Node
}

// Extract walks root and produces the Go ParseResult for one file.
func (g *GoExtractor) Extract(root *sitter.Node, content []byte, filePath, moduleQN string) *ParseResult {
	result := &ParseResult{ModuleQN: moduleQN}
	if root == nil {
		return result
	}

	result.PackageName = extractGoPackageName(root, content)
	result.Imports = extractGoImports(root, content, filePath)

	ctx := &goWalkCtx{moduleQN: moduleQN, content: content, filePath: filePath}
	g.walk(root, ctx)

	funcNameToQN := make(map[string]string, len(ctx.functions))
	for _, fn := range ctx.functions {
		funcNameToQN[NormalizeSimpleName(fn.entity.Name)] = fn.entity.QualifiedName
		g.Registry.Add(fn.entity.QualifiedName)
		g.SimpleName.Add(fn.entity.QualifiedName)
		result.Functions = append(result.Functions, fn.entity)
	}

	for _, fn := range ctx.functions {
		calls, unresolved := extractGoCalls(fn.node, content, fn.entity.QualifiedName, funcNameToQN, filePath)
		result.Calls = append(result.Calls, calls...)
		result.UnresolvedCalls = append(result.UnresolvedCalls, unresolved...)
	}

	result.Types = extractGoTypes(root, content, filePath, moduleQN)
	for _, ty := range result.Types {
		g.SimpleName.Add(ty.QualifiedName)
	}

	return result
}

func (g *GoExtractor) walk(node *sitter.Node, ctx *goWalkCtx) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_declaration":
		if fn := extractGoFunctionDeclaration(node, ctx); fn != nil {
			ctx.functions = append(ctx.functions, goFnWithNode{entity: *fn, node: node})
		}
	case "method_declaration":
		if fn := extractGoMethodDeclaration(node, ctx); fn != nil {
			ctx.functions = append(ctx.functions, goFnWithNode{entity: *fn, node: node})
		}
	case "func_literal":
		if fn := extractGoFuncLiteral(node, ctx); fn != nil {
			ctx.functions = append(ctx.functions, goFnWithNode{entity: *fn, node: node})
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		g.walk(node.Child(i), ctx)
	}
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}

func extractGoFunctionDeclaration(node *sitter.Node, ctx *goWalkCtx) *FunctionEntity {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, ctx.content)
	return buildGoFunctionEntity(node, ctx, name, name, "", false)
}

func extractGoMethodDeclaration(node *sitter.Node, ctx *goWalkCtx) *FunctionEntity {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	methodName := nodeText(nameNode, ctx.content)

	receiverType := ""
	if receiverNode := node.ChildByFieldName("receiver"); receiverNode != nil {
		receiverType = extractGoReceiverType(receiverNode, ctx.content)
	}

	fullName := methodName
	if receiverType != "" {
		fullName = receiverType + "." + methodName
	}
	return buildGoFunctionEntity(node, ctx, fullName, methodName, receiverType, false)
}

func extractGoFuncLiteral(node *sitter.Node, ctx *goWalkCtx) *FunctionEntity {
	ctx.anonCounter++
	name := fmt.Sprintf("$anon_%d", ctx.anonCounter)
	return buildGoFunctionEntity(node, ctx, name, name, "", true)
}

func buildGoFunctionEntity(node *sitter.Node, ctx *goWalkCtx, fullName, leafName, receiverType string, anon bool) *FunctionEntity {
	startLine := int(node.StartPoint().Row) + 1
	endLine := int(node.EndPoint().Row) + 1
	startCol := int(node.StartPoint().Column) + 1
	endCol := int(node.EndPoint().Column) + 1

	qn := ctx.moduleQN + "." + fullName
	exported := len(leafName) > 0 && leafName[0] >= 'A' && leafName[0] <= 'Z'

	var params []ParamInfo
	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		params = parseGoParams(paramsNode, ctx.content)
	}
	returnType := ""
	if resultNode := node.ChildByFieldName("result"); resultNode != nil {
		returnType = nodeText(resultNode, ctx.content)
	}

	return &FunctionEntity{
		QualifiedName: qn,
		Name:          fullName,
		FilePath:      ctx.filePath,
		ReceiverType:  receiverType,
		Params:        params,
		ReturnType:    returnType,
		StartLine:     startLine,
		EndLine:       endLine,
		StartCol:      startCol,
		EndCol:        endCol,
		IsAnonymous:   anon,
		IsExported:    exported,
	}
}

// parseGoParams splits a Go parameter_list node into ParamInfo entries.
// Grounded on the teacher's sigparse.go delegation pattern (a thin
// re-export over a dedicated signature parser), reimplemented directly
// against AST child nodes here since pkg/sigparse's own implementation is
// absent from the retrieval pack.
func parseGoParams(paramsNode *sitter.Node, content []byte) []ParamInfo {
	var params []ParamInfo
	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		decl := paramsNode.Child(i)
		if decl.Type() != "parameter_declaration" {
			continue
		}
		typeNode := decl.ChildByFieldName("type")
		typeName := nodeText(typeNode, content)
		foundName := false
		for j := 0; j < int(decl.ChildCount()); j++ {
			child := decl.Child(j)
			if child.Type() == "identifier" {
				params = append(params, ParamInfo{Name: nodeText(child, content), Type: typeName})
				foundName = true
			}
		}
		if !foundName {
			params = append(params, ParamInfo{Name: "", Type: typeName})
		}
	}
	return params
}

func extractGoReceiverType(receiverNode *sitter.Node, content []byte) string {
	for i := 0; i < int(receiverNode.ChildCount()); i++ {
		child := receiverNode.Child(i)
		if child.Type() == "parameter_declaration" {
			if typeNode := child.ChildByFieldName("type"); typeNode != nil {
				return extractGoBaseTypeName(typeNode, content)
			}
		}
	}
	return ""
}

func extractGoBaseTypeName(typeNode *sitter.Node, content []byte) string {
	if typeNode == nil {
		return ""
	}
	switch typeNode.Type() {
	case "pointer_type":
		for i := 0; i < int(typeNode.ChildCount()); i++ {
			child := typeNode.Child(i)
			if child.Type() != "*" {
				return extractGoBaseTypeName(child, content)
			}
		}
	case "generic_type":
		if nameNode := typeNode.ChildByFieldName("type"); nameNode != nil {
			return nodeText(nameNode, content)
		}
	case "type_identifier":
		return nodeText(typeNode, content)
	}
	return strings.TrimPrefix(nodeText(typeNode, content), "*")
}

func extractGoPackageName(root *sitter.Node, content []byte) string {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != "package_clause" {
			continue
		}
		if nameNode := child.ChildByFieldName("name"); nameNode != nil {
			return nodeText(nameNode, content)
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			if gc := child.Child(j); gc.Type() == "package_identifier" {
				return nodeText(gc, content)
			}
		}
	}
	return ""
}

func extractGoImports(root *sitter.Node, content []byte, filePath string) []ImportEntity {
	var imports []ImportEntity
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() == "import_declaration" {
			imports = append(imports, extractGoImportDeclaration(child, content, filePath)...)
		}
	}
	return imports
}

func extractGoImportDeclaration(node *sitter.Node, content []byte, filePath string) []ImportEntity {
	var imports []ImportEntity
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "import_spec":
			if imp := extractGoImportSpec(child, content, filePath); imp != nil {
				imports = append(imports, *imp)
			}
		case "import_spec_list":
			for j := 0; j < int(child.ChildCount()); j++ {
				spec := child.Child(j)
				if spec.Type() == "import_spec" {
					if imp := extractGoImportSpec(spec, content, filePath); imp != nil {
						imports = append(imports, *imp)
					}
				}
			}
		}
	}
	return imports
}

func extractGoImportSpec(node *sitter.Node, content []byte, filePath string) *ImportEntity {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child.Type() == "interpreted_string_literal" {
				pathNode = child
				break
			}
		}
	}
	if pathNode == nil {
		return nil
	}
	importPath := strings.Trim(nodeText(pathNode, content), `"`)

	alias := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		alias = nodeText(nameNode, content)
	} else {
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "dot", ".":
				alias = "."
			case "blank_identifier":
				alias = "_"
			case "package_identifier":
				alias = nodeText(child, content)
			}
			if alias != "" {
				break
			}
		}
	}

	return &ImportEntity{
		FilePath:   filePath,
		ImportPath: importPath,
		Alias:      alias,
		StartLine:  int(node.StartPoint().Row) + 1,
	}
}

func extractGoCalls(fnNode *sitter.Node, content []byte, callerQN string, funcNameToQN map[string]string, filePath string) ([]CallsEdge, []UnresolvedCall) {
	var calls []CallsEdge
	var unresolved []UnresolvedCall
	if fnNode == nil {
		return calls, unresolved
	}

	bodyNode := fnNode.ChildByFieldName("body")
	if bodyNode == nil {
		for i := 0; i < int(fnNode.ChildCount()); i++ {
			if child := fnNode.Child(i); child.Type() == "block" {
				bodyNode = child
				break
			}
		}
	}
	if bodyNode == nil {
		return calls, unresolved
	}

	walkGoCallExpressions(bodyNode, content, callerQN, funcNameToQN, filePath, &calls, &unresolved)
	return calls, unresolved
}

func walkGoCallExpressions(node *sitter.Node, content []byte, callerQN string, funcNameToQN map[string]string, filePath string, calls *[]CallsEdge, unresolved *[]UnresolvedCall) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		if fnNode := node.ChildByFieldName("function"); fnNode != nil {
			calleeSimple := extractGoCalleeName(fnNode, content)
			calleeFull := extractGoCalleeNameFull(fnNode, content)
			if qn, ok := funcNameToQN[calleeSimple]; ok && !strings.Contains(calleeFull, ".") {
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
		walkGoCallExpressions(node.Child(i), content, callerQN, funcNameToQN, filePath, calls, unresolved)
	}
}

func extractGoCalleeName(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "identifier":
		return nodeText(node, content)
	case "selector_expression":
		if fieldNode := node.ChildByFieldName("field"); fieldNode != nil {
			return nodeText(fieldNode, content)
		}
	case "index_expression":
		if operand := node.ChildByFieldName("operand"); operand != nil {
			return extractGoCalleeName(operand, content)
		}
	}
	return ""
}

func extractGoCalleeNameFull(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "identifier", "selector_expression":
		return nodeText(node, content)
	case "index_expression":
		if operand := node.ChildByFieldName("operand"); operand != nil {
			return extractGoCalleeNameFull(operand, content)
		}
	}
	return ""
}

func extractGoTypes(root *sitter.Node, content []byte, filePath, moduleQN string) []TypeEntity {
	var types []TypeEntity
	walkGoTypes(root, content, filePath, moduleQN, &types)
	return types
}

func walkGoTypes(node *sitter.Node, content []byte, filePath, moduleQN string, types *[]TypeEntity) {
	if node == nil {
		return
	}
	if node.Type() == "type_declaration" {
		for i := 0; i < int(node.ChildCount()); i++ {
			if spec := node.Child(i); spec.Type() == "type_spec" {
				if ty := extractGoTypeSpec(spec, content, filePath, moduleQN); ty != nil {
					*types = append(*types, *ty)
				}
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkGoTypes(node.Child(i), content, filePath, moduleQN, types)
	}
}

func extractGoTypeSpec(node *sitter.Node, content []byte, filePath, moduleQN string) *TypeEntity {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, content)
	typeNode := node.ChildByFieldName("type")
	kind := "type_alias"
	if typeNode != nil {
		switch typeNode.Type() {
		case "struct_type":
			kind = "struct"
		case "interface_type":
			kind = "interface"
		}
	}
	return &TypeEntity{
		QualifiedName: moduleQN + "." + name,
		Name:          name,
		FilePath:      filePath,
		Kind:          kind,
		StartLine:     int(node.StartPoint().Row) + 1,
		EndLine:       int(node.EndPoint().Row) + 1,
	}
}
