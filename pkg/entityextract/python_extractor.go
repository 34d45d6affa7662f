// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Python entity extraction. The teacher's retrieval pack carries no Python
// parser (kraklabs-cie only wires Go and TypeScript grammars), so this
// extractor generalizes parser_go.go's tree-walking structure (dispatch by
// node type, track a func-name->QN map for same-file call resolution,
// everything else becomes an UnresolvedCall) onto Python's grammar node
// names, cross-checked against
// original_source/codebase_rag/parsers/type_inference/python_engine.py for
// the scope/class-attribute conventions (self.<name>, module-level def vs
// nested def).
package entityextract

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// PythonExtractor extracts entities from a Python file.
type PythonExtractor struct {
	Registry   *FunctionRegistry
	SimpleName *SimpleNameIndex
}

// NewPythonExtractor constructs an extractor that feeds the given registries.
func NewPythonExtractor(registry *FunctionRegistry, simpleName *SimpleNameIndex) *PythonExtractor {
	return &PythonExtractor{Registry: registry, SimpleName: simpleName}
}

type pyWalkCtx struct {
	moduleQN  string
	content   []byte
	filePath  string
	functions []goFnWithNode
}

// Extract walks root and produces the ParseResult for one Python file.
func (g *PythonExtractor) Extract(root *sitter.Node, content []byte, filePath, moduleQN string) *ParseResult {
	result := &ParseResult{ModuleQN: moduleQN}
	if root == nil {
		return result
	}

	ctx := &pyWalkCtx{moduleQN: moduleQN, content: content, filePath: filePath}
	g.walk(root, ctx, nil)

	funcNameToQN := make(map[string]string, len(ctx.functions))
	for _, fn := range ctx.functions {
		funcNameToQN[NormalizeSimpleName(fn.entity.Name)] = fn.entity.QualifiedName
		g.Registry.Add(fn.entity.QualifiedName)
		g.SimpleName.Add(fn.entity.QualifiedName)
		result.Functions = append(result.Functions, fn.entity)
	}

	for _, fn := range ctx.functions {
		calls, unresolved := extractPyCalls(fn.node, content, fn.entity.QualifiedName, funcNameToQN, filePath)
		result.Calls = append(result.Calls, calls...)
		result.UnresolvedCalls = append(result.UnresolvedCalls, unresolved...)
	}

	result.Types = extractPyClasses(root, content, filePath, moduleQN)
	for _, ty := range result.Types {
		g.SimpleName.Add(ty.QualifiedName)
	}
	result.Imports = extractPyImports(root, content, filePath)

	return result
}

// walk descends the module body, tracking the enclosing class (if any) so
// methods get "Class.method" names the way extractGoMethodDeclaration
// builds "Receiver.Method" names for Go.
func (g *PythonExtractor) walk(node *sitter.Node, ctx *pyWalkCtx, enclosingClass *string) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			break
		}
		name := nodeText(nameNode, ctx.content)
		fullName := name
		if enclosingClass != nil {
			fullName = *enclosingClass + "." + name
		}
		entity := buildPyFunctionEntity(node, ctx, fullName)
		ctx.functions = append(ctx.functions, goFnWithNode{entity: *entity, node: node})
		return
	case "class_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			break
		}
		className := nodeText(nameNode, ctx.content)
		if body := node.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				g.walk(body.Child(i), ctx, &className)
			}
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		g.walk(node.Child(i), ctx, enclosingClass)
	}
}

func buildPyFunctionEntity(node *sitter.Node, ctx *pyWalkCtx, fullName string) *FunctionEntity {
	var params []ParamInfo
	if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
		for i := 0; i < int(paramsNode.ChildCount()); i++ {
			child := paramsNode.Child(i)
			switch child.Type() {
			case "identifier":
				params = append(params, ParamInfo{Name: nodeText(child, ctx.content)})
			case "typed_parameter", "default_parameter", "typed_default_parameter":
				if nameNode := child.ChildByFieldName("name"); nameNode != nil {
					params = append(params, ParamInfo{Name: nodeText(nameNode, ctx.content)})
				}
			}
		}
	}

	returnType := ""
	if retNode := node.ChildByFieldName("return_type"); retNode != nil {
		returnType = nodeText(retNode, ctx.content)
	}

	name := fullName
	if idx := len(fullName); idx > 0 {
		if i := lastDot(fullName); i >= 0 {
			name = fullName[i+1:]
		}
	}

	return &FunctionEntity{
		QualifiedName: ctx.moduleQN + "." + fullName,
		Name:          fullName,
		FilePath:      ctx.filePath,
		Params:        params,
		ReturnType:    returnType,
		StartLine:     int(node.StartPoint().Row) + 1,
		EndLine:       int(node.EndPoint().Row) + 1,
		StartCol:      int(node.StartPoint().Column) + 1,
		EndCol:        int(node.EndPoint().Column) + 1,
		IsExported:    len(name) > 0 && name[0] != '_',
	}
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func extractPyClasses(root *sitter.Node, content []byte, filePath, moduleQN string) []TypeEntity {
	var types []TypeEntity
	walkPyClasses(root, content, filePath, moduleQN, &types)
	return types
}

func walkPyClasses(node *sitter.Node, content []byte, filePath, moduleQN string, types *[]TypeEntity) {
	if node == nil {
		return
	}
	if node.Type() == "class_definition" {
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			name := nodeText(nameNode, content)
			*types = append(*types, TypeEntity{
				QualifiedName: moduleQN + "." + name,
				Name:          name,
				FilePath:      filePath,
				Kind:          "class",
				StartLine:     int(node.StartPoint().Row) + 1,
				EndLine:       int(node.EndPoint().Row) + 1,
			})
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkPyClasses(node.Child(i), content, filePath, moduleQN, types)
	}
}

func extractPyImports(root *sitter.Node, content []byte, filePath string) []ImportEntity {
	var imports []ImportEntity
	walkPyImports(root, content, filePath, &imports)
	return imports
}

func walkPyImports(node *sitter.Node, content []byte, filePath string, imports *[]ImportEntity) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "import_statement":
		for i := 0; i < int(node.ChildCount()); i++ {
			if child := node.Child(i); child.Type() == "dotted_name" {
				*imports = append(*imports, ImportEntity{
					FilePath:   filePath,
					ImportPath: nodeText(child, content),
					StartLine:  int(node.StartPoint().Row) + 1,
				})
			}
		}
	case "import_from_statement":
		if moduleNode := node.ChildByFieldName("module_name"); moduleNode != nil {
			*imports = append(*imports, ImportEntity{
				FilePath:   filePath,
				ImportPath: nodeText(moduleNode, content),
				StartLine:  int(node.StartPoint().Row) + 1,
			})
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkPyImports(node.Child(i), content, filePath, imports)
	}
}

func extractPyCalls(fnNode *sitter.Node, content []byte, callerQN string, funcNameToQN map[string]string, filePath string) ([]CallsEdge, []UnresolvedCall) {
	var calls []CallsEdge
	var unresolved []UnresolvedCall
	if fnNode == nil {
		return calls, unresolved
	}
	bodyNode := fnNode.ChildByFieldName("body")
	if bodyNode == nil {
		return calls, unresolved
	}
	walkPyCallExpressions(bodyNode, content, callerQN, funcNameToQN, filePath, &calls, &unresolved)
	return calls, unresolved
}

func walkPyCallExpressions(node *sitter.Node, content []byte, callerQN string, funcNameToQN map[string]string, filePath string, calls *[]CallsEdge, unresolved *[]UnresolvedCall) {
	if node == nil {
		return
	}
	if node.Type() == "call" {
		if fnNode := node.ChildByFieldName("function"); fnNode != nil {
			calleeFull := pyCalleeName(fnNode, content)
			if qn, ok := funcNameToQN[calleeFull]; ok {
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
		walkPyCallExpressions(node.Child(i), content, callerQN, funcNameToQN, filePath, calls, unresolved)
	}
}

func pyCalleeName(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "identifier":
		return nodeText(node, content)
	case "attribute":
		if attr := node.ChildByFieldName("attribute"); attr != nil {
			return nodeText(attr, content)
		}
	}
	return ""
}
