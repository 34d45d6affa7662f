// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Django view/template linking, ported from framework_linker.py's
// _extract_python_view_templates/_link_django_views. Django class-based
// views aren't one of the tree-sitter grammars this module's
// pkg/entityextract covers with a dedicated call-graph walk for this
// purpose, and the Python original itself resolves this with a
// hand-rolled indentation tracker rather than its own Python AST, so
// this port keeps the same line-by-line indent-tracking state machine
// instead of inventing a tree-sitter query.
package frameworklink

import (
	"regexp"
	"strings"
)

// DjangoViewTemplate is one detected view-to-template reference: a
// function-based view's render()/render_to_response() call, or a
// class-based view's template_name class attribute.
type DjangoViewTemplate struct {
	HandlerName    string // function or class name; "" if neither could be determined
	ControllerName string // enclosing class name; "" for a plain function view
	TemplateName   string // raw template reference, not yet resolved to a file path
}

var (
	djangoRenderPattern = regexp.MustCompile(
		`(?i)\brender(?:_to_response)?\s*\(\s*[^,]+,\s*['"]([^'"]+)['"]`)
	djangoTemplateResponsePattern = regexp.MustCompile(
		`(?i)TemplateResponse\s*\(\s*[^,]+,\s*['"]([^'"]+)['"]`)
	djangoTemplateNamePattern = regexp.MustCompile(`template_name\s*=\s*['"]([^'"]+)['"]`)
	djangoClassPattern        = regexp.MustCompile(`^class\s+([A-Za-z_][A-Za-z0-9_]*)`)
	djangoDefPattern          = regexp.MustCompile(`^def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
)

type classFrame struct {
	name   string
	indent int
}

// ExtractDjangoViewTemplates scans Python source line-by-line, tracking
// class/def indentation the same way the original does, and returns one
// entry per render()/TemplateResponse() call and per class-based view's
// template_name attribute.
func ExtractDjangoViewTemplates(source string) []DjangoViewTemplate {
	var results []DjangoViewTemplate
	var classStack []classFrame
	var currentDef *classFrame
	classTemplate := make(map[string]string)
	var classOrder []string

	for _, line := range strings.Split(source, "\n") {
		stripped := strings.TrimLeft(line, " \t")
		if stripped == "" {
			continue
		}
		indent := len(line) - len(stripped)

		for len(classStack) > 0 && indent <= classStack[len(classStack)-1].indent && !strings.HasPrefix(stripped, "#") {
			classStack = classStack[:len(classStack)-1]
		}

		if strings.HasPrefix(stripped, "class ") {
			if m := djangoClassPattern.FindStringSubmatch(stripped); m != nil {
				classStack = append(classStack, classFrame{name: m[1], indent: indent})
			}
			currentDef = nil
			continue
		}

		if m := djangoDefPattern.FindStringSubmatch(stripped); m != nil {
			currentDef = &classFrame{name: m[1], indent: indent}
			continue
		}

		if currentDef != nil && indent <= currentDef.indent && !strings.HasPrefix(stripped, "#") {
			currentDef = nil
		}

		var currentClass string
		if len(classStack) > 0 {
			currentClass = classStack[len(classStack)-1].name
		}

		if currentClass != "" {
			if m := djangoTemplateNamePattern.FindStringSubmatch(stripped); m != nil {
				if _, seen := classTemplate[currentClass]; !seen {
					classOrder = append(classOrder, currentClass)
				}
				classTemplate[currentClass] = m[1]
			}
		}

		m := djangoRenderPattern.FindStringSubmatch(stripped)
		if m == nil {
			m = djangoTemplateResponsePattern.FindStringSubmatch(stripped)
		}
		if m != nil {
			var handlerName string
			if currentDef != nil {
				handlerName = currentDef.name
			}
			results = append(results, DjangoViewTemplate{
				HandlerName: handlerName, ControllerName: currentClass, TemplateName: m[1],
			})
		}
	}

	for _, className := range classOrder {
		results = append(results, DjangoViewTemplate{
			HandlerName: className, ControllerName: className, TemplateName: classTemplate[className],
		})
	}

	return results
}
