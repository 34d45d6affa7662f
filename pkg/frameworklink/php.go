// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Laravel and Symfony PHP endpoint/view extraction, ported from
// framework_linker.py's _extract_php_endpoints/_extract_php_views:
// Route::get(path, [Controller::class, 'action']), the legacy
// Route::get(path, 'Controller@action') form, Symfony's #[Route(...)]
// attribute (with an optional methods: [...] list, defaulting to GET),
// and Blade's view('name') calls.
package frameworklink

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	laravelArrayRoutePattern = regexp.MustCompile(
		`(?i)Route::(get|post|put|patch|delete|options|any)\s*\(\s*['"]([^'"]+)['"]\s*,\s*\[([A-Za-z_][A-Za-z0-9_]*)::class\s*,\s*['"]([A-Za-z_][A-Za-z0-9_]*)['"]\]\s*\)`)
	laravelAtRoutePattern = regexp.MustCompile(
		`(?i)Route::(get|post|put|patch|delete|options|any)\s*\(\s*['"]([^'"]+)['"]\s*,\s*['"]([A-Za-z_][A-Za-z0-9_]*)@([A-Za-z_][A-Za-z0-9_]*)['"]\s*\)`)
	symfonyRoutePattern = regexp.MustCompile(
		`(?i)#\[Route\(\s*['"]([^'"]+)['"](?:[^\]]*methods:\s*\[([^\]]*)\])?`)
	bladeViewPattern = regexp.MustCompile(`(?i)view\(\s*['"]([^'"]+)['"]`)
)

// ExtractPHPEndpoints scans PHP source for Laravel and Symfony routes.
func ExtractPHPEndpoints(source string) []Endpoint {
	var endpoints []Endpoint

	for _, m := range laravelArrayRoutePattern.FindAllStringSubmatch(source, -1) {
		endpoints = append(endpoints, Endpoint{
			Framework: "laravel", Method: strings.ToUpper(m[1]), Path: m[2],
			HandlerName: m[4], ControllerName: m[3],
		})
	}
	for _, m := range laravelAtRoutePattern.FindAllStringSubmatch(source, -1) {
		endpoints = append(endpoints, Endpoint{
			Framework: "laravel", Method: strings.ToUpper(m[1]), Path: m[2],
			HandlerName: m[4], ControllerName: m[3],
		})
	}
	for _, m := range symfonyRoutePattern.FindAllStringSubmatch(source, -1) {
		path := m[1]
		methods := splitAndTrim(m[2])
		if len(methods) == 0 {
			methods = []string{"GET"}
		}
		for _, method := range methods {
			endpoints = append(endpoints, Endpoint{
				Framework: "symfony", Method: strings.ToUpper(method), Path: path,
			})
		}
	}

	return endpoints
}

// ExtractPHPViews scans PHP/Blade source for view('name') references.
func ExtractPHPViews(source string) []string {
	var views []string
	for _, m := range bladeViewPattern.FindAllStringSubmatch(source, -1) {
		views = append(views, m[1])
	}
	return views
}

// BuildBladeViewIndex walks repoRoot for *.blade.php files under any
// "views" directory (conventionally resources/views) and indexes each
// one by the dotted name view('name') passes: views/auth/login.blade.php
// maps to "auth.login", and views/auth/index.blade.php maps to "auth" —
// Blade's fallback for view('auth') when there is no auth.blade.php but
// an auth/index.blade.php.
func BuildBladeViewIndex(repoRoot string) map[string]string {
	index := make(map[string]string)
	if repoRoot == "" {
		return index
	}
	_ = filepath.WalkDir(repoRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".blade.php") {
			return nil
		}
		rel, relErr := filepath.Rel(repoRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		viewsIdx := strings.Index(rel, "views/")
		if viewsIdx == -1 {
			return nil
		}
		under := strings.TrimSuffix(rel[viewsIdx+len("views/"):], ".blade.php")

		if strings.HasSuffix(under, "/index") {
			key := strings.ReplaceAll(strings.TrimSuffix(under, "/index"), "/", ".")
			if _, ok := index[key]; !ok {
				index[key] = rel
			}
			return nil
		}

		index[strings.ReplaceAll(under, "/", ".")] = rel
		return nil
	})
	return index
}

// ResolveBladeViewPath resolves a view('name') reference to a
// repo-relative file path using an index built by BuildBladeViewIndex.
func ResolveBladeViewPath(index map[string]string, viewName string) (string, bool) {
	path, ok := index[viewName]
	return path, ok
}

func splitAndTrim(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.Trim(strings.TrimSpace(part), `'"`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
