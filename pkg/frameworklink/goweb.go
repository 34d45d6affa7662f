// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Go web framework endpoint extraction (Gin/Echo/Fiber/Chi share the same
// router.METHOD("path", handler) call shape), ported from
// framework_linker.py's _extract_go_endpoints: a ":=  router.Group(prefix)"
// assignment pattern feeding a prefix map, a chained
// ".Group(prefix).METHOD(path, handler)" pattern, and the general
// "router.METHOD(path, handler)" pattern with group-prefix substitution.
package frameworklink

import (
	"regexp"
	"strings"
)

var (
	goGroupAssignPattern = regexp.MustCompile(
		`(?i)([A-Za-z_][A-Za-z0-9_]*)\s*:=\s*\w+\.Group\(\s*"([^"]+)"`)
	goChainedGroupPattern = regexp.MustCompile(
		`(?i)\.Group\(\s*"([^"]+)"\s*\)\s*\.\s*(GET|POST|PUT|DELETE|PATCH)\s*\(\s*"([^"]+)"\s*,\s*([A-Za-z_][A-Za-z0-9_.]+)`)
	goRoutePattern = regexp.MustCompile(
		`(?i)([A-Za-z_][A-Za-z0-9_]*)?\.?\s*(GET|POST|PUT|DELETE|PATCH)\s*\(\s*"([^"]+)"\s*,\s*([A-Za-z_][A-Za-z0-9_.]+)`)
)

// ExtractGoWebEndpoints scans Go source for Gin/Echo/Fiber/Chi-style routes.
func ExtractGoWebEndpoints(source string) []Endpoint {
	var endpoints []Endpoint

	groups := make(map[string]string)
	for _, m := range goGroupAssignPattern.FindAllStringSubmatch(source, -1) {
		groups[m[1]] = m[2]
	}

	for _, m := range goChainedGroupPattern.FindAllStringSubmatch(source, -1) {
		path := joinPaths(m[1], m[3])
		endpoints = append(endpoints, Endpoint{
			Framework: "go_web", Method: strings.ToUpper(m[2]), Path: path,
			HandlerName: lastDotSegment(m[4]),
		})
	}

	for _, m := range goRoutePattern.FindAllStringSubmatch(source, -1) {
		path := m[3]
		if prefix, ok := groups[m[1]]; ok {
			path = joinPaths(prefix, path)
		}
		endpoints = append(endpoints, Endpoint{
			Framework: "go_web", Method: strings.ToUpper(m[2]), Path: path,
			HandlerName: lastDotSegment(m[4]),
		})
	}

	return endpoints
}
