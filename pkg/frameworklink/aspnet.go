// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// ASP.NET Core endpoint extraction, ported from
// framework_linker.py's _extract_csharp_endpoints: controller classes
// (optionally carrying a [Route("...")] prefix with "[controller]"
// substitution), [HttpGet]/[HttpPost]/... attributed actions, bare
// [Route] actions (implicitly GET), and minimal-API ".MapGet(...)" calls.
package frameworklink

import (
	"regexp"
	"strings"
)

var (
	aspnetClassPattern = regexp.MustCompile(
		`(?i)(?:\[\s*Route\s*\(\s*"([^"]+)"\s*\)\s*\])?` +
			`\s*(?:public\s+)?class\s+([A-Za-z_][A-Za-z0-9_]*)\s*:\s*[A-Za-z0-9_.]*Controller`)
	aspnetMethodPattern = regexp.MustCompile(
		`(?is)\[\s*Http(Get|Post|Put|Delete|Patch|Options|Head)\s*(?:\(\s*"([^"]*)"\s*\))?\s*\]` +
			`[\s\S]{0,200}?\b([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	aspnetRouteOnlyPattern = regexp.MustCompile(
		`(?is)\[\s*Route\s*\(\s*"([^"]+)"\s*\)\s*\][\s\S]{0,200}?\b([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	aspnetMinimalPattern = regexp.MustCompile(
		`(?i)\.Map(Get|Post|Put|Delete|Patch)\s*\(\s*"([^"]+)"\s*,\s*([A-Za-z_][A-Za-z0-9_.]+)`)
)

// ExtractASPNetEndpoints scans C# source for ASP.NET Core endpoints.
func ExtractASPNetEndpoints(source string) []Endpoint {
	var endpoints []Endpoint

	type classRange struct {
		start, end        int
		name, routePrefix string
	}
	var ranges []classRange
	matches := aspnetClassPattern.FindAllStringSubmatchIndex(source, -1)
	for i, m := range matches {
		start := m[1]
		end := len(source)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		route := submatch(source, m, 1)
		name := submatch(source, m, 2)
		route = strings.ReplaceAll(route, "[controller]", strings.ToLower(strings.TrimSuffix(name, "Controller")))
		ranges = append(ranges, classRange{start, end, name, route})
	}

	for _, r := range ranges {
		block := source[r.start:r.end]

		for _, m := range aspnetMethodPattern.FindAllStringSubmatch(block, -1) {
			method := strings.ToUpper(m[1])
			path := joinPaths(r.routePrefix, m[2])
			endpoints = append(endpoints, Endpoint{
				Framework: "aspnet", Method: method, Path: path,
				HandlerName: m[3], ControllerName: r.name,
			})
		}
		for _, m := range aspnetRouteOnlyPattern.FindAllStringSubmatch(block, -1) {
			path := joinPaths(r.routePrefix, m[1])
			endpoints = append(endpoints, Endpoint{
				Framework: "aspnet", Method: "GET", Path: path,
				HandlerName: m[2], ControllerName: r.name,
			})
		}
	}

	for _, m := range aspnetMinimalPattern.FindAllStringSubmatch(source, -1) {
		endpoints = append(endpoints, Endpoint{
			Framework: "aspnet", Method: strings.ToUpper(m[1]), Path: m[2],
			HandlerName: lastDotSegment(m[3]),
		})
	}

	return endpoints
}

func submatch(source string, indices []int, group int) string {
	lo, hi := indices[2*group], indices[2*group+1]
	if lo < 0 || hi < 0 {
		return ""
	}
	return source[lo:hi]
}
