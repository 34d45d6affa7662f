// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Next.js API route extraction, ported from framework_linker.py's
// _extract_next_api_endpoints: the Pages Router (pages/api/**) maps a
// file path straight to a route with a single catch-all handler, while
// the App Router (app/api/**/route.{ts,tsx,js,jsx}) exports one function
// per HTTP method it handles.
package frameworklink

import (
	"regexp"
	"strings"
)

var (
	nextRouteHandlerPattern = regexp.MustCompile(
		`(?m)^\s*export\s+(?:async\s+)?function\s+(GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS)\b`)
	nextAppRouteSuffixes = []string{"/route.ts", "/route.tsx", "/route.js", "/route.jsx"}
)

// ExtractNextAPIEndpoints detects Next.js Pages Router and App Router API
// routes from filePath and, for the App Router, the exported method
// handlers in source.
func ExtractNextAPIEndpoints(filePath, source string) []Endpoint {
	path := "/" + strings.TrimPrefix(filepathToSlash(filePath), "/")

	if idx := strings.Index(path, "/pages/api/"); idx != -1 {
		return []Endpoint{{
			Framework:   "next",
			Method:      "ALL",
			Path:        nextAPIPath(strings.TrimSuffix(trimExt(path[idx+len("/pages/api/"):]), "/index")),
			HandlerName: "handler",
		}}
	}

	idx := strings.Index(path, "/app/api/")
	if idx == -1 || !hasAnySuffix(path, nextAppRouteSuffixes) {
		return nil
	}
	route := path[idx+len("/app/api/"):]
	for _, suffix := range nextAppRouteSuffixes {
		route = strings.TrimSuffix(route, suffix)
	}
	apiPath := nextAPIPath(route)

	var endpoints []Endpoint
	for _, m := range nextRouteHandlerPattern.FindAllStringSubmatch(source, -1) {
		method := strings.ToUpper(m[1])
		endpoints = append(endpoints, Endpoint{Framework: "next", Method: method, Path: apiPath, HandlerName: method})
	}
	if len(endpoints) == 0 {
		endpoints = append(endpoints, Endpoint{Framework: "next", Method: "ALL", Path: apiPath})
	}
	return endpoints
}

func nextAPIPath(route string) string {
	if route == "" {
		return "/api"
	}
	return "/api/" + route
}

func trimExt(s string) string {
	if idx := strings.LastIndex(s, "."); idx != -1 {
		return s[:idx]
	}
	return s
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
