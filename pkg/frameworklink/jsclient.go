// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Client-side request detection (fetch/axios/GraphQL clients), ported
// from framework_linker.py's _extract_js_requests: fetch('...') and
// fetch(`...`) with an optional { method: '...' } options object, bare
// axios.METHOD('...') calls, and GraphQL client construction
// (new GraphQLClient(url), ApolloClient({uri: ...}),
// createClient({url: ...})) treated as a single POST endpoint each.
package frameworklink

import (
	"regexp"
	"strings"
)

var (
	fetchQuotedPattern   = regexp.MustCompile(`(?i)fetch\s*\(\s*['"]([^'"]+)['"](\s*,\s*\{([^}]*)\})?`)
	fetchTemplatePattern = regexp.MustCompile("(?i)fetch\\s*\\(\\s*`([^`]+)`(\\s*,\\s*\\{([^}]*)\\})?")
	fetchMethodPattern   = regexp.MustCompile(`(?i)method\s*:\s*['"](GET|POST|PUT|DELETE|PATCH)['"]`)
	axiosCallPattern     = regexp.MustCompile(`(?i)axios\.(get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)['"]`)
	graphqlClientPattern = regexp.MustCompile(`(?i)new\s+GraphQLClient\s*\(\s*['"]([^'"]+)['"]`)
	apolloClientPattern  = regexp.MustCompile(`(?is)ApolloClient\s*\(\s*\{[^}]*uri\s*:\s*['"]([^'"]+)['"]`)
	urqlClientPattern    = regexp.MustCompile(`(?is)createClient\s*\(\s*\{[^}]*url\s*:\s*['"]([^'"]+)['"]`)
)

// ExtractJSClientRequests scans JS/TS source for outgoing HTTP/GraphQL
// client calls.
func ExtractJSClientRequests(source string) []Endpoint {
	var endpoints []Endpoint

	for _, m := range fetchQuotedPattern.FindAllStringSubmatch(source, -1) {
		endpoints = append(endpoints, Endpoint{Framework: "http", Method: fetchMethod(m[3]), Path: m[1]})
	}
	for _, m := range fetchTemplatePattern.FindAllStringSubmatch(source, -1) {
		endpoints = append(endpoints, Endpoint{Framework: "http", Method: fetchMethod(m[3]), Path: m[1]})
	}
	for _, m := range axiosCallPattern.FindAllStringSubmatch(source, -1) {
		endpoints = append(endpoints, Endpoint{Framework: "http", Method: strings.ToUpper(m[1]), Path: m[2]})
	}
	for _, m := range graphqlClientPattern.FindAllStringSubmatch(source, -1) {
		endpoints = append(endpoints, Endpoint{Framework: "graphql", Method: "POST", Path: m[1]})
	}
	for _, m := range apolloClientPattern.FindAllStringSubmatch(source, -1) {
		endpoints = append(endpoints, Endpoint{Framework: "graphql", Method: "POST", Path: m[1]})
	}
	for _, m := range urqlClientPattern.FindAllStringSubmatch(source, -1) {
		endpoints = append(endpoints, Endpoint{Framework: "graphql", Method: "POST", Path: m[1]})
	}

	return endpoints
}

func fetchMethod(options string) string {
	if m := fetchMethodPattern.FindStringSubmatch(options); m != nil {
		return strings.ToUpper(m[1])
	}
	return "GET"
}
