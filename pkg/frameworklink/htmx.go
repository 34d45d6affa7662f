// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// HTMX endpoint extraction, ported from framework_linker.py's
// _extract_htmx_endpoints: an hx-get/post/put/delete/patch attribute on
// an HTML element is a client-side request the same way a fetch() call
// is, with hx-trigger/hx-target/hx-swap (when present on the same
// element) carried along as endpoint metadata rather than discarded.
package frameworklink

import (
	"regexp"
	"strings"
)

var (
	htmxElementPattern = regexp.MustCompile(
		`(?i)<[^>]*\bhx-(get|post|put|delete|patch)\s*=\s*['"]([^'"]+)['"][^>]*>`)
	htmxTriggerPattern = regexp.MustCompile(`(?i)\bhx-trigger\s*=\s*['"]([^'"]+)['"]`)
	htmxTargetPattern  = regexp.MustCompile(`(?i)\bhx-target\s*=\s*['"]([^'"]+)['"]`)
	htmxSwapPattern    = regexp.MustCompile(`(?i)\bhx-swap\s*=\s*['"]([^'"]+)['"]`)
)

// ExtractHTMXEndpoints scans HTML/template source for hx-get/post/put/
// delete/patch attributes.
func ExtractHTMXEndpoints(source string) []Endpoint {
	var endpoints []Endpoint
	for _, m := range htmxElementPattern.FindAllStringSubmatch(source, -1) {
		element := m[0]
		ep := Endpoint{Framework: "htmx", Method: strings.ToUpper(m[1]), Path: m[2]}

		meta := make(map[string]string)
		if v := htmxTriggerPattern.FindStringSubmatch(element); v != nil {
			meta["hx_trigger"] = v[1]
		}
		if v := htmxTargetPattern.FindStringSubmatch(element); v != nil {
			meta["hx_target"] = v[1]
		}
		if v := htmxSwapPattern.FindStringSubmatch(element); v != nil {
			meta["hx_swap"] = v[1]
		}
		if len(meta) > 0 {
			ep.Metadata = meta
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints
}
