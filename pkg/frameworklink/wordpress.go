// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// WordPress hook, REST route, shortcode, block, and asset-enqueue
// extraction, ported from framework_linker.py's _link_wordpress_features
// and _is_wordpress_context. The Python original gates all of this behind
// a context check (a "Plugin Name:" header comment, or a wp-content path
// segment) so plain Laravel/Symfony PHP isn't scanned for WordPress hooks
// it doesn't have; IsWordPressContext ports that same gate.
package frameworklink

import (
	"regexp"
	"strings"
)

// HookBinding is a detected add_action/add_filter registration.
type HookBinding struct {
	Kind        string // "action" or "filter"
	HookName    string
	HandlerName string
}

// BlockBinding is a detected shortcode or Gutenberg block registration.
type BlockBinding struct {
	Kind        string // "shortcode" or "gutenberg"
	Name        string
	HandlerName string
}

// AssetEnqueue is a detected wp_enqueue_script/style call.
type AssetEnqueue struct {
	AssetType string // "script" or "style"
	Handle    string
	Path      string
}

var (
	wpHookPattern = regexp.MustCompile(
		`(?i)add_(action|filter)\s*\(\s*['"]([^'"]+)['"]\s*,\s*([^\),]+)`)
	wpRestRoutePattern = regexp.MustCompile(
		`(?is)register_rest_route\s*\(\s*['"]([^'"]+)['"]\s*,\s*['"]([^'"]+)['"]\s*,\s*[^)]*?['"]methods['"]\s*=>\s*['"]([^'"]+)['"][^)]*?['"]callback['"]\s*=>\s*([^,)\]]+)`)
	wpShortcodePattern = regexp.MustCompile(
		`(?i)add_shortcode\s*\(\s*['"]([^'"]+)['"]\s*,\s*([^\),]+)`)
	wpBlockPattern = regexp.MustCompile(
		`(?is)register_block_type\s*\(\s*['"]([^'"]+)['"]\s*,\s*\[([^\]]*)\]\s*\)`)
	wpRenderCallbackPattern = regexp.MustCompile(
		`(?i)['"]render_callback['"]\s*=>\s*([^,\]]+)`)
	wpEnqueuePattern = regexp.MustCompile(
		`(?i)wp_enqueue_(script|style)\s*\(\s*['"]([^'"]+)['"]\s*,\s*([^\),]+)`)
)

// IsWordPressContext reports whether filePath/source looks like
// WordPress code: a plugin header comment or a wp-content path segment.
func IsWordPressContext(filePath, source string) bool {
	if strings.Contains(source, "Plugin Name:") {
		return true
	}
	return strings.Contains(strings.ToLower(filepathToSlash(filePath)), "wp-content")
}

func filepathToSlash(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

func wpHandlerName(raw string) string {
	cleaned := strings.Trim(strings.TrimSpace(raw), `'"`)
	if idx := strings.LastIndex(cleaned, "::"); idx != -1 {
		cleaned = cleaned[idx+2:]
	}
	return lastDotSegment(cleaned)
}

// ExtractWordPressHooks scans PHP source for add_action/add_filter calls.
func ExtractWordPressHooks(source string) []HookBinding {
	var hooks []HookBinding
	for _, m := range wpHookPattern.FindAllStringSubmatch(source, -1) {
		hooks = append(hooks, HookBinding{
			Kind:        strings.ToLower(m[1]),
			HookName:    m[2],
			HandlerName: wpHandlerName(m[3]),
		})
	}
	return hooks
}

// ExtractWordPressRestRoutes scans PHP source for register_rest_route
// calls, fanning a pipe-separated methods list out into one Endpoint per
// method the way Symfony's methods:[...] list already does.
func ExtractWordPressRestRoutes(source string) []Endpoint {
	var endpoints []Endpoint
	for _, m := range wpRestRoutePattern.FindAllStringSubmatch(source, -1) {
		namespace, route := strings.Trim(m[1], "/"), m[2]
		handler := wpHandlerName(m[4])
		for _, method := range strings.Split(m[3], "|") {
			endpoints = append(endpoints, Endpoint{
				Framework:   "wordpress",
				Method:      strings.ToUpper(strings.TrimSpace(method)),
				Path:        "/" + namespace + "/" + strings.TrimPrefix(route, "/"),
				HandlerName: handler,
			})
		}
	}
	return endpoints
}

// ExtractWordPressShortcodes scans PHP source for add_shortcode calls.
func ExtractWordPressShortcodes(source string) []BlockBinding {
	var blocks []BlockBinding
	for _, m := range wpShortcodePattern.FindAllStringSubmatch(source, -1) {
		blocks = append(blocks, BlockBinding{Kind: "shortcode", Name: m[1], HandlerName: wpHandlerName(m[2])})
	}
	return blocks
}

// ExtractWordPressBlocks scans PHP source for register_block_type calls
// carrying a render_callback argument.
func ExtractWordPressBlocks(source string) []BlockBinding {
	var blocks []BlockBinding
	for _, m := range wpBlockPattern.FindAllStringSubmatch(source, -1) {
		block := BlockBinding{Kind: "gutenberg", Name: m[1]}
		if cb := wpRenderCallbackPattern.FindStringSubmatch(m[2]); cb != nil {
			block.HandlerName = wpHandlerName(cb[1])
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// ExtractWordPressEnqueues scans PHP source for wp_enqueue_script/style
// calls.
func ExtractWordPressEnqueues(source string) []AssetEnqueue {
	var assets []AssetEnqueue
	for _, m := range wpEnqueuePattern.FindAllStringSubmatch(source, -1) {
		assets = append(assets, AssetEnqueue{
			AssetType: strings.ToLower(m[1]),
			Handle:    m[2],
			Path:      strings.Trim(strings.TrimSpace(m[3]), `'"`),
		})
	}
	return assets
}
