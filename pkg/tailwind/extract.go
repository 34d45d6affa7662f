// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package tailwind

import "regexp"
import "strings"

var (
	stringLiteralPattern  = regexp.MustCompile(`'([^']+)'|"([^"]+)"|` + "`([^`]+)`")
	templateExprPattern   = regexp.MustCompile(`\$\{[^}]*\}`)
	templateExprBody      = regexp.MustCompile(`\$\{([^}]*)\}`)
	classnamesCallPattern = regexp.MustCompile(`(?s)\b(classnames|clsx)\s*\((.*?)\)`)
	objectBracePattern    = regexp.MustCompile(`\{[^{}]*\}`)
	objectKeyQuoted       = regexp.MustCompile(`['"]([^'"]+)['"]\s*:`)
	objectKeyBare         = regexp.MustCompile(`\b([A-Za-z0-9_-]+)\s*:`)
	nonWordPattern        = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	importantSuffix       = regexp.MustCompile(`\s*!important$`)
	applyPattern          = regexp.MustCompile(`@apply\s+([^;}]+)`)
	sourceInlinePattern   = regexp.MustCompile(`(?i)@source\s+inline\(\s*['"]([^'"]+)['"]\s*\)`)
)

// stripQuotes removes a single layer of surrounding quotes (including
// backticks), mirroring _strip_quotes.
func stripQuotes(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) >= 2 {
		first, last := trimmed[0], trimmed[len(trimmed)-1]
		if first == last && (first == '\'' || first == '"' || first == '`') {
			return trimmed[1 : len(trimmed)-1]
		}
	}
	return trimmed
}

// extractStringLiterals pulls every quoted string literal out of text,
// splitting template-literal bodies on interpolation boundaries.
func extractStringLiterals(text string) []string {
	var values []string
	for _, m := range stringLiteralPattern.FindAllStringSubmatch(text, -1) {
		switch {
		case m[1] != "":
			values = append(values, m[1])
		case m[2] != "":
			values = append(values, m[2])
		default:
			values = append(values, extractTemplateLiteralValues(m[3])...)
		}
	}
	return values
}

func extractTemplateLiteralValues(text string) []string {
	var classes []string
	for _, part := range templateExprPattern.Split(text, -1) {
		for _, c := range strings.Fields(part) {
			classes = append(classes, c)
		}
	}
	return classes
}

func extractFromTemplateLiteral(value string) []string {
	classes := extractTemplateLiteralValues(value)
	for _, m := range templateExprBody.FindAllStringSubmatch(value, -1) {
		classes = append(classes, extractStringLiterals(m[1])...)
	}
	return classes
}

// extractClassesFromValue handles a raw class/className attribute value:
// a backtick template literal, a `[...]` array, a `{...}` object, or a
// plain space-separated class list.
func extractClassesFromValue(value string) []string {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return nil
	}
	switch {
	case strings.HasPrefix(cleaned, "`") && strings.HasSuffix(cleaned, "`"):
		return extractFromTemplateLiteral(cleaned[1 : len(cleaned)-1])
	case strings.HasPrefix(cleaned, "[") && strings.HasSuffix(cleaned, "]"):
		return extractStringLiterals(cleaned)
	case strings.HasPrefix(cleaned, "{") && strings.HasSuffix(cleaned, "}"):
		return extractObjectKeys(cleaned)
	default:
		return strings.Fields(cleaned)
	}
}

// extractClassesFromExpression handles a JSX className={...} expression,
// including classnames()/clsx() calls and ternary/object forms.
func extractClassesFromExpression(expr string) []string {
	cleaned := strings.TrimSpace(expr)
	if cleaned == "" {
		return nil
	}
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = strings.TrimSpace(cleaned[1 : len(cleaned)-1])
	}
	if strings.HasPrefix(cleaned, "{") && strings.HasSuffix(cleaned, "}") {
		cleaned = strings.TrimSpace(cleaned[1 : len(cleaned)-1])
	}
	if strings.Contains(cleaned, ".join") && strings.HasPrefix(strings.TrimSpace(cleaned), "[") {
		cleaned = strings.TrimSpace(strings.SplitN(cleaned, ".join", 2)[0])
	}

	var classes []string
	for _, m := range classnamesCallPattern.FindAllStringSubmatch(cleaned, -1) {
		args := m[2]
		classes = append(classes, extractStringLiterals(args)...)
		for _, obj := range objectBracePattern.FindAllString(args, -1) {
			classes = append(classes, extractObjectKeys(obj)...)
		}
	}

	switch {
	case strings.HasPrefix(cleaned, "[") && strings.HasSuffix(cleaned, "]"):
		classes = append(classes, extractStringLiterals(cleaned)...)
		for _, obj := range objectBracePattern.FindAllString(cleaned, -1) {
			classes = append(classes, extractObjectKeys(obj)...)
		}
		return classes
	case strings.HasPrefix(cleaned, "{") && strings.HasSuffix(cleaned, "}"):
		classes = append(classes, extractObjectKeys(cleaned)...)
		return classes
	case strings.HasPrefix(cleaned, "`") && strings.HasSuffix(cleaned, "`"):
		classes = append(classes, extractFromTemplateLiteral(cleaned[1:len(cleaned)-1])...)
		return classes
	}

	classes = append(classes, extractStringLiterals(cleaned)...)
	for _, obj := range objectBracePattern.FindAllString(cleaned, -1) {
		classes = append(classes, extractObjectKeys(obj)...)
	}
	return classes
}

// extractObjectKeys pulls key names out of a JS object literal used in
// classnames({ "foo-bar": cond, baz: cond2 }) style calls.
func extractObjectKeys(value string) []string {
	var keys []string
	for _, m := range objectKeyQuoted.FindAllStringSubmatch(value, -1) {
		keys = append(keys, m[1])
	}
	for _, m := range objectKeyBare.FindAllStringSubmatch(value, -1) {
		keys = append(keys, m[1])
	}
	return keys
}

// normalizeUtility trims a raw candidate utility token and rejects
// anything that still looks like unresolved template syntax.
func normalizeUtility(value string) string {
	cleaned := strings.Trim(strings.TrimSpace(value), ";")
	cleaned = importantSuffix.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return ""
	}
	if strings.Contains(cleaned, "{{") || strings.Contains(cleaned, "}}") {
		return ""
	}
	if strings.HasPrefix(cleaned, "{") || strings.HasSuffix(cleaned, "}") {
		return ""
	}
	return cleaned
}

func parseApplyUtilities(ruleText string) []string {
	m := applyPattern.FindStringSubmatch(ruleText)
	if m == nil {
		return nil
	}
	return strings.Fields(strings.TrimSpace(m[1]))
}

func parseSourceInline(ruleText string) []string {
	var out []string
	for _, m := range sourceInlinePattern.FindAllStringSubmatch(ruleText, -1) {
		out = append(out, m[1])
	}
	return out
}

func extractConfigList(text, key string) []string {
	pattern := regexp.MustCompile(`(?is)` + regexp.QuoteMeta(key) + `\s*:\s*(\[[\s\S]*?\])`)
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return extractStringLiterals(m[1])
}

func extractConfigNestedList(text, key, nestedKey string) []string {
	pattern := regexp.MustCompile(`(?is)` + regexp.QuoteMeta(key) + `\s*:\s*\{[\s\S]*?` + regexp.QuoteMeta(nestedKey) + `\s*:\s*(\[[\s\S]*?\])`)
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return extractStringLiterals(m[1])
}
