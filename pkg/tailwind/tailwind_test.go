// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package tailwind

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-graph/pkg/graphmodel"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
)

func TestProcessFileExtractsPlainClassAttribute(t *testing.T) {
	sink := ingestor.NewMemorySink()
	p := NewProcessor(sink, "myproj", "")

	source := `<div class="flex items-center p-4 hover:bg-blue-500"></div>`
	require.NoError(t, p.ProcessFile(context.Background(), "index.html", "myproj.index", source))

	rows, err := sink.FetchAll(context.Background(), "nodes", nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, r := range rows {
		if r["label"] == string(graphmodel.LabelTailwindUtility) {
			names[r["name"].(string)] = true
		}
	}
	assert.True(t, names["flex"])
	assert.True(t, names["items-center"])
	assert.True(t, names["p-4"])
	assert.True(t, names["hover:bg-blue-500"])
}

func TestProcessFileExtractsClassnamesCallExpression(t *testing.T) {
	sink := ingestor.NewMemorySink()
	p := NewProcessor(sink, "myproj", "")

	source := "const cls = className={clsx('flex', { 'text-red-500': isError, 'p-2': true })}"
	require.NoError(t, p.ProcessFile(context.Background(), "component.tsx", "myproj.component", source))

	rows, err := sink.FetchAll(context.Background(), "nodes", nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, r := range rows {
		if r["label"] == string(graphmodel.LabelTailwindUtility) {
			names[r["name"].(string)] = true
		}
	}
	assert.True(t, names["flex"])
	assert.True(t, names["text-red-500"])
	assert.True(t, names["p-2"])
}

func TestProcessFileExtractsApplyDirectiveAndEnsuresAsset(t *testing.T) {
	sink := ingestor.NewMemorySink()
	p := NewProcessor(sink, "myproj", "")

	source := `.btn { @apply flex items-center rounded-lg; }`
	require.NoError(t, p.ProcessFile(context.Background(), "styles.css", "myproj.styles", source))

	rows, err := sink.FetchAll(context.Background(), "nodes", nil)
	require.NoError(t, err)

	var sawUtility, sawAsset bool
	for _, r := range rows {
		switch r["label"] {
		case string(graphmodel.LabelTailwindUtility):
			if r["name"] == "rounded-lg" {
				sawUtility = true
			}
		case string(graphmodel.LabelAsset):
			if r["qualified_name"] == "myproj.asset.css_framework.tailwindcss" {
				sawAsset = true
			}
		}
	}
	assert.True(t, sawUtility, "expected @apply utility to be ensured")
	assert.True(t, sawAsset, "expected the tailwindcss asset node to be ensured")
}

func TestProcessFileIgnoresUnrelatedExtensions(t *testing.T) {
	sink := ingestor.NewMemorySink()
	p := NewProcessor(sink, "myproj", "")

	require.NoError(t, p.ProcessFile(context.Background(), "main.go", "myproj.main", `func main() {}`))
	assert.Equal(t, 0, sink.NodeCount())
}

func TestNormalizeUtilityRejectsUnresolvedTemplateSyntax(t *testing.T) {
	assert.Equal(t, "", normalizeUtility("{{ dynamicClass }}"))
	assert.Equal(t, "", normalizeUtility("{not-closed"))
	assert.Equal(t, "p-4", normalizeUtility(" p-4; "))
	assert.Equal(t, "text-red-500", normalizeUtility("text-red-500 !important"))
}

func TestExtractClassesFromValueHandlesArrayAndObjectForms(t *testing.T) {
	assert.ElementsMatch(t, []string{"flex", "p-4"}, extractClassesFromValue("flex p-4"))
	assert.ElementsMatch(t, []string{"flex", "p-4"}, extractClassesFromValue(`["flex", "p-4"]`))
	assert.ElementsMatch(t, []string{"flex", "p-4"}, extractClassesFromValue(`{flex: true, "p-4": cond}`))
}
