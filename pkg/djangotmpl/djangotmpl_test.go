// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package djangotmpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-graph/pkg/graphmodel"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
)

const sampleTemplate = `
{% extends "base.html" %}
{% block content %}
  <h1>{{ post.title }}</h1>
  <p>{{ post.body|safe }}</p>
  {% include "partials/footer.html" %}
  {% for comment in post.comments %}
    {{ comment.author }}
  {% endfor %}
{% endblock %}
`

func TestParseTemplateExtractsTagsVarsIncludesExtends(t *testing.T) {
	extraction := ParseTemplate(sampleTemplate)

	assert.Contains(t, extraction.Tags, "extends")
	assert.Contains(t, extraction.Tags, "block")
	assert.Contains(t, extraction.Tags, "include")
	assert.Contains(t, extraction.Tags, "for")
	assert.Contains(t, extraction.Tags, "endblock")

	assert.Contains(t, extraction.Variables, "post")
	assert.Contains(t, extraction.Variables, "comment")

	assert.Equal(t, []string{"base.html"}, extraction.Extends)
	assert.Equal(t, []string{"partials/footer.html"}, extraction.Includes)
}

func TestParseTemplateDedupesTagsAndVariables(t *testing.T) {
	extraction := ParseTemplate(`{{ x.a }} {{ x.b }} {% if x %}{% endif %}{% if y %}{% endif %}`)
	assert.Equal(t, []string{"x"}, extraction.Variables)
	assert.Equal(t, []string{"if", "endif"}, extraction.Tags)
}

func TestLooksLikeTemplateRejectsPlainText(t *testing.T) {
	assert.False(t, LooksLikeTemplate("plain old text, no braces here"))
	assert.True(t, LooksLikeTemplate("{{ x }}"))
	assert.True(t, LooksLikeTemplate("{% if x %}{% endif %}"))
}

func TestResolveTemplatePathExactAndSuffixMatch(t *testing.T) {
	index := map[string]string{
		"app/templates/blog/post.html": "app/templates/blog/post.html",
		"post.html":                    "app/templates/blog/post.html",
		"blog/post.html":               "app/templates/blog/post.html",
	}

	path, ok := ResolveTemplatePath(index, "blog/post.html")
	require.True(t, ok)
	assert.Equal(t, "app/templates/blog/post.html", path)

	_, ok = ResolveTemplatePath(index, "nope.html")
	assert.False(t, ok)
}

func TestWalkerIngestsTemplateIntoSink(t *testing.T) {
	sink := ingestor.NewMemorySink()
	index := map[string]string{
		"base.html": "base.html",
	}
	w := NewWalker(sink, "myproj", index)

	err := w.ProcessFile(context.Background(), "child.html", `{% extends "base.html" %}{{ title }}`)
	require.NoError(t, err)

	rows, err := sink.FetchAll(context.Background(), "relationships", nil)
	require.NoError(t, err)

	foundEmbeds := false
	for _, r := range rows {
		if r["type"] == string(graphmodel.RelEmbeds) {
			foundEmbeds = true
		}
	}
	assert.True(t, foundEmbeds, "expected child.html to EMBEDS base.html")
	assert.Greater(t, sink.NodeCount(), 0)
}
