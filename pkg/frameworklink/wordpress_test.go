// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package frameworklink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-graph/pkg/graphmodel"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
)

func mustFetchRelationships(t *testing.T, sink *ingestor.MemorySink) []map[string]any {
	t.Helper()
	rows, err := sink.FetchAll(context.Background(), "relationships", nil)
	require.NoError(t, err)
	return rows
}

func TestIsWordPressContext(t *testing.T) {
	assert.True(t, IsWordPressContext("plugin.php", "/*\nPlugin Name: Demo\n*/"))
	assert.True(t, IsWordPressContext("wp-content/plugins/demo/demo.php", "<?php"))
	assert.False(t, IsWordPressContext("app/Models/Post.php", "<?php class Post extends Model {}"))
}

func TestExtractWordPressHooks(t *testing.T) {
	source := `add_action('init', 'demo_init'); add_filter('the_content', 'demo_filter_content');`
	hooks := ExtractWordPressHooks(source)
	require.Len(t, hooks, 2)
	assert.Equal(t, "action", hooks[0].Kind)
	assert.Equal(t, "init", hooks[0].HookName)
	assert.Equal(t, "demo_init", hooks[0].HandlerName)
	assert.Equal(t, "filter", hooks[1].Kind)
}

func TestExtractWordPressRestRoutes(t *testing.T) {
	source := `register_rest_route('demo/v1', '/items', [
		'methods' => 'GET',
		'callback' => 'demo_get_items',
	]);`
	endpoints := ExtractWordPressRestRoutes(source)
	require.Len(t, endpoints, 1)
	assert.Equal(t, "wordpress", endpoints[0].Framework)
	assert.Equal(t, "GET", endpoints[0].Method)
	assert.Equal(t, "/demo/v1/items", endpoints[0].Path)
	assert.Equal(t, "demo_get_items", endpoints[0].HandlerName)
}

func TestExtractWordPressShortcodesAndBlocks(t *testing.T) {
	shortcodes := ExtractWordPressShortcodes(`add_shortcode('demo_box', 'demo_render_box');`)
	require.Len(t, shortcodes, 1)
	assert.Equal(t, "shortcode", shortcodes[0].Kind)
	assert.Equal(t, "demo_box", shortcodes[0].Name)
	assert.Equal(t, "demo_render_box", shortcodes[0].HandlerName)

	blocks := ExtractWordPressBlocks(`register_block_type('demo/box', [
		'render_callback' => 'demo_render_block',
	]);`)
	require.Len(t, blocks, 1)
	assert.Equal(t, "gutenberg", blocks[0].Kind)
	assert.Equal(t, "demo/box", blocks[0].Name)
	assert.Equal(t, "demo_render_block", blocks[0].HandlerName)
}

func TestExtractWordPressEnqueues(t *testing.T) {
	assets := ExtractWordPressEnqueues(`wp_enqueue_script('demo-js', 'assets/demo.js');`)
	require.Len(t, assets, 1)
	assert.Equal(t, "script", assets[0].AssetType)
	assert.Equal(t, "demo-js", assets[0].Handle)
	assert.Equal(t, "assets/demo.js", assets[0].Path)
}

func TestExtractEloquentRelations(t *testing.T) {
	source := `
class Post extends Model {
	public function author() {
		return $this->belongsTo(\App\Models\User::class);
	}
	public function comments() {
		return $this->hasMany(Comment::class);
	}
}`
	relations := ExtractEloquentRelations(source)
	require.Len(t, relations, 2)
	assert.Equal(t, "Post", relations[0].SourceClass)
	assert.Equal(t, "belongsTo", relations[0].RelationType)
	assert.Equal(t, "User", relations[0].TargetClass)
	assert.Equal(t, "hasMany", relations[1].RelationType)
	assert.Equal(t, "Comment", relations[1].TargetClass)
}

func TestExtractHTMXEndpoints(t *testing.T) {
	source := `<button hx-get="/items" hx-trigger="click" hx-target="#list" hx-swap="outerHTML">Load</button>`
	endpoints := ExtractHTMXEndpoints(source)
	require.Len(t, endpoints, 1)
	assert.Equal(t, "htmx", endpoints[0].Framework)
	assert.Equal(t, "GET", endpoints[0].Method)
	assert.Equal(t, "/items", endpoints[0].Path)
	assert.Equal(t, "click", endpoints[0].Metadata["hx_trigger"])
	assert.Equal(t, "#list", endpoints[0].Metadata["hx_target"])
	assert.Equal(t, "outerHTML", endpoints[0].Metadata["hx_swap"])
}

func TestExtractNextAPIEndpointsPagesRouter(t *testing.T) {
	endpoints := ExtractNextAPIEndpoints("pages/api/users/[id].ts", "")
	require.Len(t, endpoints, 1)
	assert.Equal(t, "next", endpoints[0].Framework)
	assert.Equal(t, "/api/users/{id}", NormalizePath(endpoints[0].Path))
	assert.Equal(t, "handler", endpoints[0].HandlerName)
}

func TestExtractNextAPIEndpointsAppRouter(t *testing.T) {
	source := `
export async function GET(request) { return Response.json({}) }
export async function POST(request) { return Response.json({}) }
`
	endpoints := ExtractNextAPIEndpoints("app/api/users/[id]/route.ts", source)
	require.Len(t, endpoints, 2)
	assert.Equal(t, "GET", endpoints[0].Method)
	assert.Equal(t, "GET", endpoints[0].HandlerName)
	assert.Equal(t, "/api/users/{id}", NormalizePath(endpoints[0].Path))
	assert.Equal(t, "POST", endpoints[1].Method)
}

func TestExtractNextAPIEndpointsIgnoresUnrelatedFiles(t *testing.T) {
	assert.Empty(t, ExtractNextAPIEndpoints("src/components/Button.tsx", ""))
}

func TestLinkerWiresWordPressHookIntoSink(t *testing.T) {
	sink := ingestor.NewMemorySink()
	linker := NewLinker("myproj", sink)

	source := "/*\nPlugin Name: Demo\n*/\nadd_action('init', 'demo_init');"
	err := linker.LinkFile(context.Background(), "demo.php", "myproj.demo", source)
	require.NoError(t, err)

	foundHook := false
	for _, n := range mustFetchAll(t, sink) {
		if n["label"] == string(graphmodel.LabelHook) {
			foundHook = true
		}
	}
	assert.True(t, foundHook, "expected a Hook node for add_action")

	foundEdge := false
	for _, r := range mustFetchRelationships(t, sink) {
		if r["type"] == string(graphmodel.RelHooks) {
			foundEdge = true
		}
	}
	assert.True(t, foundEdge, "expected a HOOKS edge")
}

func TestLinkerWiresHTMXEndpointIntoSink(t *testing.T) {
	sink := ingestor.NewMemorySink()
	linker := NewLinker("myproj", sink)

	source := `<button hx-get="/items">Load</button>`
	err := linker.LinkFile(context.Background(), "templates/list.html", "myproj.templates.list", source)
	require.NoError(t, err)

	foundEdge := false
	for _, r := range mustFetchRelationships(t, sink) {
		if r["type"] == string(graphmodel.RelRequestsEndpoint) {
			foundEdge = true
		}
	}
	assert.True(t, foundEdge, "expected a REQUESTS_ENDPOINT edge for the htmx button")
}

func TestLinkerWiresEloquentRelationIntoSink(t *testing.T) {
	sink := ingestor.NewMemorySink()
	linker := NewLinker("myproj", sink)

	source := `<?php
class Post extends Model {
	public function author() {
		return $this->belongsTo(User::class);
	}
}`
	err := linker.LinkFile(context.Background(), "app/Models/Post.php", "myproj.app.Models.Post", source)
	require.NoError(t, err)

	foundEdge := false
	for _, r := range mustFetchRelationships(t, sink) {
		if r["type"] == string(graphmodel.RelEloquentRelation) {
			foundEdge = true
		}
	}
	assert.True(t, foundEdge, "expected an ELOQUENT_RELATION edge")
}

func TestLinkerWiresBladeViewIntoSink(t *testing.T) {
	sink := ingestor.NewMemorySink()
	linker := NewLinker("myproj", sink)
	linker.BladeViewIndex = map[string]string{"auth.login": "resources/views/auth/login.blade.php"}

	source := `<?php return view('auth.login');`
	err := linker.LinkFile(context.Background(), "app/Http/Controllers/AuthController.php", "myproj.app.Http.Controllers.AuthController", source)
	require.NoError(t, err)

	foundEdge := false
	for _, r := range mustFetchRelationships(t, sink) {
		if r["type"] == string(graphmodel.RelRendersView) {
			foundEdge = true
		}
	}
	assert.True(t, foundEdge, "expected a RENDERS_VIEW edge for the Blade view")
}
