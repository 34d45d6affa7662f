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

func TestExtractASPNetEndpoints(t *testing.T) {
	source := `
[Route("api/[controller]")]
public class UsersController : ControllerBase {
	[HttpGet("{id}")]
	public IActionResult GetUser() { return Ok(); }
}
`
	endpoints := ExtractASPNetEndpoints(source)
	require.Len(t, endpoints, 1)
	assert.Equal(t, "GET", endpoints[0].Method)
	assert.Equal(t, "UsersController", endpoints[0].ControllerName)
	assert.Equal(t, "GetUser", endpoints[0].HandlerName)
	assert.Equal(t, "/api/users/{id}", NormalizePath(endpoints[0].Path))
}

func TestExtractGoWebEndpoints(t *testing.T) {
	source := `
	r.GET("/users/:id", handlers.GetUser)
	r.POST("/users", handlers.CreateUser)
`
	endpoints := ExtractGoWebEndpoints(source)
	require.Len(t, endpoints, 2)
	assert.Equal(t, "GetUser", endpoints[0].HandlerName)
	assert.Equal(t, "/users/{id}", NormalizePath(endpoints[0].Path))
}

func TestExtractPHPLaravelEndpoints(t *testing.T) {
	source := `Route::get('/posts/{post}', [PostController::class, 'show']);`
	endpoints := ExtractPHPEndpoints(source)
	require.Len(t, endpoints, 1)
	assert.Equal(t, "laravel", endpoints[0].Framework)
	assert.Equal(t, "PostController", endpoints[0].ControllerName)
	assert.Equal(t, "show", endpoints[0].HandlerName)
}

func TestExtractASPNetServices(t *testing.T) {
	source := `services.AddScoped<IUserService, UserService>();`
	regs := ExtractASPNetServices(source)
	require.Len(t, regs, 2)
	assert.Equal(t, "scoped", regs[0].Lifetime)
	assert.Equal(t, "IUserService", regs[0].TypeName)
	assert.Equal(t, "UserService", regs[1].TypeName)
}

func TestLinkerWiresEndpointIntoSink(t *testing.T) {
	sink := ingestor.NewMemorySink()
	linker := NewLinker("myproj", sink)

	source := `r.GET("/ping", handlers.Ping)`
	err := linker.LinkFile(context.Background(), "main.go", "myproj.main", source)
	require.NoError(t, err)

	assert.True(t, sink.NodeCount() > 0)

	endpointQN := Endpoint{Framework: "go_web", Method: "GET", Path: "/ping"}.QualifiedName("myproj")
	found := false
	for _, n := range mustFetchAll(t, sink) {
		if n["qualified_name"] == endpointQN && n["label"] == string(graphmodel.LabelEndpoint) {
			found = true
		}
	}
	assert.True(t, found, "endpoint node should be ensured in the sink")
}

func mustFetchAll(t *testing.T, sink *ingestor.MemorySink) []map[string]any {
	t.Helper()
	rows, err := sink.FetchAll(context.Background(), "nodes", nil)
	require.NoError(t, err)
	return rows
}
