// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package resolve

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie-graph/pkg/entityextract"
	"github.com/kraklabs/cie-graph/pkg/graphmodel"
	"github.com/kraklabs/cie-graph/pkg/ingestor"
)

const pyFixture = `@app.route("/x")
@login_required
def view(request):
    if not request.user:
        raise PermissionDenied("nope")
    try:
        do_work()
    except ValueError as exc:
        log(exc)
    return None
`

func TestExtractDecoratorsWalksUpwardPastBlankLines(t *testing.T) {
	lines := strings.Split(pyFixture, "\n")
	decorators := ExtractDecorators(lines, 3, "python")
	require.Equal(t, 2, len(decorators))
	assert.Equal(t, "app.route", decorators[0].Name)
	assert.Equal(t, `"/x"`, decorators[0].Args)
	assert.Equal(t, "login_required", decorators[1].Name)
	assert.Equal(t, "", decorators[1].Args)
}

func TestExtractThrownAndCaughtExceptionsPython(t *testing.T) {
	lines := strings.Split(pyFixture, "\n")
	thrown := ExtractThrownExceptions(lines, 3, 10, "python")
	caught := ExtractCaughtExceptions(lines, 3, 10, "python")
	assert.Equal(t, []string{"PermissionDenied"}, thrown)
	assert.Equal(t, []string{"ValueError"}, caught)
}

const javaFixture = `@Override
public void handle() throws IOException {
    try {
        doWork();
    } catch (SQLException | IOException e) {
        throw new RuntimeException(e);
    }
}
`

func TestExtractDecoratorsJavaAnnotation(t *testing.T) {
	lines := strings.Split(javaFixture, "\n")
	decorators := ExtractDecorators(lines, 2, "java")
	require.Equal(t, 1, len(decorators))
	assert.Equal(t, "Override", decorators[0].Name)
}

func TestExtractThrownAndCaughtExceptionsJava(t *testing.T) {
	lines := strings.Split(javaFixture, "\n")
	thrown := ExtractThrownExceptions(lines, 2, 7, "java")
	caught := ExtractCaughtExceptions(lines, 2, 7, "java")
	assert.Contains(t, thrown, "IOException")
	assert.Contains(t, thrown, "RuntimeException")
	assert.Equal(t, []string{"SQLException", "IOException"}, caught)
}

func TestExtendedRelationPassIngestsDecoratorAndExceptionEdges(t *testing.T) {
	sink := ingestor.NewMemorySink()
	pass := NewExtendedRelationPass(sink)

	fn := entityextract.FunctionEntity{
		QualifiedName: "myproj.views.view",
		Name:          "view",
		StartLine:     3,
		EndLine:       10,
	}

	lines := strings.Split(pyFixture, "\n")
	err := pass.Process(context.Background(), fn, graphmodel.LabelFunction, "myproj.views", "python", lines)
	require.NoError(t, err)

	rows, err := sink.FetchAll(context.Background(), "relationships", nil)
	require.NoError(t, err)

	var sawDecorates, sawThrows, sawCaughtBy bool
	for _, r := range rows {
		switch r["type"] {
		case string(graphmodel.RelDecorates):
			sawDecorates = true
		case string(graphmodel.RelThrows):
			sawThrows = true
		case string(graphmodel.RelCaughtBy):
			sawCaughtBy = true
		}
	}
	assert.True(t, sawDecorates, "expected a DECORATES edge")
	assert.True(t, sawThrows, "expected a THROWS edge")
	assert.True(t, sawCaughtBy, "expected a CAUGHT_BY edge")
}

func TestExtendedRelationPassUsesAnnotatesForJava(t *testing.T) {
	sink := ingestor.NewMemorySink()
	pass := NewExtendedRelationPass(sink)

	fn := entityextract.FunctionEntity{
		QualifiedName: "myproj.Handler.handle",
		Name:          "handle",
		StartLine:     2,
		EndLine:       7,
	}

	lines := strings.Split(javaFixture, "\n")
	err := pass.Process(context.Background(), fn, graphmodel.LabelMethod, "myproj.Handler", "java", lines)
	require.NoError(t, err)

	rows, err := sink.FetchAll(context.Background(), "relationships", nil)
	require.NoError(t, err)

	var sawAnnotates bool
	for _, r := range rows {
		if r["type"] == string(graphmodel.RelAnnotates) {
			sawAnnotates = true
		}
	}
	assert.True(t, sawAnnotates, "expected an ANNOTATES edge for a Java decorator")
}
