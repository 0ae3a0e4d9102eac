package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guisu-dotfiles/guisu/pkg/engine"
)

func TestRenderSubstitutesVariables(t *testing.T) {
	r := New()
	out, err := r.Render("hello {{ .name }}", engine.Context{"name": "world"})
	require.NoError(t, err)
	require.Equal(t, "hello world", out)
}

func TestRenderSprigFunctionIsAvailable(t *testing.T) {
	r := New()
	out, err := r.Render(`{{ upper .name }}`, engine.Context{"name": "world"})
	require.NoError(t, err)
	require.Equal(t, "WORLD", out)
}

func TestRenderJSONBuiltin(t *testing.T) {
	r := New()
	out, err := r.Render(`{{ json .items }}`, engine.Context{"items": []string{"a", "b"}})
	require.NoError(t, err)
	require.Equal(t, `["a","b"]`, out)
}

func TestRenderUndefinedVariableFails(t *testing.T) {
	r := New()
	_, err := r.Render(`{{ .missing.nested }}`, engine.Context{})
	require.Error(t, err)
	var renderErr *engine.RenderError
	require.ErrorAs(t, err, &renderErr)
}

func TestRenderReusesCachedTemplate(t *testing.T) {
	r := New()
	text := "{{ .value }}"

	first, err := r.Render(text, engine.Context{"value": "1"})
	require.NoError(t, err)
	require.Equal(t, "1", first)

	second, err := r.Render(text, engine.Context{"value": "2"})
	require.NoError(t, err)
	require.Equal(t, "2", second)
}

func TestDefaultContextIncludesHostFields(t *testing.T) {
	ctx := DefaultContext("linux", "amd64", "myhost", "alice", "/home/alice")
	require.Equal(t, "linux", ctx["os"])
	require.Equal(t, "amd64", ctx["arch"])
	require.Equal(t, "myhost", ctx["hostname"])
	require.Equal(t, "alice", ctx["username"])
	require.Equal(t, "/home/alice", ctx["home_dir"])
}
