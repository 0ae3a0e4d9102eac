// Package render provides the reference engine.TemplateRenderer
// implementation: Go's text/template with the sprig function library, in
// the manner of the teacher's own cmd/mutagen/common/templating package
// (which adds a single "json" builtin to text/template). The core never
// imports this package — cmd/guisu wires it in as an external collaborator.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/guisu-dotfiles/guisu/pkg/engine"
)

// jsonify is the one builtin this package adds on top of sprig, matching
// the teacher's own templating package (which adds exactly one "json"
// builtin to the stock text/template function set).
func jsonify(value interface{}) (string, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buffer.String(), "\n"), nil
}

// builtins combines sprig's function library with jsonify.
func builtins() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["json"] = jsonify
	return funcs
}

// Renderer implements engine.TemplateRenderer using text/template and
// sprig. It caches compiled templates by source text, since the same
// template body is frequently reused across an apply pass's workers
// (spec.md §5: "regex/template compilation caches used by the renderer must
// permit concurrent readers and exclusive writers").
type Renderer struct {
	cache *compilationCache
}

// New creates a Renderer.
func New() *Renderer {
	return &Renderer{cache: newCompilationCache()}
}

// Render implements engine.TemplateRenderer.
func (r *Renderer) Render(text string, context engine.Context) (string, error) {
	tmpl, err := r.cache.get(text)
	if err != nil {
		return "", &engine.RenderError{Message: err.Error()}
	}

	var buffer bytes.Buffer
	if err := tmpl.Execute(&buffer, map[string]interface{}(context)); err != nil {
		return "", &engine.RenderError{Message: fmt.Sprintf("execution failed: %v", err)}
	}

	return buffer.String(), nil
}

// DefaultContext returns the minimum context variable set spec.md §6
// mandates, derived from the host environment. Callers merge
// caller-supplied variables on top.
func DefaultContext(osName, arch, hostname, username, homeDir string) engine.Context {
	return engine.Context{
		"os":       osName,
		"arch":     arch,
		"hostname": hostname,
		"username": username,
		"home_dir": homeDir,
	}
}
