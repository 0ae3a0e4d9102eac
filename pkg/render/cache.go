package render

import (
	"sync"
	"text/template"
)

// compilationCache caches parsed templates keyed by their source text,
// allowing concurrent readers while serializing compilation of a
// not-yet-seen template (spec.md §5).
type compilationCache struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

func newCompilationCache() *compilationCache {
	return &compilationCache{templates: make(map[string]*template.Template)}
}

func (c *compilationCache) get(text string) (*template.Template, error) {
	c.mu.RLock()
	tmpl, ok := c.templates[text]
	c.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tmpl, ok := c.templates[text]; ok {
		return tmpl, nil
	}

	tmpl, err := template.New("guisu").Funcs(builtins()).Parse(text)
	if err != nil {
		return nil, err
	}
	c.templates[text] = tmpl
	return tmpl, nil
}
