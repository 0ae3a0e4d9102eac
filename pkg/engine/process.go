package engine

import "unicode/utf8"

// Decryptor is the narrow capability interface the Content Processor
// consumes for the ENCRYPTED stage. Implementations are external
// collaborators (spec.md §1); pkg/identity provides a reference one. An
// implementation must try every supplied identity and succeed if any one of
// them works.
type Decryptor interface {
	Decrypt(ciphertext []byte, identities []Identity) ([]byte, error)
}

// Identity is an opaque decryption secret. The core never inspects its
// contents or imposes any method set on it; it only threads identities
// through from Configuration to the Decryptor, which is free to type-assert
// them back to its own concrete representation.
type Identity = interface{}

// TemplateRenderer is the narrow capability interface the Content Processor
// consumes for the TEMPLATE stage. pkg/render provides a reference
// implementation backed by text/template and sprig.
type TemplateRenderer interface {
	Render(text string, context Context) (string, error)
}

// Context is the opaque variable map made available to the renderer. Per
// spec.md §9, its value model is the union {string, integer, boolean, list,
// map, null} — nothing richer is part of the core's contract.
type Context map[string]interface{}

// Clone returns a shallow copy of the context, so that per-path enrichment
// (e.g. the supplemented "path" variable, SPEC_FULL.md §4) doesn't mutate a
// value shared across parallel Target State workers.
func (c Context) Clone() Context {
	clone := make(Context, len(c)+1)
	for k, v := range c {
		clone[k] = v
	}
	return clone
}

// Processor implements the Content Processor: a pure, stateless function
// combining a Decryptor and TemplateRenderer to transform source bytes into
// target bytes, per spec.md §4.2. Holding no mutable state is what makes it
// safe to share across parallel Target State workers.
type Processor struct {
	Decryptor Decryptor
	Renderer  TemplateRenderer
}

// Process runs the pipeline: (1) the bytes are already read by the caller;
// (2) if ENCRYPTED, decrypt; (3) if TEMPLATE, render as UTF-8 text. The
// order is strict and load-bearing — see spec.md §4.2 and testable property
// 5: an encrypted template must be decrypted before rendering, since
// ciphertext is not valid template source.
func (p *Processor) Process(content []byte, attrs AttributeSet, context Context, identities []Identity) ([]byte, error) {
	if attrs.Has(ENCRYPTED) {
		decrypted, err := p.Decryptor.Decrypt(content, identities)
		if err != nil {
			return nil, &DecryptionError{Reason: err.Error()}
		}
		content = decrypted
	}

	if attrs.Has(TEMPLATE) {
		if !utf8.Valid(content) {
			return nil, &RenderError{Message: "decrypted/source content is not valid UTF-8"}
		}
		rendered, err := p.Renderer.Render(string(content), context)
		if err != nil {
			return nil, err
		}
		content = []byte(rendered)
	}

	return content, nil
}
