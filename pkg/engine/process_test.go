package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// reversingDecryptor is a fake Decryptor whose "decryption" is reversing the
// bytes, purely so tests can assert ordering without a real cipher.
type reversingDecryptor struct{ calls *[]string }

func (d reversingDecryptor) Decrypt(ciphertext []byte, identities []Identity) ([]byte, error) {
	*d.calls = append(*d.calls, "decrypt")
	reversed := make([]byte, len(ciphertext))
	for i, b := range ciphertext {
		reversed[len(ciphertext)-1-i] = b
	}
	return reversed, nil
}

type upperRenderer struct{ calls *[]string }

func (r upperRenderer) Render(text string, context Context) (string, error) {
	*r.calls = append(*r.calls, "render")
	return strings.ToUpper(text), nil
}

func TestProcessEncryptedTemplateOrdering(t *testing.T) {
	var calls []string
	p := &Processor{
		Decryptor: reversingDecryptor{calls: &calls},
		Renderer:  upperRenderer{calls: &calls},
	}

	// "olleh" reversed is "hello"; rendering then upper-cases it.
	out, err := p.Process([]byte("olleh"), AttributeSet(ENCRYPTED|TEMPLATE), Context{}, nil)
	require.NoError(t, err)
	require.Equal(t, "HELLO", string(out))
	require.Equal(t, []string{"decrypt", "render"}, calls)
}

func TestProcessTemplateOnlySkipsDecrypt(t *testing.T) {
	var calls []string
	p := &Processor{
		Decryptor: reversingDecryptor{calls: &calls},
		Renderer:  upperRenderer{calls: &calls},
	}

	out, err := p.Process([]byte("hello"), AttributeSet(TEMPLATE), Context{}, nil)
	require.NoError(t, err)
	require.Equal(t, "HELLO", string(out))
	require.Equal(t, []string{"render"}, calls)
}

func TestProcessPlainPassesThroughUnchanged(t *testing.T) {
	var calls []string
	p := &Processor{
		Decryptor: reversingDecryptor{calls: &calls},
		Renderer:  upperRenderer{calls: &calls},
	}

	out, err := p.Process([]byte("hello"), AttributeSet(0), Context{}, nil)
	require.NoError(t, err)
	require.Equal(t, "hello", string(out))
	require.Empty(t, calls)
}

func TestProcessNonUTF8TemplateFails(t *testing.T) {
	p := &Processor{Renderer: upperRenderer{calls: &[]string{}}}
	_, err := p.Process([]byte{0xff, 0xfe, 0xfd}, AttributeSet(TEMPLATE), Context{}, nil)
	require.Error(t, err)
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
}

func TestContextCloneDoesNotMutateOriginal(t *testing.T) {
	base := Context{"host": "alpha"}
	clone := base.Clone()
	clone["path"] = "bashrc"

	require.Equal(t, Context{"host": "alpha"}, base)
	require.Equal(t, "bashrc", clone["path"])
}
