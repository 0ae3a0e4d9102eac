package identity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guisu-dotfiles/guisu/pkg/engine"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	id, recipient, err := GenerateIdentity()
	require.NoError(t, err)

	ciphertext, err := Encrypt([]byte("super secret value"), recipient)
	require.NoError(t, err)

	decryptor := Decryptor{}
	plaintext, err := decryptor.Decrypt(ciphertext, []engine.Identity{id})
	require.NoError(t, err)
	require.Equal(t, "super secret value", string(plaintext))
}

func TestDecryptFailsWithWrongIdentity(t *testing.T) {
	_, recipient, err := GenerateIdentity()
	require.NoError(t, err)
	wrongIdentity, _, err := GenerateIdentity()
	require.NoError(t, err)

	ciphertext, err := Encrypt([]byte("data"), recipient)
	require.NoError(t, err)

	decryptor := Decryptor{}
	_, err = decryptor.Decrypt(ciphertext, []engine.Identity{wrongIdentity})
	require.Error(t, err)
}

func TestDecryptTriesEachIdentityInOrder(t *testing.T) {
	id, recipient, err := GenerateIdentity()
	require.NoError(t, err)
	other, _, err := GenerateIdentity()
	require.NoError(t, err)

	ciphertext, err := Encrypt([]byte("data"), recipient)
	require.NoError(t, err)

	decryptor := Decryptor{}
	plaintext, err := decryptor.Decrypt(ciphertext, []engine.Identity{other, id})
	require.NoError(t, err)
	require.Equal(t, "data", string(plaintext))
}

func TestDecryptSkipsIncompatibleIdentityTypes(t *testing.T) {
	id, recipient, err := GenerateIdentity()
	require.NoError(t, err)
	ciphertext, err := Encrypt([]byte("data"), recipient)
	require.NoError(t, err)

	decryptor := Decryptor{}
	plaintext, err := decryptor.Decrypt(ciphertext, []engine.Identity{"not an identity", id})
	require.NoError(t, err)
	require.Equal(t, "data", string(plaintext))
}

func TestDecryptNoCompatibleIdentitiesFails(t *testing.T) {
	decryptor := Decryptor{}
	_, err := decryptor.Decrypt([]byte("irrelevant"), []engine.Identity{"also not an identity"})
	require.Error(t, err)
}

func TestParseIdentityRejectsShortHex(t *testing.T) {
	id, _, err := GenerateIdentity()
	require.NoError(t, err)

	// Identity doesn't expose its own hex form (only Recipient does), so
	// this checks only that ParseIdentity rejects hex that does not encode a
	// 32-byte scalar.
	_ = id
	_, err = ParseIdentity("00")
	require.Error(t, err)
}
