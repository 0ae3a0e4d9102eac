// Package identity provides the reference engine.Decryptor implementation:
// a minimal single-recipient envelope built from primitives in
// golang.org/x/crypto (curve25519, chacha20poly1305, hkdf), a direct
// dependency of the teacher this module descends from. It is NOT a
// general-purpose age-format implementation — no header/MAC/multi-recipient
// stanza framing, no compatibility with the age CLI or other age libraries.
// It exists solely to exercise the ENCRYPTED stage of the Content Processor
// pipeline end to end with a real asymmetric primitive.
package identity

import (
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	hashpkg "crypto/sha256"

	"github.com/guisu-dotfiles/guisu/pkg/engine"
	"github.com/guisu-dotfiles/guisu/pkg/random"
)

// hkdfInfo is a fixed context string mixed into every key derivation, so
// that keys produced by this package can never collide with keys derived
// the same way for an unrelated purpose.
const hkdfInfo = "guisu-identity-v1"

// Identity is an X25519 decryption secret.
type Identity struct {
	scalar [32]byte
}

// Recipient is the public counterpart to an Identity, used by out-of-scope
// helpers (key generation tooling, not this package's concern) to encrypt.
type Recipient struct {
	point [32]byte
}

// GenerateIdentity creates a new random Identity and its Recipient.
func GenerateIdentity() (Identity, Recipient, error) {
	raw, err := random.New(32)
	if err != nil {
		return Identity{}, Recipient{}, errors.Wrap(err, "unable to generate identity")
	}
	var scalar [32]byte
	copy(scalar[:], raw)

	point, err := curve25519.X25519(scalar[:], curve25519.Basepoint)
	if err != nil {
		return Identity{}, Recipient{}, errors.Wrap(err, "unable to derive recipient")
	}

	var recipient [32]byte
	copy(recipient[:], point)

	return Identity{scalar: scalar}, Recipient{point: recipient}, nil
}

// String renders a Recipient as a hex string, suitable for storing
// alongside the source repository (e.g. in a recipients file consumed by
// the out-of-scope encryption helper).
func (r Recipient) String() string { return hex.EncodeToString(r.point[:]) }

// ParseIdentity parses a hex-encoded 32-byte X25519 scalar, as produced by
// an external key-generation tool.
func ParseIdentity(hexScalar string) (Identity, error) {
	raw, err := hex.DecodeString(hexScalar)
	if err != nil || len(raw) != 32 {
		return Identity{}, errors.New("identity must be a 64-character hex-encoded X25519 scalar")
	}
	var scalar [32]byte
	copy(scalar[:], raw)
	return Identity{scalar: scalar}, nil
}

// sealedBoxLayout is ephemeral-public (32) || nonce (12) || ciphertext+tag.
const (
	publicLen = 32
	nonceLen  = chacha20poly1305.NonceSize
)

// Encrypt produces a ciphertext decryptable by the identity corresponding to
// recipient. It exists for completeness and test fixture generation; the
// core never calls it (encryption is explicitly out of scope per spec.md
// §1 — the core only ever decrypts).
func Encrypt(plaintext []byte, recipient Recipient) ([]byte, error) {
	rawScalar, err := random.New(32)
	if err != nil {
		return nil, errors.Wrap(err, "unable to generate ephemeral key")
	}
	var ephemeralScalar [32]byte
	copy(ephemeralScalar[:], rawScalar)
	ephemeralPublic, err := curve25519.X25519(ephemeralScalar[:], curve25519.Basepoint)
	if err != nil {
		return nil, errors.Wrap(err, "unable to derive ephemeral public key")
	}

	shared, err := curve25519.X25519(ephemeralScalar[:], recipient.point[:])
	if err != nil {
		return nil, errors.Wrap(err, "unable to compute shared secret")
	}

	key, err := deriveKey(shared, ephemeralPublic, recipient.point[:])
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "unable to construct AEAD")
	}

	nonce, err := random.New(nonceLen)
	if err != nil {
		return nil, errors.Wrap(err, "unable to generate nonce")
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, publicLen+nonceLen+len(sealed))
	out = append(out, ephemeralPublic...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// decrypt attempts to decrypt ciphertext with a single identity, returning
// an error if the envelope is malformed or authentication fails.
func (id Identity) decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < publicLen+nonceLen {
		return nil, errors.New("ciphertext too short to be a valid envelope")
	}

	ephemeralPublic := ciphertext[:publicLen]
	nonce := ciphertext[publicLen : publicLen+nonceLen]
	sealed := ciphertext[publicLen+nonceLen:]

	shared, err := curve25519.X25519(id.scalar[:], ephemeralPublic)
	if err != nil {
		return nil, errors.Wrap(err, "unable to compute shared secret")
	}

	ownPublic, err := curve25519.X25519(id.scalar[:], curve25519.Basepoint)
	if err != nil {
		return nil, errors.Wrap(err, "unable to derive own public key")
	}

	key, err := deriveKey(shared, ephemeralPublic, ownPublic)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, errors.Wrap(err, "unable to construct AEAD")
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, errors.Wrap(err, "authentication failed")
	}
	return plaintext, nil
}

// deriveKey derives a 32-byte AEAD key from an X25519 shared secret, bound
// to the ephemeral and recipient public keys via the HKDF salt so that the
// same shared secret never produces the same key under a different
// transcript.
func deriveKey(shared, ephemeralPublic, recipientPublic []byte) ([]byte, error) {
	salt := append(append([]byte{}, ephemeralPublic...), recipientPublic...)
	reader := hkdf.New(hashpkg.New, shared, salt, []byte(hkdfInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, errors.Wrap(err, "unable to derive key")
	}
	return key, nil
}

// Decryptor implements engine.Decryptor over a set of Identity values. The
// engine.Identity values it receives are expected to be identity.Identity;
// any other concrete type is skipped rather than causing a panic, since the
// core treats identities as opaque and a caller could in principle mix
// decryptor implementations.
type Decryptor struct{}

// Decrypt implements engine.Decryptor: it tries every supplied identity in
// order and succeeds as soon as one works, per spec.md §4.2.
func (Decryptor) Decrypt(ciphertext []byte, identities []engine.Identity) ([]byte, error) {
	var lastErr error
	tried := 0
	for _, raw := range identities {
		id, ok := raw.(Identity)
		if !ok {
			continue
		}
		tried++
		plaintext, err := id.decrypt(ciphertext)
		if err == nil {
			return plaintext, nil
		}
		lastErr = err
	}
	if tried == 0 {
		return nil, errors.New("no compatible identities supplied")
	}
	return nil, errors.Wrapf(lastErr, "all %d identities failed", tried)
}
