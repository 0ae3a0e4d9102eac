package engine

import "crypto/sha256"

// fingerprint computes the content fingerprint used throughout reconciliation
// and the ledger. spec.md §3 mandates SHA-256 explicitly (there is no
// ecosystem library choice to make here; crypto/sha256 is the canonical
// implementation), so this is the one place in the engine that reaches
// directly for the standard library rather than a pack dependency.
func fingerprint(content []byte) [32]byte {
	return sha256.Sum256(content)
}
