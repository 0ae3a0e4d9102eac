package engine

import "github.com/guisu-dotfiles/guisu/pkg/logging"

// Configuration is the fully-resolved input to a reconciliation pass.
// Nothing in this package loads configuration files or merges variables —
// per spec.md §1, that's the command line's job; this struct is the contract
// boundary.
type Configuration struct {
	// SourceRoot is the absolute path to the versioned source repository.
	SourceRoot AbsolutePath
	// DestinationRoot is the absolute path to the tree being managed
	// (typically the user's home directory).
	DestinationRoot AbsolutePath
	// Ignore decides whether a source-relative path is skipped entirely.
	// A nil Ignore matches nothing (everything is read).
	Ignore IgnorePredicate
	// Context is the opaque variable map available to the renderer.
	Context Context
	// Identities is the sequence of decryption identities tried, in order,
	// against every ENCRYPTED entry.
	Identities []Identity
	// Logger receives debug-level reconciliation decisions and warn-level
	// problems. A nil Logger disables logging entirely (Logger is nil-safe).
	Logger *logging.Logger
}
