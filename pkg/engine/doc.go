// Package engine provides the core data structures and algorithms used by
// guisu to reconcile a versioned dotfile repository against a destination
// tree: path algebra, attribute decoding, content transformation, state
// reading, and three-way reconciliation. It does not provide facilities for
// configuration loading, git operations, or the CLI, which are instead
// provided by cmd/guisu and its collaborators.
package engine
