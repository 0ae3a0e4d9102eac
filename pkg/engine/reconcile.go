package engine

import "github.com/guisu-dotfiles/guisu/pkg/logging"

// Status is the classification the Reconciler assigns to a single
// destination-relative path, per the truth table in spec.md §4.6.
type Status uint8

const (
	// StatusSynced means target, destination, and ledger all agree;
	// nothing to do.
	StatusSynced Status = iota
	// StatusAdded means the path exists in the target but not on disk.
	StatusAdded
	// StatusAddedConflict means the path exists in the target and on disk,
	// with different content, and was never recorded in the ledger (no
	// prior application to arbitrate): the caller must choose adopt or
	// overwrite.
	StatusAddedConflict
	// StatusModifiedSource means the source changed since the last
	// application and the destination still matches what was last applied;
	// safe to apply automatically.
	StatusModifiedSource
	// StatusModifiedDest means the user edited the destination directly
	// since the last application and the source is unchanged; should be
	// reported, not silently overwritten.
	StatusModifiedDest
	// StatusConflict means both source and destination diverged from the
	// last applied state (or their kinds are incompatible); no automatic
	// resolution.
	StatusConflict
	// StatusRemoved means the path was removed from the source but is
	// still present (managed) on disk; schedule deletion.
	StatusRemoved
)

func (s Status) String() string {
	switch s {
	case StatusSynced:
		return "synced"
	case StatusAdded:
		return "added"
	case StatusAddedConflict:
		return "added-conflict"
	case StatusModifiedSource:
		return "modified-source"
	case StatusModifiedDest:
		return "modified-dest"
	case StatusConflict:
		return "conflict"
	case StatusRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Decision is the caller's explicit disposition for a classified path,
// consumed by the Applier.
type Decision uint8

const (
	// Skip performs no filesystem mutation and leaves the ledger untouched.
	Skip Decision = iota
	// Apply writes the target entry (or, for StatusRemoved, deletes the
	// destination entry — see Delete below for the dedicated case).
	Apply
	// Delete removes the destination entry and its ledger record.
	Delete
)

func (d Decision) String() string {
	switch d {
	case Skip:
		return "skip"
	case Apply:
		return "apply"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// isProblem reports whether a Status requires human attention rather than
// being safe for the default apply policy to resolve on its own.
func (s Status) isProblem() bool {
	switch s {
	case StatusAddedConflict, StatusModifiedDest, StatusConflict:
		return true
	default:
		return false
	}
}

// Classification is the Reconciler's output for one path: its Status and
// the target entry to apply. It carries no action of its own; the caller
// supplies a Decision per path to the Applier.
type Classification struct {
	Path   DestinationRelativePath
	Status Status
	Target *TargetEntry // nil for StatusRemoved
}

// Reconcile implements the Reconciler (spec.md §4.6) over the full input
// universe: the union of target-state keys and ledger keys. Unmanaged
// destination files (present on disk, absent from both target and ledger)
// are never surfaced here, per spec.md §4.6 ("out of core scope"). logger
// receives each classification decision at LevelDebug and each
// human-attention status (a conflict of some kind) at LevelWarn; a nil
// logger disables both.
func Reconcile(target *TargetState, destReader *DestinationReader, ledger Ledger, logger *logging.Logger) ([]Classification, error) {
	universe := make(map[string]struct{}, len(target.Entries))
	for key := range target.Entries {
		universe[key] = struct{}{}
	}

	var results []Classification
	for key := range universe {
		t := target.Entries[key]
		path := t.Path

		ledgerRecord, hasLedger, err := ledger.Get(key)
		if err != nil {
			return nil, err
		}

		dest, err := destReader.Read(path)
		if err != nil {
			return nil, err
		}

		status, err := classify(t, dest, ledgerRecord, hasLedger)
		if err != nil {
			return nil, err
		}

		logReconcileDecision(logger, path, status)
		results = append(results, Classification{Path: path, Status: status, Target: t})
	}

	// Paths the ledger still remembers but that no longer appear in the
	// target state: if the destination is still present, they've been
	// removed from source and should be scheduled for deletion.
	removed, err := reconcileRemovals(target, destReader, ledger, logger)
	if err != nil {
		return nil, err
	}
	results = append(results, removed...)

	return results, nil
}

// logReconcileDecision logs a single path's classification: every decision
// at LevelDebug, and conflict statuses additionally at LevelWarn since those
// are the ones that need a human to look at them.
func logReconcileDecision(logger *logging.Logger, path DestinationRelativePath, status Status) {
	logger.Debugf("reconcile: %s -> %s", path.String(), status)
	if status.isProblem() {
		logger.Warn(&ReconcileError{Path: path.String(), Reason: "requires manual resolution: " + status.String()})
	}
}

// reconcileRemovals handles the "T absent" half of the truth table: ledger
// keys with no corresponding target entry.
func reconcileRemovals(target *TargetState, destReader *DestinationReader, ledger Ledger, logger *logging.Logger) ([]Classification, error) {
	keys, err := ledgerKeysIfSupported(ledger)
	if err != nil || keys == nil {
		return nil, err
	}

	var results []Classification
	for _, key := range keys {
		if _, stillTarget := target.Entries[key]; stillTarget {
			continue
		}

		path, err := NewDestinationRelativePath(key)
		if err != nil {
			return nil, err
		}

		dest, err := destReader.Read(path)
		if err != nil {
			return nil, err
		}

		// "absent | File(_,_) | None | ignored": unreachable here since
		// keys came from the ledger itself, so a record necessarily
		// exists. If destination is also missing there's nothing left to
		// track either way.
		if dest.Kind == KindMissing {
			continue
		}

		logReconcileDecision(logger, path, StatusRemoved)
		results = append(results, Classification{Path: path, Status: StatusRemoved, Target: nil})
	}

	return results, nil
}

// ledgerKeysKnownPaths is implemented by ledgers that can enumerate their
// own keys (pkg/ledger's bbolt implementation does). It's an optional
// capability: a minimal Ledger implementation (e.g. one backing tests) need
// not support enumeration, in which case Reconcile simply can't discover
// StatusRemoved paths and reconcileRemovals is a no-op.
type ledgerKeysKnownPaths interface {
	Keys() ([]string, error)
}

func ledgerKeysIfSupported(ledger Ledger) ([]string, error) {
	enumerable, ok := ledger.(ledgerKeysKnownPaths)
	if !ok {
		return nil, nil
	}
	return enumerable.Keys()
}

// classify implements the per-path status table in spec.md §4.6.
func classify(t *TargetEntry, d *DestinationEntry, l LedgerRecord, hasLedger bool) (Status, error) {
	if d.Kind == KindMissing {
		return StatusAdded, nil
	}

	if t.Kind != d.Kind {
		return StatusConflict, nil
	}

	switch t.Kind {
	case KindFile:
		return classifyFile(t, d, l, hasLedger), nil
	case KindDirectory:
		return classifyModeOnly(t.Mode, d.Mode), nil
	case KindSymlink:
		if t.LinkTarget == d.LinkTarget {
			return StatusSynced, nil
		}
		return StatusModifiedSource, nil
	default:
		return StatusConflict, nil
	}
}

// classifyFile implements the File/File rows of the truth table.
func classifyFile(t *TargetEntry, d *DestinationEntry, l LedgerRecord, hasLedger bool) Status {
	hc := t.Fingerprint()
	hd := d.Fingerprint()

	if !hasLedger {
		if hc == hd {
			return StatusSynced
		}
		return StatusAddedConflict
	}

	hl := l.Fingerprint
	sourceChanged := hc != hl
	destChanged := hd != hl

	switch {
	case !sourceChanged && !destChanged:
		return classifyModeOnly(t.Mode, d.Mode)
	case sourceChanged && !destChanged:
		return StatusModifiedSource
	case !sourceChanged && destChanged:
		return StatusModifiedDest
	case hc == hd:
		// Both diverged from the ledger but converged on each other: the
		// observable state already matches what applying the source would
		// produce, so there's nothing left to reconcile.
		return classifyModeOnly(t.Mode, d.Mode)
	default:
		return StatusConflict
	}
}

// classifyModeOnly compares two optional modes once content (or kind, for
// directories/symlinks) is known to already agree: equal modes are Synced,
// a difference is Modified-source (a mode change always originates from the
// decoded source attributes, never from the destination).
func classifyModeOnly(a, b *uint32) Status {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return StatusSynced
		}
		return StatusModifiedSource
	}
	if *a == *b {
		return StatusSynced
	}
	return StatusModifiedSource
}
