package engine

import (
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/guisu-dotfiles/guisu/pkg/filesystem"
	"github.com/guisu-dotfiles/guisu/pkg/logging"
)

// Report is the structured outcome of an Apply pass, per spec.md §4.7.
type Report struct {
	Added    int
	Modified int
	Removed  int
	Skipped  int
	Errors   []PathFailure
}

// PathFailure pairs a destination-relative path with the error that
// occurred while applying its decision.
type PathFailure struct {
	Path DestinationRelativePath
	Err  error
}

// Cancelled is a cooperative cancellation flag, checked between per-path
// apply steps (spec.md §5). The zero value is "not cancelled".
type Cancelled func() bool

// Applier performs filesystem mutations and the corresponding ledger
// updates (spec.md §4.7).
type Applier struct {
	Root   AbsolutePath
	Ledger Ledger
	Logger *logging.Logger
}

// Apply executes decisions against classifications, in the lexicographic
// order spec.md §5 mandates (parent before child), and returns a Report.
// It never aborts early: per-path failures are recorded and the pass
// completes so the caller gets a full report (spec.md §7).
func (a *Applier) Apply(classifications []Classification, decisions map[string]Decision, cancelled Cancelled) Report {
	sorted := make([]Classification, len(classifications))
	copy(sorted, classifications)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path.Less(sorted[j].Path)
	})

	var report Report
	for _, c := range sorted {
		if cancelled != nil && cancelled() {
			break
		}

		decision := decisions[c.Path.String()]
		a.Logger.Debugf("apply: %s -> %s (%s)", c.Path.String(), decision, c.Status)
		switch decision {
		case Skip:
			report.Skipped++
			continue
		case Delete:
			if err := a.applyDelete(c.Path); err != nil {
				a.recordFailure(&report, c.Path, err)
				continue
			}
			report.Removed++
		case Apply:
			if c.Status == StatusRemoved {
				if err := a.applyDelete(c.Path); err != nil {
					a.recordFailure(&report, c.Path, err)
					continue
				}
				report.Removed++
				continue
			}
			if err := a.applyTarget(c.Target); err != nil {
				a.recordFailure(&report, c.Path, err)
				continue
			}
			if c.Status == StatusAdded || c.Status == StatusAddedConflict {
				report.Added++
			} else {
				report.Modified++
			}
		}
	}

	return report
}

// recordFailure appends a per-path failure to the report and logs it at
// LevelWarn: apply failures are exactly the kind of problem spec.md's
// ambient logging requirements call out, distinct from the decision trace
// logged at LevelDebug above.
func (a *Applier) recordFailure(report *Report, path DestinationRelativePath, err error) {
	report.Errors = append(report.Errors, PathFailure{Path: path, Err: err})
	a.Logger.Warn(errors.Wrapf(err, "apply failed for %s", path.String()))
}

// applyTarget writes a single target entry to disk and updates its ledger
// record, per spec.md §4.7.
func (a *Applier) applyTarget(t *TargetEntry) error {
	abs := t.Path.Resolve(a.Root)

	switch t.Kind {
	case KindDirectory:
		if err := a.ensureDirectory(abs, t.Mode); err != nil {
			return err
		}
		return a.Ledger.Set(t.Path.String(), LedgerRecord{Mode: t.Mode})

	case KindFile:
		if err := a.ensureParent(t.Path); err != nil {
			return err
		}
		mode := os.FileMode(0644)
		if t.Mode != nil {
			mode = os.FileMode(*t.Mode)
		}
		if err := filesystem.WriteFileAtomic(abs.String(), t.Content, mode, a.Logger); err != nil {
			return WrapIO("write", t.Path.String(), err)
		}
		fp := t.Fingerprint()
		return a.Ledger.Set(t.Path.String(), LedgerRecord{Fingerprint: fp, Mode: t.Mode})

	case KindSymlink:
		if err := a.ensureParent(t.Path); err != nil {
			return err
		}
		if err := a.applySymlink(abs.String(), t.LinkTarget); err != nil {
			return err
		}
		return a.Ledger.Set(t.Path.String(), LedgerRecord{})

	default:
		return &ReconcileError{Path: t.Path.String(), Reason: "unsupported target entry kind"}
	}
}

// ensureParent creates the parent directory chain for rel with default
// permissions, if it doesn't already exist. spec.md §4.7 directs that
// intermediate directories take a mode "derived from its source attributes,
// else default 0755" — the "its" there is the directory's own source entry
// when one exists; an implicitly-created parent with no corresponding
// source entry gets the default.
func (a *Applier) ensureParent(rel DestinationRelativePath) error {
	if rel.Dir().IsRoot() {
		return nil
	}
	return a.ensureDirectory(rel.Dir().Resolve(a.Root), nil)
}

// ensureDirectory creates abs (and any missing ancestors) if it doesn't
// exist, then applies mode if supplied.
func (a *Applier) ensureDirectory(abs AbsolutePath, mode *uint32) error {
	perm := os.FileMode(0755)
	if mode != nil {
		perm = os.FileMode(*mode)
	}
	if err := os.MkdirAll(abs.String(), perm); err != nil {
		return WrapIO("mkdir", abs.String(), err)
	}
	if mode != nil {
		if err := os.Chmod(abs.String(), os.FileMode(*mode)); err != nil {
			return WrapIO("chmod", abs.String(), err)
		}
	}
	return nil
}

// applySymlink implements the Symlink apply rule in spec.md §4.7: a no-op
// if an equal symlink already exists; otherwise remove any existing
// symlink-or-missing entry and create the new one; refuse to replace a
// regular file or directory.
func (a *Applier) applySymlink(abs, target string) error {
	info, err := os.Lstat(abs)
	if err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			existing, readErr := os.Readlink(abs)
			if readErr == nil && existing == target {
				return nil
			}
			if err := os.Remove(abs); err != nil {
				return WrapIO("remove", abs, err)
			}
		} else {
			return &ReconcileError{Path: abs, Reason: "refusing to replace non-symlink with symlink without explicit override"}
		}
	} else if !os.IsNotExist(err) {
		return WrapIO("stat", abs, err)
	}

	if err := os.Symlink(target, abs); err != nil {
		return WrapIO("symlink", abs, err)
	}
	return nil
}

// applyDelete implements the Delete decision: remove the destination entry
// (if present) and its ledger record.
func (a *Applier) applyDelete(rel DestinationRelativePath) error {
	abs := rel.Resolve(a.Root)
	if err := os.RemoveAll(abs.String()); err != nil && !os.IsNotExist(err) {
		return WrapIO("remove", rel.String(), err)
	}
	return a.Ledger.Delete(rel.String())
}
