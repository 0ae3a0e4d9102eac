package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guisu-dotfiles/guisu/pkg/logging"
)

func decisionsAllApply(classifications []Classification) map[string]Decision {
	decisions := make(map[string]Decision, len(classifications))
	for _, c := range classifications {
		if c.Status == StatusRemoved {
			decisions[c.Path.String()] = Apply
			continue
		}
		decisions[c.Path.String()] = Apply
	}
	return decisions
}

func TestApplyAddedWritesFileAndLedgerRecord(t *testing.T) {
	root := t.TempDir()
	rootPath, err := NewAbsolutePath(root)
	require.NoError(t, err)
	ledger := newMemoryLedger()
	applier := &Applier{Root: rootPath, Ledger: ledger, Logger: logging.RootLogger}

	target := fileTarget(t, "bashrc", "export PATH=x", 0644)
	classifications := []Classification{{Path: target.Path, Status: StatusAdded, Target: target}}

	report := applier.Apply(classifications, decisionsAllApply(classifications), nil)
	require.Equal(t, 1, report.Added)
	require.Empty(t, report.Errors)

	content, err := os.ReadFile(filepath.Join(root, "bashrc"))
	require.NoError(t, err)
	require.Equal(t, "export PATH=x", string(content))

	record, ok, err := ledger.Get("bashrc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, fingerprint([]byte("export PATH=x")), record.Fingerprint)
}

func TestApplyIsIdempotent(t *testing.T) {
	root := t.TempDir()
	rootPath, _ := NewAbsolutePath(root)
	ledger := newMemoryLedger()
	applier := &Applier{Root: rootPath, Ledger: ledger, Logger: logging.RootLogger}

	target := fileTarget(t, "bashrc", "export PATH=x", 0644)
	classifications := []Classification{{Path: target.Path, Status: StatusAdded, Target: target}}

	first := applier.Apply(classifications, decisionsAllApply(classifications), nil)
	require.Equal(t, 1, first.Added)

	// Re-applying the same target against the now-synced state should still
	// succeed without error; the Applier itself doesn't re-classify, so it
	// simply rewrites identical content and re-records an identical ledger
	// entry — a second full pass through Reconcile+Apply is a no-op for the
	// caller because reconciliation now reports Synced and nothing gets an
	// Apply decision. That reconciliation property is asserted here
	// directly rather than re-running Apply.
	destReader := NewDestinationReader(rootPath)
	destEntry := mustReadEntry(t, destReader, target.Path)
	record, hasLedger := mustGetLedger(t, ledger, "bashrc")

	status, err := classify(target, destEntry, record, hasLedger)
	require.NoError(t, err)
	require.Equal(t, StatusSynced, status)
}

func mustReadEntry(t *testing.T, reader *DestinationReader, path DestinationRelativePath) *DestinationEntry {
	t.Helper()
	entry, err := reader.Read(path)
	require.NoError(t, err)
	return entry
}

func mustGetLedger(t *testing.T, ledger Ledger, key string) (LedgerRecord, bool) {
	t.Helper()
	record, ok, err := ledger.Get(key)
	require.NoError(t, err)
	return record, ok
}

func TestApplySkippedMakesNoChange(t *testing.T) {
	root := t.TempDir()
	writeDestFile(t, root, "bashrc", []byte("user-edited"), 0644)
	rootPath, _ := NewAbsolutePath(root)
	ledger := newMemoryLedger()
	applier := &Applier{Root: rootPath, Ledger: ledger, Logger: logging.RootLogger}

	target := fileTarget(t, "bashrc", "from-source", 0644)
	classifications := []Classification{{Path: target.Path, Status: StatusModifiedDest, Target: target}}
	decisions := map[string]Decision{"bashrc": Skip}

	report := applier.Apply(classifications, decisions, nil)
	require.Equal(t, 1, report.Skipped)

	content, err := os.ReadFile(filepath.Join(root, "bashrc"))
	require.NoError(t, err)
	require.Equal(t, "user-edited", string(content))

	_, ok, err := ledger.Get("bashrc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestApplyDeleteRemovesFileAndLedgerRecord(t *testing.T) {
	root := t.TempDir()
	writeDestFile(t, root, "obsolete", []byte("gone soon"), 0644)
	rootPath, _ := NewAbsolutePath(root)
	ledger := newMemoryLedger()
	require.NoError(t, ledger.Set("obsolete", LedgerRecord{Fingerprint: fingerprint([]byte("gone soon"))}))
	applier := &Applier{Root: rootPath, Ledger: ledger, Logger: logging.RootLogger}

	path, err := NewDestinationRelativePath("obsolete")
	require.NoError(t, err)
	classifications := []Classification{{Path: path, Status: StatusRemoved, Target: nil}}
	decisions := map[string]Decision{"obsolete": Delete}

	report := applier.Apply(classifications, decisions, nil)
	require.Equal(t, 1, report.Removed)

	_, err = os.Stat(filepath.Join(root, "obsolete"))
	require.True(t, os.IsNotExist(err))

	_, ok, _ := ledger.Get("obsolete")
	require.False(t, ok)
}

func TestApplyOrdersParentDirectoryBeforeChild(t *testing.T) {
	root := t.TempDir()
	rootPath, _ := NewAbsolutePath(root)
	ledger := newMemoryLedger()
	applier := &Applier{Root: rootPath, Ledger: ledger, Logger: logging.RootLogger}

	childPath, err := NewDestinationRelativePath("dir/child")
	require.NoError(t, err)
	child := &TargetEntry{Kind: KindFile, Path: childPath, Content: []byte("x"), Mode: uint32Ptr(0644)}

	dirPath, err := NewDestinationRelativePath("dir")
	require.NoError(t, err)
	dir := &TargetEntry{Kind: KindDirectory, Path: dirPath, Mode: uint32Ptr(0755)}

	// Deliberately supplied out of order; Apply must still create the
	// parent before (or via ensureParent alongside) the child.
	classifications := []Classification{
		{Path: child.Path, Status: StatusAdded, Target: child},
		{Path: dir.Path, Status: StatusAdded, Target: dir},
	}
	report := applier.Apply(classifications, decisionsAllApply(classifications), nil)
	require.Empty(t, report.Errors)

	info, err := os.Stat(filepath.Join(root, "dir", "child"))
	require.NoError(t, err)
	require.False(t, info.IsDir())
}

func uint32Ptr(v uint32) *uint32 { return &v }
