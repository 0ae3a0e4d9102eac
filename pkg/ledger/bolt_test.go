package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guisu-dotfiles/guisu/pkg/engine"
)

func TestOpenCreatesBucketAndIsReusable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	// Reopening an existing database must not fail or wipe its bucket.
	l2, err := Open(path)
	require.NoError(t, err)
	defer l2.Close()
}

func TestSetGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	mode := uint32(0644)
	record := engine.LedgerRecord{Fingerprint: [32]byte{1, 2, 3}, Mode: &mode}
	require.NoError(t, l.Set("bashrc", record))

	got, ok, err := l.Get("bashrc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, record.Fingerprint, got.Fingerprint)
	require.Equal(t, mode, *got.Mode)
}

func TestGetMissingKeyReturnsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	_, ok, err := l.Get("never-set")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteRemovesRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Set("bashrc", engine.LedgerRecord{Fingerprint: [32]byte{9}}))
	require.NoError(t, l.Delete("bashrc"))

	_, ok, err := l.Get("bashrc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeysEnumeratesAllRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Set("a", engine.LedgerRecord{}))
	require.NoError(t, l.Set("b", engine.LedgerRecord{}))

	keys, err := l.Keys()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestLedgerSatisfiesEngineLedgerInterface(t *testing.T) {
	var _ engine.Ledger = (*Ledger)(nil)
}
