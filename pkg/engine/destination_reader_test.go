package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDestinationReaderMissingPath(t *testing.T) {
	root, err := NewAbsolutePath(t.TempDir())
	require.NoError(t, err)
	reader := NewDestinationReader(root)

	path, err := NewDestinationRelativePath("nope")
	require.NoError(t, err)

	entry, err := reader.Read(path)
	require.NoError(t, err)
	require.Equal(t, KindMissing, entry.Kind)
}

func TestDestinationReaderReadsFileContentAndMode(t *testing.T) {
	dir := t.TempDir()
	writeDestFile(t, dir, "bashrc", []byte("hello"), 0600)

	root, err := NewAbsolutePath(dir)
	require.NoError(t, err)
	reader := NewDestinationReader(root)

	path, err := NewDestinationRelativePath("bashrc")
	require.NoError(t, err)

	entry, err := reader.Read(path)
	require.NoError(t, err)
	require.Equal(t, KindFile, entry.Kind)
	require.Equal(t, "hello", string(entry.Content))
	require.Equal(t, uint32(0600), *entry.Mode)
}

func TestDestinationReaderConcurrentReadsReturnIdenticalValue(t *testing.T) {
	dir := t.TempDir()
	writeDestFile(t, dir, "bashrc", []byte("hello"), 0644)

	root, err := NewAbsolutePath(dir)
	require.NoError(t, err)
	reader := NewDestinationReader(root)
	path, err := NewDestinationRelativePath("bashrc")
	require.NoError(t, err)

	const goroutines = 16
	results := make([]*DestinationEntry, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		i := i
		go func() {
			defer wg.Done()
			entry, err := reader.Read(path)
			require.NoError(t, err)
			results[i] = entry
		}()
	}
	wg.Wait()

	for _, r := range results {
		require.Same(t, results[0], r)
	}
}
