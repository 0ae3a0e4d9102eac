package engine

import (
	"os"
	"sync"
)

// DestinationReader is a lazy, memoized view of the destination tree,
// scoped to a single reconciliation pass (spec.md §4.5). It's owned
// exclusively by the Reconciler that creates it — never shared across
// passes — so a plain mutex-guarded map is sufficient; there's no
// cross-pass invalidation to worry about.
type DestinationReader struct {
	root AbsolutePath

	mu    sync.Mutex
	cache map[string]*DestinationEntry
}

// NewDestinationReader creates a reader rooted at root.
func NewDestinationReader(root AbsolutePath) *DestinationReader {
	return &DestinationReader{
		root:  root,
		cache: make(map[string]*DestinationEntry),
	}
}

// Read returns the destination entry at rel, reading and caching it on
// first access. Concurrent calls for the same path are safe and return the
// identical cached value (spec.md §8, boundary behavior: "concurrent read
// of the same destination path from the reader cache returns identical
// value").
func (r *DestinationReader) Read(rel DestinationRelativePath) (*DestinationEntry, error) {
	key := rel.String()

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	entry, err := r.readUncached(rel)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if cached, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.cache[key] = entry
	r.mu.Unlock()

	return entry, nil
}

// readUncached performs the actual stat/read against the filesystem.
func (r *DestinationReader) readUncached(rel DestinationRelativePath) (*DestinationEntry, error) {
	abs := rel.Resolve(r.root)

	info, err := os.Lstat(abs.String())
	if os.IsNotExist(err) {
		missing := Missing(rel)
		return &missing, nil
	} else if err != nil {
		return nil, WrapIO("stat", rel.String(), err)
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(abs.String())
		if err != nil {
			return nil, WrapIO("readlink", rel.String(), err)
		}
		return &DestinationEntry{Kind: KindSymlink, Path: rel, LinkTarget: target}, nil
	case info.IsDir():
		mode := uint32(info.Mode().Perm())
		return &DestinationEntry{Kind: KindDirectory, Path: rel, Mode: &mode}, nil
	case info.Mode().IsRegular():
		content, err := os.ReadFile(abs.String())
		if err != nil {
			return nil, WrapIO("read", rel.String(), err)
		}
		mode := uint32(info.Mode().Perm())
		return &DestinationEntry{Kind: KindFile, Path: rel, Content: content, Mode: &mode}, nil
	default:
		return nil, &UnsupportedFileType{Path: rel.String()}
	}
}
