package engine

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/guisu-dotfiles/guisu/pkg/parallelism"
)

// SourceState is the in-memory model of the source repository's contents
// after attribute decoding, keyed by destination-relative path.
type SourceState struct {
	Entries map[string]*SourceEntry
}

// rawEntry is the output of the (sequential, filesystem-order) enumeration
// phase: an absolute path plus its source-relative path and raw
// directory-entry metadata, ready for parallel decoding.
type rawEntry struct {
	absolutePath string
	sourcePath   SourceRelativePath
	dirEntry     fs.DirEntry
}

// simdFunc adapts a plain function to the parallelism.SIMDWork interface.
type simdFunc func(index, size int) error

func (f simdFunc) Do(index, size int) error { return f(index, size) }

// ReadSourceState implements the Source Reader (spec.md §4.3): it enumerates
// every entry under config.SourceRoot not matched by config.Ignore, decodes
// each one's filename, and returns the resulting mapping.
//
// Enumeration itself is sequential (directory walking is inherently ordered
// I/O), but per-entry decoding — the part spec.md §5 calls out as
// embarrassingly parallel — runs on a SIMDWorkerArray, matching the
// reconciliation engine's own data-parallel scan phase.
func ReadSourceState(config *Configuration) (*SourceState, error) {
	raws, err := enumerateSource(config)
	if err != nil {
		return nil, err
	}

	decoded := make([]*SourceEntry, len(raws))
	errs := make([]error, len(raws))

	workers := parallelism.NewSIMDWorkerArray(0)
	defer workers.Terminate()

	if err := workers.Do(simdFunc(func(index, size int) error {
		for i := index; i < len(raws); i += size {
			entry, derr := decodeSourceEntry(raws[i])
			if derr != nil {
				errs[i] = derr
				continue
			}
			decoded[i] = entry
		}
		return nil
	})); err != nil {
		return nil, err
	}

	if agg := NewAggregateError(errs); agg != nil {
		return nil, agg
	}

	entries := make(map[string]*SourceEntry, len(decoded))
	duplicatesByTarget := make(map[string][]string)
	for _, entry := range decoded {
		key := entry.DestinationPath.String()
		if existing, ok := entries[key]; ok {
			if duplicatesByTarget[key] == nil {
				duplicatesByTarget[key] = []string{existing.SourcePath.String()}
			}
			duplicatesByTarget[key] = append(duplicatesByTarget[key], entry.SourcePath.String())
			continue
		}
		entries[key] = entry
	}
	if len(duplicatesByTarget) > 0 {
		var errs []error
		targets := make([]string, 0, len(duplicatesByTarget))
		for target := range duplicatesByTarget {
			targets = append(targets, target)
		}
		sort.Strings(targets)
		for _, target := range targets {
			errs = append(errs, &DuplicateTarget{Target: target, Paths: duplicatesByTarget[target]})
		}
		return nil, NewAggregateError(errs)
	}

	return &SourceState{Entries: entries}, nil
}

// enumerateSource walks the source tree, applying the ignore predicate and
// rejecting unsupported file types, producing the raw work list that will be
// decoded in parallel.
func enumerateSource(config *Configuration) ([]rawEntry, error) {
	var raws []rawEntry

	root := config.SourceRoot.String()
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return WrapIO("stat", path, err)
		}
		if path == root {
			return nil
		}

		relative, err := filepath.Rel(root, path)
		if err != nil {
			return WrapIO("stat", path, err)
		}
		srcPath, err := NewSourceRelativePath(filepath.ToSlash(relative))
		if err != nil {
			return err
		}

		if config.Ignore != nil && config.Ignore(srcPath.String(), d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return WrapIO("stat", path, err)
		}
		if !validEntryMode(info.Mode()) {
			return &UnsupportedFileType{Path: srcPath.String()}
		}

		raws = append(raws, rawEntry{absolutePath: path, sourcePath: srcPath, dirEntry: d})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return raws, nil
}

// validEntryMode reports whether a directory entry's mode is one this
// engine models (regular file, directory, symlink); devices, sockets, and
// named pipes are rejected per spec.md §4.3.
func validEntryMode(mode fs.FileMode) bool {
	if mode&fs.ModeSymlink != 0 {
		return true
	}
	return mode.IsDir() || mode.IsRegular()
}

// decodeSourceEntry decodes a single raw directory entry into a SourceEntry,
// per spec.md §4.1: the destination-relative path is built by decoding each
// path segment independently and joining the decoded segments, so that a
// marker on a parent directory doesn't affect how children are decoded.
func decodeSourceEntry(raw rawEntry) (*SourceEntry, error) {
	destPath, err := decodeDestinationPath(raw.sourcePath.String())
	if err != nil {
		return nil, err
	}

	info, err := raw.dirEntry.Info()
	if err != nil {
		return nil, WrapIO("stat", raw.sourcePath.String(), err)
	}

	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(raw.absolutePath)
		if err != nil {
			return nil, WrapIO("readlink", raw.sourcePath.String(), err)
		}
		return &SourceEntry{
			Kind:            KindSymlink,
			SourcePath:      raw.sourcePath,
			DestinationPath: destPath,
			LinkTarget:      target,
		}, nil
	case info.IsDir():
		_, attrs := DecodeName(raw.sourcePath.Base())
		return &SourceEntry{
			Kind:            KindDirectory,
			SourcePath:      raw.sourcePath,
			DestinationPath: destPath,
			Attributes:      attrs,
		}, nil
	default:
		_, attrs := DecodeName(raw.sourcePath.Base())
		return &SourceEntry{
			Kind:            KindFile,
			SourcePath:      raw.sourcePath,
			DestinationPath: destPath,
			Attributes:      attrs,
		}, nil
	}
}

// decodeDestinationPath decodes every path segment of a source-relative
// path independently and rejoins them, per spec.md §4.3 ("directory decoding
// applies per-segment").
func decodeDestinationPath(sourceRelative string) (DestinationRelativePath, error) {
	if sourceRelative == "" {
		return NewDestinationRelativePath("")
	}

	segments := strings.Split(sourceRelative, "/")
	decoded := make([]string, len(segments))
	for i, segment := range segments {
		name, _ := DecodeName(segment)
		decoded[i] = name
	}

	result, err := NewDestinationRelativePath(strings.Join(decoded, "/"))
	if err != nil {
		return DestinationRelativePath{}, errors.Wrapf(err, "invalid decoded path for %q", sourceRelative)
	}
	return result, nil
}
