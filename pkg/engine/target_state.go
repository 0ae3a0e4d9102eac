package engine

import (
	"os"

	"github.com/guisu-dotfiles/guisu/pkg/parallelism"
)

// TargetState is the intended on-disk bytes and modes after transformation:
// what the destination should equal, keyed by destination-relative path.
type TargetState struct {
	Entries map[string]*TargetEntry
}

// BuildTargetState implements the Target State builder (spec.md §4.4): for
// each source entry, in parallel, it produces the corresponding target
// entry. Errors from individual entries are collected rather than
// short-circuiting, so that a single bad file doesn't hide every other
// failure in the same pass (spec.md §4.4, §7).
func BuildTargetState(source *SourceState, processor *Processor, config *Configuration) (*TargetState, error) {
	keys := make([]string, 0, len(source.Entries))
	for key := range source.Entries {
		keys = append(keys, key)
	}

	results := make([]*TargetEntry, len(keys))
	errs := make([]error, len(keys))

	workers := parallelism.NewSIMDWorkerArray(0)
	defer workers.Terminate()

	if err := workers.Do(simdFunc(func(index, size int) error {
		for i := index; i < len(keys); i += size {
			entry := source.Entries[keys[i]]
			target, terr := buildTargetEntry(entry, processor, config)
			if terr != nil {
				errs[i] = terr
				continue
			}
			results[i] = target
		}
		return nil
	})); err != nil {
		return nil, err
	}

	if agg := NewAggregateError(errs); agg != nil {
		return nil, agg
	}

	entries := make(map[string]*TargetEntry, len(results))
	for _, entry := range results {
		entries[entry.Path.String()] = entry
	}

	return &TargetState{Entries: entries}, nil
}

// buildTargetEntry transforms a single source entry into its target
// counterpart, per spec.md §4.4.
func buildTargetEntry(source *SourceEntry, processor *Processor, config *Configuration) (*TargetEntry, error) {
	switch source.Kind {
	case KindFile:
		absPath := source.SourcePath.Resolve(config.SourceRoot)
		raw, err := os.ReadFile(absPath.String())
		if err != nil {
			return nil, WrapIO("read", source.SourcePath.String(), err)
		}

		context := config.Context
		if context == nil {
			context = Context{}
		}
		context = context.Clone()
		context["path"] = source.DestinationPath.String()

		content, err := processor.Process(raw, source.Attributes, context, config.Identities)
		if err != nil {
			return nil, err
		}

		mode := ModeForFile(source.Attributes)
		return &TargetEntry{
			Kind:    KindFile,
			Path:    source.DestinationPath,
			Content: content,
			Mode:    &mode,
		}, nil
	case KindDirectory:
		mode := ModeForDirectory(source.Attributes)
		return &TargetEntry{
			Kind: KindDirectory,
			Path: source.DestinationPath,
			Mode: &mode,
		}, nil
	case KindSymlink:
		return &TargetEntry{
			Kind:       KindSymlink,
			Path:       source.DestinationPath,
			LinkTarget: source.LinkTarget,
		}, nil
	default:
		return nil, &UnsupportedFileType{Path: source.SourcePath.String()}
	}
}
