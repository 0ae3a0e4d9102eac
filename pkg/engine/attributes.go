package engine

import "strings"

// Attribute is a single decoded property of a source entry.
type Attribute uint

const (
	// DOT marks an entry whose destination name should gain a leading dot.
	DOT Attribute = 1 << iota
	// PRIVATE marks an entry that should be written with owner-only
	// permissions.
	PRIVATE
	// READONLY marks an entry that should be written without write
	// permissions.
	READONLY
	// EXECUTABLE marks a file that should be written with the execute bit
	// set.
	EXECUTABLE
	// TEMPLATE marks a file whose decrypted/raw bytes must be interpreted as
	// template source and rendered.
	TEMPLATE
	// ENCRYPTED marks a file whose on-disk bytes are ciphertext that must be
	// decrypted before any further processing.
	ENCRYPTED
)

// AttributeSet is an immutable set of Attribute flags.
type AttributeSet Attribute

// Has reports whether the set contains attr.
func (s AttributeSet) Has(attr Attribute) bool { return Attribute(s)&attr != 0 }

// String renders the set for diagnostics, in a fixed canonical order.
func (s AttributeSet) String() string {
	var names []string
	for _, pair := range []struct {
		attr Attribute
		name string
	}{
		{DOT, "DOT"},
		{PRIVATE, "PRIVATE"},
		{READONLY, "READONLY"},
		{EXECUTABLE, "EXECUTABLE"},
		{TEMPLATE, "TEMPLATE"},
		{ENCRYPTED, "ENCRYPTED"},
	} {
		if s.Has(pair.attr) {
			names = append(names, pair.name)
		}
	}
	if len(names) == 0 {
		return "{}"
	}
	return "{" + strings.Join(names, ",") + "}"
}

// markerPrefixes maps the recognized leading-marker vocabulary (frozen in
// SPEC_FULL.md §1) to the attribute each sets. Longest-match ordering isn't
// needed since the prefixes are disjoint by construction (none is a prefix
// of another). DecodeName peels markers in the order they appear in the
// name, not in slice order, so e.g. "private_dot_bashrc" and
// "dot_private_bashrc" both decode to ".bashrc".
var markerPrefixes = []struct {
	prefix string
	attr   Attribute
}{
	{"dot_", DOT},
	{"private_", PRIVATE},
	{"readonly_", READONLY},
	{"executable_", EXECUTABLE},
}

// DecodeName maps a single path-segment filename to its decoded form and
// attribute set, per spec.md §4.1. It never fails: a name matching no
// pattern decodes to itself with an empty attribute set.
func DecodeName(name string) (string, AttributeSet) {
	var attrs Attribute

	// Strip recognized suffixes right-to-left, independently of each other
	// and of disk order: ".age" sets ENCRYPTED, ".j2" sets TEMPLATE. Both
	// may be present in either disk order; "name.j2.age" is the canonical
	// form ("the ciphertext, when decrypted, yields a template").
	for {
		switch {
		case strings.HasSuffix(name, ".age"):
			attrs |= ENCRYPTED
			name = strings.TrimSuffix(name, ".age")
		case strings.HasSuffix(name, ".j2"):
			attrs |= TEMPLATE
			name = strings.TrimSuffix(name, ".j2")
		default:
			goto suffixesDone
		}
	}
suffixesDone:

	// Peel recognized leading markers off the stem, each at most once, in
	// whatever order they actually appear — markers may be combined in any
	// order (spec.md §4.1), so a single ordered pass over markerPrefixes
	// would miss a marker whose turn already passed before an earlier
	// prefix was stripped. Loop until a full pass strips nothing.
	// Unrecognized "word_" prefixes are left untouched in the decoded name,
	// per spec.md §4.1's "no silent loss" requirement.
	for {
		stripped := false
		for _, marker := range markerPrefixes {
			if attrs&marker.attr == 0 && strings.HasPrefix(name, marker.prefix) {
				attrs |= marker.attr
				name = strings.TrimPrefix(name, marker.prefix)
				stripped = true
			}
		}
		if !stripped {
			break
		}
	}

	if attrs&DOT != 0 {
		name = "." + name
	}

	return name, AttributeSet(attrs)
}

// ModeForFile derives the Unix file mode that a File target entry with the
// given attribute set should carry, per the table in spec.md §3.
func ModeForFile(attrs AttributeSet) uint32 {
	private := attrs.Has(PRIVATE)
	readonly := attrs.Has(READONLY)
	executable := attrs.Has(EXECUTABLE)

	switch {
	case private && executable:
		return 0700
	case private:
		return 0600
	case readonly:
		return 0444
	case executable:
		return 0755
	default:
		return 0644
	}
}

// ModeForDirectory derives the Unix directory mode for the given attribute
// set, per the table in spec.md §3. EXECUTABLE has no independent meaning
// for directories (they're already traversable), so PRIVATE+EXECUTABLE
// collapses to the same 0700 as PRIVATE alone.
func ModeForDirectory(attrs AttributeSet) uint32 {
	private := attrs.Has(PRIVATE)
	readonly := attrs.Has(READONLY)

	switch {
	case private:
		return 0700
	case readonly:
		return 0555
	default:
		return 0755
	}
}
