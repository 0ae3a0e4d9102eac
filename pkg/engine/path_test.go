package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAbsolutePathRequiresRoot(t *testing.T) {
	_, err := NewAbsolutePath("relative/path")
	require.Error(t, err)
	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
}

func TestAbsolutePathJoinAndStrip(t *testing.T) {
	root, err := NewAbsolutePath("/home/user")
	require.NoError(t, err)

	joined := root.Join("dotfiles/bashrc")
	stripped, err := joined.Strip(root)
	require.NoError(t, err)
	require.Equal(t, "dotfiles/bashrc", stripped)
}

func TestAbsolutePathStripRejectsUnrelatedPrefix(t *testing.T) {
	a, _ := NewAbsolutePath("/home/user")
	b, _ := NewAbsolutePath("/etc")

	_, err := a.Join("x").Strip(b)
	require.Error(t, err)
}

func TestDestinationRelativePathRejectsAbsolute(t *testing.T) {
	_, err := NewDestinationRelativePath("/etc/passwd")
	require.Error(t, err)
}

func TestDestinationRelativePathRejectsUpwardTraversal(t *testing.T) {
	_, err := NewDestinationRelativePath("../escape")
	require.Error(t, err)
}

func TestDestinationRelativePathOrderingParentBeforeChild(t *testing.T) {
	parent, _ := NewDestinationRelativePath("a")
	child, _ := NewDestinationRelativePath("a/b")
	require.True(t, parent.Less(child))
	require.False(t, child.Less(parent))
}

func TestDestinationRelativePathOrderingLexicographic(t *testing.T) {
	a, _ := NewDestinationRelativePath("a/x")
	b, _ := NewDestinationRelativePath("a/y")
	require.True(t, a.Less(b))
}

func TestDestinationRelativePathJoinAndDir(t *testing.T) {
	p, _ := NewDestinationRelativePath("a/b")
	child := p.Join("c")
	require.Equal(t, "a/b/c", child.String())
	require.Equal(t, "a/b", child.Dir().String())
	require.Equal(t, "c", child.Base())
}

func TestSourceAndDestinationPathsAreDistinctTypes(t *testing.T) {
	// This test documents (rather than exercises at compile time, since Go
	// would simply refuse to compile a mismatched call) that the two
	// relative path types carry the same normalized representation but are
	// not interchangeable: a function accepting a DestinationRelativePath
	// cannot be passed a SourceRelativePath without an explicit conversion,
	// which this package deliberately does not provide.
	dst, _ := NewDestinationRelativePath("bashrc")
	src, _ := NewSourceRelativePath("bashrc")
	require.Equal(t, dst.String(), src.String())
}
