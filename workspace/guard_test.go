package workspace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T) *Guard {
	t.Helper()
	g, err := New(t.TempDir())
	require.NoError(t, err)
	return g
}

func TestResolve_RelativeInsideRoot(t *testing.T) {
	g := newGuard(t)

	got, err := g.Resolve("src/main.go")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(g.Root(), "src", "main.go"), got)
}

func TestResolve_RootItself(t *testing.T) {
	g := newGuard(t)

	got, err := g.Resolve(".")
	require.NoError(t, err)
	assert.Equal(t, g.Root(), got)
}

func TestResolve_InnerTraversalStaysInside(t *testing.T) {
	g := newGuard(t)

	got, err := g.Resolve("a/b/../c.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(g.Root(), "a", "c.txt"), got)
}

func TestResolve_Escapes(t *testing.T) {
	g := newGuard(t)

	cases := []string{
		"..",
		"../secret",
		"a/../../secret",
		"/etc/passwd",
		filepath.Dir(g.Root()),
	}
	for _, p := range cases {
		t.Run(p, func(t *testing.T) {
			_, err := g.Resolve(p)
			assert.ErrorIs(t, err, ErrPathEscape)
		})
	}
}

func TestResolve_AbsoluteInsideRoot(t *testing.T) {
	g := newGuard(t)

	want := filepath.Join(g.Root(), "notes.txt")
	got, err := g.Resolve(want)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolve_DotDotPrefixedNameIsNotTraversal(t *testing.T) {
	g := newGuard(t)

	got, err := g.Resolve("..hidden")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(g.Root(), "..hidden"), got)
}

func TestResolve_EmptyPath(t *testing.T) {
	g := newGuard(t)

	_, err := g.Resolve("  ")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestResolve_ErrorMentionsInput(t *testing.T) {
	g := newGuard(t)

	_, err := g.Resolve("../x")
	require.Error(t, err)
	assert.Equal(t, "path escapes workspace: ../x", err.Error())
}

func TestNew_EmptyRoot(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
