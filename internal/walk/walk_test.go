package walk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect_SkipsUnknownExtensionsAndVendor(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# hi"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "dep.go"), []byte("package dep"), 0o644))

	files, err := Collect(root, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].Path)
}

func TestCollect_AppliesIgnoreFunc(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.go"), []byte("package main"), 0o644))

	files, err := Collect(root, func(p string) bool { return p == "skip.go" })
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "keep.go", files[0].Path)
}

func TestMatchGlob(t *testing.T) {
	assert.True(t, MatchGlob("**/*_test.go", "internal/walk/walk_test.go"))
	assert.False(t, MatchGlob("**/*_test.go", "internal/walk/walk.go"))
}
