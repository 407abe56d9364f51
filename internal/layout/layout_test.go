package layout

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirectory_CreatesNested(t *testing.T) {
	path := filepath.Join(t.TempDir(), "root", "orgA")

	require.NoError(t, EnsureDirectory(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDirectory_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgA")

	for i := 0; i < 5; i++ {
		require.NoError(t, EnsureDirectory(path), "call %d", i+1)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "orgA", entries[0].Name())
}

func TestEnsureDirectory_KeepsExistingContent(t *testing.T) {
	path := t.TempDir()
	marker := filepath.Join(path, "keep.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	require.NoError(t, EnsureDirectory(path))

	_, err := os.Stat(marker)
	require.NoError(t, err)
}

func TestEnsureDirectory_FileCollision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgA")
	require.NoError(t, os.WriteFile(path, []byte("not a dir"), 0o644))

	err := EnsureDirectory(path)
	require.Error(t, err)

	var notDir *NotDirectoryError
	require.True(t, errors.As(err, &notDir))
	assert.Equal(t, path, notDir.Path)
}

func TestEnsureDirectory_ParentIsFile(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o644))

	require.Error(t, EnsureDirectory(filepath.Join(parent, "orgA")))
}

func TestEnsureDirectory_EmptyPath(t *testing.T) {
	require.Error(t, EnsureDirectory(""))
}

func TestEnsureDirectory_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "root", "orgA")

	var wg sync.WaitGroup

	errs := make(chan error, 16)

	for i := 0; i < 16; i++ {
		wg.Go(func() {
			errs <- EnsureDirectory(path)
		})
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestOrganizationFolder(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "orgA"), OrganizationFolder("out", "orgA"))
}

func TestWithin(t *testing.T) {
	root := filepath.Join("out", "root")

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "organization folder", path: filepath.Join(root, "orgA"), want: true},
		{name: "root itself", path: root, want: true},
		{name: "dot dot prefixed name", path: filepath.Join(root, "..orgA"), want: true},
		{name: "parent", path: filepath.Join(root, ".."), want: false},
		{name: "sibling", path: filepath.Join(root, "..", "..", "evil"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Within(root, tt.path))
		})
	}
}
