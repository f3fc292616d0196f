package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImages_SortedNonHidden(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"b.png", "a.jpg", ".DS_Store", "c.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

	items, err := Images(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
		assert.Equal(t, filepath.Join(dir, item.Name), item.Path)
	}

	assert.Equal(t, []string{"a.jpg", "b.png", "c.png"}, names)
}

func TestImages_EmptyDir(t *testing.T) {
	items, err := Images(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestImages_MissingDir(t *testing.T) {
	_, err := Images(filepath.Join(t.TempDir(), "gone"))
	assert.Error(t, err)
}
