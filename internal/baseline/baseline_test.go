package baseline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstablish_CreatesSentinels(t *testing.T) {
	dir := t.TempDir()
	m := NewMarkers(dir)

	require.NoError(t, m.Establish(context.Background(), 5))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	assert.Equal(t, "spacer_0001.tmp", entries[0].Name())
	assert.Equal(t, "spacer_0005.tmp", entries[4].Name())
}

func TestEstablish_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	m := NewMarkers(dir)

	require.NoError(t, m.Establish(context.Background(), 1))

	_, err := os.Stat(filepath.Join(dir, "spacer_0001.tmp"))
	assert.NoError(t, err)
}

func TestLatestTime_MaxSentinelMtime(t *testing.T) {
	dir := t.TempDir()
	m := NewMarkers(dir)

	require.NoError(t, m.Establish(context.Background(), 3))

	newest := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "spacer_0002.tmp"), newest, newest))

	// Unrelated files must not move the baseline.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "movie.mkv"), []byte("x"), 0644))
	future := newest.Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "movie.mkv"), future, future))

	got, err := m.LatestTime()
	require.NoError(t, err)
	assert.True(t, got.Equal(newest), "got %v, want %v", got, newest)
}

func TestLatestTime_NoSentinels(t *testing.T) {
	m := NewMarkers(t.TempDir())

	got, err := m.LatestTime()
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestTeardown_Idempotent(t *testing.T) {
	dir := t.TempDir()
	m := NewMarkers(dir)

	require.NoError(t, m.Establish(context.Background(), 4))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.png"), []byte("x"), 0644))

	m.Teardown(context.Background())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.png", entries[0].Name())

	// Second call finds nothing to remove and stays quiet.
	m.Teardown(context.Background())

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestIsSentinel(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "spacer_0001.tmp", want: true},
		{name: "spacer_9999.tmp", want: true},
		{name: "spacer_.tmp", want: true},
		{name: "spacer_0001.png", want: false},
		{name: "photo.tmp", want: false},
		{name: "result.png", want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSentinel(tt.name), tt.name)
	}
}
