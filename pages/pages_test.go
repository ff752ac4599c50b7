package pages

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		id := NewID()

		require.Len(t, id, IDLength)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %q after %d calls", id, i)
		seen[id] = struct{}{}
	}
}

func TestNewIDFilesystemSafe(t *testing.T) {
	id := NewID()

	assert.Empty(t, strings.Trim(id, "0123456789abcdef"),
		"id %q has characters outside lowercase hex", id)
}

func TestWriteCounts(t *testing.T) {
	tests := []struct {
		name        string
		n           int
		concurrency int
	}{
		{name: "zero", n: 0, concurrency: 30},
		{name: "single", n: 1, concurrency: 30},
		{name: "sequential", n: 25, concurrency: 1},
		{name: "bounded", n: 100, concurrency: 4},
		{name: "default", n: 250, concurrency: DefaultConcurrency},
		{name: "limit above count", n: 3, concurrency: 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()

			w := NewWriter(tt.concurrency)
			require.NoError(t, w.Write(context.Background(), dir, tt.n))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, tt.n)

			names := make(map[string]struct{}, len(entries))
			for _, e := range entries {
				assert.Equal(t, DefaultExt, filepath.Ext(e.Name()))
				names[e.Name()] = struct{}{}
			}
			assert.Len(t, names, tt.n)
		})
	}
}

func TestWriteContent(t *testing.T) {
	dir := t.TempDir()

	w := &Writer{Concurrency: 2, Template: "stub", Ext: ".jsx"}
	require.NoError(t, w.Write(context.Background(), dir, 3))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for _, e := range entries {
		assert.Equal(t, ".jsx", filepath.Ext(e.Name()))

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		assert.Equal(t, "stub", string(data))
	}
}

func TestWriteNegativeCount(t *testing.T) {
	err := NewWriter(1).Write(context.Background(), t.TempDir(), -1)
	assert.Error(t, err)
}

func TestWriteMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")

	err := NewWriter(5).Write(context.Background(), dir, 10)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWriter(5).Write(ctx, t.TempDir(), 10)
	assert.ErrorIs(t, err, context.Canceled)
}
