package infra_slot_file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_ReadAbsent(t *testing.T) {
	d := New(t.TempDir())

	value, found, err := d.Read(context.Background(), "watchlist")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestDriver_WriteThenRead(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	d := New(dir)
	ctx := context.Background()

	require.NoError(t, d.Write(ctx, "watchlist", `[{"title":"Inception"}]`))
	require.NoError(t, d.Write(ctx, "watchlist", `[]`))

	value, found, err := d.Read(ctx, "watchlist")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, value)

	info, err := os.Stat(filepath.Join(dir, "watchlist.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestDriver_RejectsPathKeys(t *testing.T) {
	d := New(t.TempDir())

	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		err := d.Write(context.Background(), key, "x")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}
