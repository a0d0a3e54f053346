package infra_slot_init

import (
	"context"
	"testing"

	"github.com/humanbelnik/cinematheque/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_EveryBackendRoundTrips(t *testing.T) {
	for _, backend := range []string{"file", "sqlite", "badger", "memory"} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			slot, err := Open(ctx, config.Storage{Backend: backend, Dir: t.TempDir(), Key: "k"})
			require.NoError(t, err)
			defer slot.Close()

			require.NoError(t, slot.Write(ctx, "k", `["x"]`))
			value, found, err := slot.Read(ctx, "k")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, `["x"]`, value)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.Storage{Backend: "postgres"})
	assert.ErrorContains(t, err, "unknown storage backend")
}
