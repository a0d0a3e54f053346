package infra_slot_init

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/humanbelnik/cinematheque/internal/config"
	infra_slot_badger "github.com/humanbelnik/cinematheque/internal/infra/slot/badger"
	infra_slot_file "github.com/humanbelnik/cinematheque/internal/infra/slot/file"
	infra_slot_memory "github.com/humanbelnik/cinematheque/internal/infra/slot/memory"
	infra_slot_sqlite "github.com/humanbelnik/cinematheque/internal/infra/slot/sqlite"
)

// Slot is a named string slot that lives on the user's device.
type Slot interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Close() error
}

func Open(ctx context.Context, cfg config.Storage) (Slot, error) {
	switch cfg.Backend {
	case "file":
		return infra_slot_file.New(cfg.Dir), nil
	case "sqlite":
		if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
		d, err := infra_slot_sqlite.Open(ctx, filepath.Join(cfg.Dir, "watchlist.db"))
		if err != nil {
			return nil, err
		}
		return d, nil
	case "badger":
		d, err := infra_slot_badger.Open(filepath.Join(cfg.Dir, "badger"))
		if err != nil {
			return nil, err
		}
		return d, nil
	case "memory":
		return infra_slot_memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: file, sqlite, badger, memory)", cfg.Backend)
	}
}
