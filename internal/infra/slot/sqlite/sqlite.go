package infra_slot_sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS slots (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)
`

type slotDB struct {
	Key       string `db:"key"`
	Value     string `db:"value"`
	UpdatedAt int64  `db:"updated_at"`
}

type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

// Open connects to the SQLite file at path with WAL and busy_timeout
// applied to every pooled connection, and ensures the slots table exists.
func Open(ctx context.Context, path string) (*Driver, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		path, (5 * time.Second).Milliseconds())

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: connect failed: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}
	return New(db), nil
}

func (d *Driver) Read(ctx context.Context, key string) (string, bool, error) {
	var row slotDB
	err := d.db.GetContext(ctx, &row, `SELECT key, value, updated_at FROM slots WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read slot: %w", err)
	}
	return row.Value, true, nil
}

func (d *Driver) Write(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO slots (key, value, updated_at)
		VALUES (:key, :value, :updated_at)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	row := slotDB{Key: key, Value: value, UpdatedAt: time.Now().UnixMilli()}
	if _, err := d.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to write slot: %w", err)
	}
	return nil
}

func (d *Driver) Close() error {
	return d.db.Close()
}
