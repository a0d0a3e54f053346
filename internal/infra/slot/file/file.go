package infra_slot_file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

var ErrInvalidKey = errors.New("invalid slot key")

// Driver keeps every slot in its own <dir>/<key>.json file.
type Driver struct {
	dir string
}

func New(dir string) *Driver {
	return &Driver{dir: dir}
}

func (d *Driver) Read(ctx context.Context, key string) (string, bool, error) {
	path, err := d.path(key)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read slot %s: %w", key, err)
	}
	return string(data), true, nil
}

// Write replaces the slot atomically: temp file, fsync, rename.
func (d *Driver) Write(ctx context.Context, key, value string) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.dir, 0o750); err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending slot file: %w", err)
	}
	defer pendingFile.Cleanup() //nolint:errcheck

	if _, err := pendingFile.WriteString(value); err != nil {
		return fmt.Errorf("write slot data: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace slot file: %w", err)
	}
	return nil
}

func (d *Driver) Close() error { return nil }

func (d *Driver) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(d.dir, key+".json"), nil
}
