package infra_slot_memory

import (
	"context"
	"sync"
)

type Driver struct {
	mu    sync.RWMutex
	slots map[string]string
}

func New() *Driver {
	return &Driver{slots: make(map[string]string)}
}

func (d *Driver) Read(ctx context.Context, key string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	value, ok := d.slots[key]
	return value, ok, nil
}

func (d *Driver) Write(ctx context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.slots[key] = value
	return nil
}

func (d *Driver) Close() error { return nil }
