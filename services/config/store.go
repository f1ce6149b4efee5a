package config

import (
	"context"
	"sync"
)

// Store persists the device configuration.
type Store interface {
	Load(ctx context.Context) (Device, error)
	// Save increments d.Version and writes it.
	Save(ctx context.Context, d *Device) error
	// Reset writes the profile defaults and returns them.
	Reset(ctx context.Context) (Device, error)
}

// MemStore keeps the configuration in memory.
type MemStore struct {
	mu       sync.Mutex
	defaults Device
	saved    *Device
}

func NewMemStore(defaults Device) *MemStore {
	return &MemStore{defaults: defaults.Clone()}
}

func (m *MemStore) Load(context.Context) (Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return m.defaults.Clone(), nil
	}
	d := m.saved.Clone()
	d.Clamp()
	return d, nil
}

func (m *MemStore) Save(_ context.Context, d *Device) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.Version++
	c := d.Clone()
	m.saved = &c
	return nil
}

func (m *MemStore) Reset(ctx context.Context) (Device, error) {
	m.mu.Lock()
	d := m.defaults.Clone()
	if m.saved != nil {
		d.Version = m.saved.Version + 1
	}
	m.mu.Unlock()
	if err := m.Save(ctx, &d); err != nil {
		return Device{}, err
	}
	return d, nil
}
