package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory Adapter. It doubles as the ObjectClient test double
// for storage-backed batches.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory returns an empty in-memory Adapter.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Read(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[name]
	if !ok {
		return nil, fmt.Errorf("no such blob: %s", name)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *Memory) Write(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[name] = stored
	return nil
}

// ListObjects, GetObject and PutObject let Memory stand in for an external
// object-storage client in tests.
func (m *Memory) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	return m.List(ctx, prefix)
}

func (m *Memory) GetObject(ctx context.Context, key string) ([]byte, error) {
	return m.Read(ctx, key)
}

func (m *Memory) PutObject(ctx context.Context, key string, data []byte) error {
	return m.Write(ctx, key, data)
}
