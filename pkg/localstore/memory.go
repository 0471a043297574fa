package localstore

import (
	"context"
	"sync"
)

// Memory keeps entries in process memory. Entries vanish on restart.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]map[string]string)}
}

func (m *Memory) Get(_ context.Context, namespace, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[namespace][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.entries[namespace]
	if !ok {
		ns = make(map[string]string)
		m.entries[namespace] = ns
	}
	ns[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries[namespace], key)
	if len(m.entries[namespace]) == 0 {
		delete(m.entries, namespace)
	}
	return nil
}

func (m *Memory) Ping(context.Context) error {
	return nil
}
