package store

import (
	"context"
	"sync"

	"github.com/wattline/wattline/backend-go/internal/document"
)

// Memory keeps the latest payload of each symbol in process memory. It is
// used for tests and for running the server without a database.
type Memory struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	order []string
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Load(_ context.Context, key string) (Record, error) {
	m.mu.RLock()
	data, ok := m.docs[key]
	m.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}
	return decode(data)
}

func (m *Memory) Save(_ context.Context, key string, doc document.Document) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[key]; !ok {
		m.order = append(m.order, key)
	}
	m.docs[key] = data
	return nil
}

// SaveRaw stores a payload verbatim. It lets callers seed legacy documents.
func (m *Memory) SaveRaw(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[key]; !ok {
		m.order = append(m.order, key)
	}
	m.docs[key] = append([]byte(nil), data...)
}

func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...), nil
}

func (m *Memory) Close() error { return nil }
