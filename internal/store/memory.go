package store

import (
	"context"
	"sync"

	"github.com/JonMunkholm/DataForge/internal/core"
)

// MemoryStore keeps templates in process memory. Templates are lost on
// restart; List returns them in insertion order.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string]core.Template
	order     []string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{templates: make(map[string]core.Template)}
}

func (m *MemoryStore) Create(_ context.Context, t core.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.templates[t.ID]; !exists {
		m.order = append(m.order, t.ID)
	}
	m.templates[t.ID] = cloneTemplate(t)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]core.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Template, 0, len(m.templates))
	for _, id := range m.order {
		out = append(out, cloneTemplate(m.templates[id]))
	}
	return out, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (core.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.templates[id]
	if !ok {
		return core.Template{}, core.ErrTemplateNotFound
	}
	return cloneTemplate(t), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[id]; !ok {
		return core.ErrTemplateNotFound
	}
	delete(m.templates, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

// cloneTemplate copies the field slice so callers cannot mutate stored state.
func cloneTemplate(t core.Template) core.Template {
	fields := make([]core.Field, len(t.Fields))
	copy(fields, t.Fields)
	t.Fields = fields
	return t
}
