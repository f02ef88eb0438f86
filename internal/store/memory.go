package store

import "sync"

// Memory is an in-memory store for testing and for sessions without a
// library file.
type Memory struct {
	mu    sync.RWMutex
	order []string
	data  map[string]Definition
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]Definition)}
}

func (m *Memory) Get(name string) (Definition, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.data[name]
	return d, ok, nil
}

func (m *Memory) Put(def Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[def.Name]; !ok {
		m.order = append(m.order, def.Name)
	}
	def.Params = append([]string(nil), def.Params...)
	m.data[def.Name] = def
	return nil
}

func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[name]; !ok {
		return nil
	}
	delete(m.data, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) List() ([]Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Definition, 0, len(m.order))
	for _, n := range m.order {
		out = append(out, m.data[n])
	}
	return out, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}
