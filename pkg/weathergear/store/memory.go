package store

import (
	"sort"
	"sync"

	"github.com/randalmurphal/weathergear/pkg/weathergear/rules"
)

// MemoryStore is an in-memory rule store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	sets   map[string]map[string]storedRule // set -> rule name -> rule
	seq    int
	closed bool
}

// storedRule holds a condition with its insertion sequence for List().
type storedRule struct {
	when     string
	sequence int
}

// NewMemoryStore creates a new in-memory rule store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sets: make(map[string]map[string]storedRule),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(set string, def rules.Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.sets[set] == nil {
		m.sets[set] = make(map[string]storedRule)
	}

	stored, ok := m.sets[set][def.Name]
	if !ok {
		m.seq++
		stored.sequence = m.seq
	}
	stored.when = def.When
	m.sets[set][def.Name] = stored
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(set, name string) (rules.Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return rules.Definition{}, ErrStoreClosed
	}

	stored, ok := m.sets[set][name]
	if !ok {
		return rules.Definition{}, ErrNotFound
	}
	return rules.Definition{Name: name, When: stored.when}, nil
}

// List implements Store.
func (m *MemoryStore) List(set string) ([]rules.Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	type entry struct {
		def rules.Definition
		seq int
	}
	entries := make([]entry, 0, len(m.sets[set]))
	for name, stored := range m.sets[set] {
		entries = append(entries, entry{
			def: rules.Definition{Name: name, When: stored.when},
			seq: stored.sequence,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	defs := make([]rules.Definition, len(entries))
	for i, e := range entries {
		defs[i] = e.def
	}
	return defs, nil
}

// Sets implements Store.
func (m *MemoryStore) Sets() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	names := make([]string, 0, len(m.sets))
	for name, set := range m.sets {
		if len(set) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(set, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if rs, ok := m.sets[set]; ok {
		delete(rs, name)
	}
	return nil
}

// DeleteSet implements Store.
func (m *MemoryStore) DeleteSet(set string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.sets, set)
	return nil
}

// ReplaceSet implements Store.
func (m *MemoryStore) ReplaceSet(set string, defs []rules.Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	replacement := make(map[string]storedRule, len(defs))
	for _, def := range defs {
		stored, ok := replacement[def.Name]
		if !ok {
			m.seq++
			stored.sequence = m.seq
		}
		stored.when = def.When
		replacement[def.Name] = stored
	}

	if len(replacement) == 0 {
		delete(m.sets, set)
		return nil
	}
	m.sets[set] = replacement
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.sets = nil
	return nil
}

// Len returns the total number of rules across all sets.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, set := range m.sets {
		count += len(set)
	}
	return count
}
