package deck

import (
	"fmt"
	"sort"
	"sync"

	"github.com/conorfennell/quizdeck/internal/domain"
)

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu     sync.RWMutex
	decks  map[string][]Entry
	writes int
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{decks: map[string][]Entry{}}
}

// List returns refs ordered by id.
func (m *MemoryRepository) List() ([]Ref, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.decks))
	for id := range m.decks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	refs := make([]Ref, 0, len(ids))
	for _, id := range ids {
		ref, err := ParseID(id)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (m *MemoryRepository) Read(id string) ([]domain.Card, error) {
	entries, err := m.ReadEntries(id)
	if err != nil {
		return nil, err
	}
	return Cards(entries), nil
}

func (m *MemoryRepository) ReadEntries(id string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries, ok := m.decks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return append([]Entry{}, entries...), nil
}

func (m *MemoryRepository) Write(id string, cards []domain.Card) error {
	entries := make([]Entry, 0, len(cards))
	for _, c := range cards {
		e, err := NewEntry(c)
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}
	return m.WriteEntries(id, entries)
}

func (m *MemoryRepository) WriteEntries(id string, entries []Entry) error {
	if _, err := ParseID(id); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.decks[id] = append([]Entry{}, entries...)
	m.writes++
	return nil
}

// Writes reports how many times a deck was written.
func (m *MemoryRepository) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
