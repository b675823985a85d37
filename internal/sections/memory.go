package sections

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
)

// MemoryRepository is an in-memory Repository used by tests and when MongoDB
// is unavailable.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.Section
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.Section)}
}

func clone(s *models.Section) *models.Section {
	cp := *s
	cp.PostIDs = append([]string{}, s.PostIDs...)
	return &cp
}

func (m *MemoryRepository) Create(_ context.Context, s *models.Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = models.NewID()
	}
	if s.PostIDs == nil {
		s.PostIDs = []string{}
	}
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	m.store[s.ID] = clone(s)
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, id string) (*models.Section, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *MemoryRepository) List(_ context.Context, f Filter) ([]*models.Section, error) {
	m.mu.RLock()
	out := []*models.Section{}
	for _, s := range m.store {
		if f.Edition != "" && s.Edition != f.Edition {
			continue
		}
		if f.PageID != "" && s.PageID != f.PageID {
			continue
		}
		if f.PageID == "" && f.Unassigned && s.PageID != "" {
			continue
		}
		out = append(out, clone(s))
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MemoryRepository) Update(_ context.Context, s *models.Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[s.ID]; !ok {
		return ErrNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	m.store[s.ID] = clone(s)
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRepository) mutate(id string, fn func(s *models.Section)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	fn(s)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func (m *MemoryRepository) AppendPost(_ context.Context, sectionID, postID string) error {
	return m.mutate(sectionID, func(s *models.Section) {
		if s.IndexOf(postID) < 0 {
			s.PostIDs = append(s.PostIDs, postID)
		}
	})
}

func (m *MemoryRepository) PullPost(_ context.Context, sectionID, postID string) error {
	return m.mutate(sectionID, func(s *models.Section) { s.PostIDs = without(s.PostIDs, postID) })
}

func (m *MemoryRepository) PullPostEverywhere(_ context.Context, postID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.store {
		if s.IndexOf(postID) >= 0 {
			s.PostIDs = without(s.PostIDs, postID)
			s.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

func (m *MemoryRepository) SetPositions(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range ids {
		if s, ok := m.store[id]; ok {
			s.Position = i
		}
	}
	return nil
}

func (m *MemoryRepository) DetachPage(_ context.Context, pageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.store {
		if s.PageID == pageID {
			s.PageID = ""
		}
	}
	return nil
}
