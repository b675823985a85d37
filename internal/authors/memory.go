package authors

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

// MemoryRepository is an in-memory Repository used by tests and when MongoDB
// is unavailable.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.Author
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.Author)}
}

func clone(a *models.Author) *models.Author {
	cp := *a
	return &cp
}

func (m *MemoryRepository) Create(_ context.Context, a *models.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.Email == a.Email {
			return ErrDuplicate
		}
	}
	if a.ID == "" {
		a.ID = models.NewID()
	}
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	m.store[a.ID] = clone(a)
	return nil
}

func (m *MemoryRepository) find(match func(*models.Author) bool) (*models.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.store {
		if match(a) {
			return clone(a), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) Get(_ context.Context, id string) (*models.Author, error) {
	return m.find(func(a *models.Author) bool { return a.ID == id })
}

func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.Author, error) {
	return m.find(func(a *models.Author) bool { return a.Email == email })
}

func (m *MemoryRepository) GetByProvider(_ context.Context, provider, sub string) (*models.Author, error) {
	return m.find(func(a *models.Author) bool { return a.Provider == provider && a.ProviderSub == sub })
}

func (m *MemoryRepository) GetMany(_ context.Context, ids []string) (map[string]*models.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*models.Author, len(ids))
	for _, id := range ids {
		if a, ok := m.store[id]; ok {
			out[id] = clone(a)
		}
	}
	return out, nil
}

func (m *MemoryRepository) List(_ context.Context, f Filter, p pagination.Params) ([]*models.Author, int, error) {
	m.mu.RLock()
	all := make([]*models.Author, 0, len(m.store))
	for _, a := range m.store {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		all = append(all, clone(a))
	}
	m.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	start, end := pagination.Window(p, len(all))
	return all[start:end], len(all), nil
}

func (m *MemoryRepository) Update(_ context.Context, a *models.Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[a.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range m.store {
		if id != a.ID && existing.Email == a.Email {
			return ErrDuplicate
		}
	}
	a.UpdatedAt = time.Now().UTC()
	m.store[a.ID] = clone(a)
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
