package newsletter

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.Subscriber
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.Subscriber)}
}

func clone(s *models.Subscriber) *models.Subscriber {
	cp := *s
	cp.Topics = append([]string(nil), s.Topics...)
	return &cp
}

func (m *MemoryRepository) Create(_ context.Context, s *models.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.store {
		if existing.Email == s.Email || existing.Token == s.Token {
			return ErrDuplicate
		}
	}
	if s.ID == "" {
		s.ID = models.NewID()
	}
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	m.store[s.ID] = clone(s)
	return nil
}

func (m *MemoryRepository) find(match func(*models.Subscriber) bool) (*models.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.store {
		if match(s) {
			return clone(s), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.Subscriber, error) {
	return m.find(func(s *models.Subscriber) bool { return s.Email == email })
}

func (m *MemoryRepository) GetByToken(_ context.Context, token string) (*models.Subscriber, error) {
	return m.find(func(s *models.Subscriber) bool { return s.Token == token })
}

func (m *MemoryRepository) Update(_ context.Context, s *models.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[s.ID]; !ok {
		return ErrNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	m.store[s.ID] = clone(s)
	return nil
}

func (m *MemoryRepository) matching(f Filter) []*models.Subscriber {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.Subscriber{}
	for _, s := range m.store {
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.Edition != "" && s.Edition != f.Edition {
			continue
		}
		out = append(out, clone(s))
	}
	return out
}

func (m *MemoryRepository) List(_ context.Context, f Filter, p pagination.Params) ([]*models.Subscriber, int, error) {
	all := m.matching(f)
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	lo, hi := pagination.Window(p, len(all))
	return all[lo:hi], len(all), nil
}

func (m *MemoryRepository) Count(_ context.Context, f Filter) (int, error) {
	return len(m.matching(f)), nil
}
