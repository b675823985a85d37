package ads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
	"github.com/shopspring/decimal"
)

// MemoryRepository is an in-memory Repository.
type MemoryRepository struct {
	mu    sync.Mutex
	store map[string]*models.Ad
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.Ad)}
}

func clone(a *models.Ad) *models.Ad {
	cp := *a
	return &cp
}

func sortByWeight(list []*models.Ad) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Weight != list[j].Weight {
			return list[i].Weight > list[j].Weight
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

func (m *MemoryRepository) Create(_ context.Context, a *models.Ad) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = models.NewID()
	}
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	m.store[a.ID] = clone(a)
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, id string) (*models.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(a), nil
}

func (m *MemoryRepository) List(_ context.Context, f Filter, p pagination.Params) ([]*models.Ad, int, error) {
	m.mu.Lock()
	all := []*models.Ad{}
	for _, a := range m.store {
		if f.Placement != "" && a.Placement != f.Placement {
			continue
		}
		if f.Edition != "" && a.Edition != f.Edition {
			continue
		}
		if f.Active != nil && a.Active != *f.Active {
			continue
		}
		all = append(all, clone(a))
	}
	m.mu.Unlock()
	sortByWeight(all)
	lo, hi := pagination.Window(p, len(all))
	return all[lo:hi], len(all), nil
}

func (m *MemoryRepository) Update(_ context.Context, a *models.Ad) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[a.ID]; !ok {
		return ErrNotFound
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

func (m *MemoryRepository) Candidates(_ context.Context, placement models.Placement, edition models.Edition, now time.Time) ([]*models.Ad, error) {
	m.mu.Lock()
	out := []*models.Ad{}
	for _, a := range m.store {
		if a.Placement == placement && a.Edition == edition && a.Active &&
			!now.Before(a.StartsAt) && now.Before(a.EndsAt) {
			out = append(out, clone(a))
		}
	}
	m.mu.Unlock()
	sortByWeight(out)
	return out, nil
}

func (m *MemoryRepository) RecordImpression(_ context.Context, id string, cost decimal.Decimal) (*models.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Spent = a.Spent.Add(cost)
	a.Impressions++
	if a.Budget.IsPositive() && a.Spent.GreaterThanOrEqual(a.Budget) {
		a.Active = false
	}
	a.UpdatedAt = time.Now().UTC()
	return clone(a), nil
}

func (m *MemoryRepository) RecordClick(_ context.Context, id string) (*models.Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.Clicks++
	return clone(a), nil
}
