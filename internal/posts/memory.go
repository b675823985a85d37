package posts

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

// MemoryRepository is an in-memory Repository used by tests and when MongoDB
// is unavailable.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.Post
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.Post)}
}

func clone(p *models.Post) *models.Post {
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		cp.PublishedAt = &t
	}
	return &cp
}

func (m *MemoryRepository) slugTakenLocked(edition models.Edition, slug, excludeID string) bool {
	for id, p := range m.store {
		if id != excludeID && p.Edition == edition && p.Slug == slug {
			return true
		}
	}
	return false
}

func (m *MemoryRepository) Create(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTakenLocked(p.Edition, p.Slug, "") {
		return ErrDuplicate
	}
	if p.ID == "" {
		p.ID = models.NewID()
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	m.store[p.ID] = clone(p)
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, id string) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(p), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, edition models.Edition, slug string) (*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.Edition == edition && p.Slug == slug {
			return clone(p), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) SlugTaken(_ context.Context, edition models.Edition, slug, excludeID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.slugTakenLocked(edition, slug, excludeID), nil
}

func (m *MemoryRepository) GetMany(_ context.Context, ids []string) (map[string]*models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*models.Post, len(ids))
	for _, id := range ids {
		if p, ok := m.store[id]; ok {
			out[id] = clone(p)
		}
	}
	return out, nil
}

func matches(p *models.Post, f Filter) bool {
	switch {
	case f.Edition != "" && p.Edition != f.Edition:
		return false
	case f.Language != "" && p.Language != f.Language:
		return false
	case f.SectionID != "" && p.SectionID != f.SectionID:
		return false
	case f.AuthorID != "" && p.AuthorID != f.AuthorID:
		return false
	case f.Status != "" && p.Status != f.Status:
		return false
	}
	if f.Tag != "" {
		for _, t := range p.Tags {
			if t == f.Tag {
				return true
			}
		}
		return false
	}
	return true
}

// sortNewest orders by publishedAt desc (unpublished last), then createdAt desc.
func sortNewest(list []*models.Post) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch {
		case a.PublishedAt != nil && b.PublishedAt == nil:
			return true
		case a.PublishedAt == nil && b.PublishedAt != nil:
			return false
		case a.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
			return a.PublishedAt.After(*b.PublishedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func (m *MemoryRepository) collect(match func(*models.Post) bool) []*models.Post {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*models.Post{}
	for _, p := range m.store {
		if match(p) {
			out = append(out, clone(p))
		}
	}
	sortNewest(out)
	return out
}

func (m *MemoryRepository) List(_ context.Context, f Filter, p pagination.Params) ([]*models.Post, int, error) {
	all := m.collect(func(post *models.Post) bool { return matches(post, f) })
	start, end := pagination.Window(p, len(all))
	return all[start:end], len(all), nil
}

func (m *MemoryRepository) Update(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.ID]; !ok {
		return ErrNotFound
	}
	if m.slugTakenLocked(p.Edition, p.Slug, p.ID) {
		return ErrDuplicate
	}
	p.UpdatedAt = time.Now().UTC()
	m.store[p.ID] = clone(p)
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

func (m *MemoryRepository) IncrementViews(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	p.Views++
	return nil
}

func (m *MemoryRepository) Search(_ context.Context, f SearchFilter) ([]*models.Post, error) {
	out := m.collect(func(p *models.Post) bool {
		if p.Status != models.PostPublished {
			return false
		}
		if (f.Edition != "" && p.Edition != f.Edition) || (f.Language != "" && p.Language != f.Language) {
			return false
		}
		if f.SectionID != "" && p.SectionID != f.SectionID {
			return false
		}
		if p.PublishedAt == nil ||
			(f.From != nil && p.PublishedAt.Before(*f.From)) ||
			(f.To != nil && p.PublishedAt.After(*f.To)) {
			return false
		}
		if len(f.Tokens) == 0 {
			return true
		}
		for _, t := range f.Tokens {
			if strings.Contains(p.SearchText, t) {
				return true
			}
		}
		return false
	})
	return out, nil
}
