package pages

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/sections"
	"golang.org/x/sync/errgroup"
)

// MemoryRepository is an in-memory Repository used by tests and when MongoDB
// is unavailable.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*models.Page
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*models.Page)}
}

func (m *MemoryRepository) slugTakenLocked(p *models.Page) bool {
	for id, existing := range m.store {
		if id != p.ID && existing.Edition == p.Edition && existing.Slug == p.Slug {
			return true
		}
	}
	return false
}

func (m *MemoryRepository) Create(_ context.Context, p *models.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = models.NewID()
	}
	if m.slugTakenLocked(p) {
		return ErrDuplicate
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, id string) (*models.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, edition models.Edition, slug string) (*models.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.Edition == edition && p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) List(_ context.Context, edition models.Edition) ([]*models.Page, error) {
	m.mu.RLock()
	out := []*models.Page{}
	for _, p := range m.store {
		if edition == "" || p.Edition == edition {
			cp := *p
			out = append(out, &cp)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Slug != out[j].Slug {
			return out[i].Slug < out[j].Slug
		}
		return out[i].Edition < out[j].Edition
	})
	return out, nil
}

func (m *MemoryRepository) Update(_ context.Context, p *models.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.ID]; !ok {
		return ErrNotFound
	}
	if m.slugTakenLocked(p) {
		return ErrDuplicate
	}
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	m.store[p.ID] = &cp
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

// SectionLister lists the sections of a page in position order.
type SectionLister interface {
	List(ctx context.Context, f sections.Filter) ([]*models.Section, error)
}

// PostLookup and AuthorLookup resolve referenced documents by id.
type PostLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]*models.Post, error)
}

type AuthorLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]*models.Author, error)
}

// LookupComposer builds the composed page from repository lookups, one
// section at a time in parallel. Used with the in-memory store.
type LookupComposer struct {
	sections SectionLister
	posts    PostLookup
	authors  AuthorLookup
}

func NewLookupComposer(s SectionLister, p PostLookup, a AuthorLookup) *LookupComposer {
	return &LookupComposer{sections: s, posts: p, authors: a}
}

func (c *LookupComposer) Compose(ctx context.Context, page *models.Page) (*models.ComposedPage, error) {
	secs, err := c.sections.List(ctx, sections.Filter{PageID: page.ID})
	if err != nil {
		return nil, err
	}
	out := &models.ComposedPage{Page: *page, Sections: make([]models.ComposedSection, len(secs))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, sec := range secs {
		i, sec := i, sec
		g.Go(func() error {
			cards, err := c.cards(gctx, sec)
			if err != nil {
				return err
			}
			out.Sections[i] = Arrange(*sec, cards)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// cards returns the section's published posts in manual order with authors.
func (c *LookupComposer) cards(ctx context.Context, sec *models.Section) ([]models.PostCard, error) {
	found, err := c.posts.GetMany(ctx, sec.PostIDs)
	if err != nil {
		return nil, err
	}
	visible := make([]*models.Post, 0, len(sec.PostIDs))
	authorIDs := make([]string, 0, len(sec.PostIDs))
	for _, id := range sec.PostIDs {
		if p, ok := found[id]; ok && p.Published() {
			visible = append(visible, p)
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}
	authors, err := c.authors.GetMany(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	cards := make([]models.PostCard, 0, len(visible))
	for _, p := range visible {
		cards = append(cards, models.CardOf(p, authors[p.AuthorID]))
	}
	return cards, nil
}
