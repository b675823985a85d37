package pages

import (
	"context"
	"errors"

	"github.com/newsdesk/newsdesk/internal/models"
)

var (
	ErrNotFound  = errors.New("page not found")
	ErrDuplicate = errors.New("page slug already used in edition")
)

// Repository defines persistence operations for pages
type Repository interface {
	Create(ctx context.Context, p *models.Page) error
	Get(ctx context.Context, id string) (*models.Page, error)
	GetBySlug(ctx context.Context, edition models.Edition, slug string) (*models.Page, error)
	// List returns pages of edition (all editions when empty) ordered by slug.
	List(ctx context.Context, edition models.Edition) ([]*models.Page, error)
	Update(ctx context.Context, p *models.Page) error
	Delete(ctx context.Context, id string) error
}

// Composer builds the nested page document.
type Composer interface {
	Compose(ctx context.Context, page *models.Page) (*models.ComposedPage, error)
}

// Arrange applies the section's render rules to its published cards, which
// must already be in manual order: limit caps the total (highlight included)
// and a highlighted section lifts its first card out of the list.
func Arrange(sec models.Section, cards []models.PostCard) models.ComposedSection {
	if sec.Limit > 0 && len(cards) > sec.Limit {
		cards = cards[:sec.Limit]
	}
	out := models.ComposedSection{Section: sec, Posts: cards}
	if sec.Highlight && len(cards) > 0 {
		h := cards[0]
		out.Highlight = &h
		out.Posts = cards[1:]
	}
	if out.Posts == nil {
		out.Posts = []models.PostCard{}
	}
	return out
}
