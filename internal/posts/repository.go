package posts

import (
	"context"
	"errors"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrDuplicate = errors.New("post slug already used in edition")
)

// Filter narrows List results; zero values match everything.
type Filter struct {
	Edition   models.Edition
	Language  models.Language
	SectionID string
	AuthorID  string
	Status    models.PostStatus
	Tag       string
}

// SearchFilter selects search candidates. Tokens are already folded; a post
// matches when its search text contains any of them.
type SearchFilter struct {
	Edition   models.Edition
	Language  models.Language
	SectionID string
	From      *time.Time
	To        *time.Time
	Tokens    []string
}

// Repository defines persistence operations for posts
type Repository interface {
	Create(ctx context.Context, p *models.Post) error
	Get(ctx context.Context, id string) (*models.Post, error)
	GetBySlug(ctx context.Context, edition models.Edition, slug string) (*models.Post, error)
	// SlugTaken reports whether slug is used in edition by a post other than excludeID.
	SlugTaken(ctx context.Context, edition models.Edition, slug, excludeID string) (bool, error)
	GetMany(ctx context.Context, ids []string) (map[string]*models.Post, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]*models.Post, int, error)
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	// Search returns published candidates, newest first, at most max.
	Search(ctx context.Context, f SearchFilter) ([]*models.Post, error)
}
