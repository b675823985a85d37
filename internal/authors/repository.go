package authors

import (
	"context"
	"errors"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

var (
	ErrNotFound  = errors.New("author not found")
	ErrDuplicate = errors.New("author email already registered")
)

// Filter narrows List results; zero values match everything.
type Filter struct {
	Status models.AuthorStatus
	Role   models.Role
}

// Repository defines persistence operations for authors
type Repository interface {
	Create(ctx context.Context, a *models.Author) error
	Get(ctx context.Context, id string) (*models.Author, error)
	GetByEmail(ctx context.Context, email string) (*models.Author, error)
	GetByProvider(ctx context.Context, provider, sub string) (*models.Author, error)
	GetMany(ctx context.Context, ids []string) (map[string]*models.Author, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]*models.Author, int, error)
	Update(ctx context.Context, a *models.Author) error
	Delete(ctx context.Context, id string) error
}
