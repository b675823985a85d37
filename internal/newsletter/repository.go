package newsletter

import (
	"context"
	"errors"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
)

var (
	ErrNotFound  = errors.New("subscriber not found")
	ErrDuplicate = errors.New("subscriber already exists")
)

type Filter struct {
	Status  models.SubscriberStatus
	Edition models.Edition
}

type Repository interface {
	Create(ctx context.Context, s *models.Subscriber) error
	GetByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	GetByToken(ctx context.Context, token string) (*models.Subscriber, error)
	Update(ctx context.Context, s *models.Subscriber) error
	List(ctx context.Context, f Filter, p pagination.Params) ([]*models.Subscriber, int, error)
	Count(ctx context.Context, f Filter) (int, error)
}
