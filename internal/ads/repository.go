package ads

import (
	"context"
	"errors"
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("ad not found")

type Filter struct {
	Placement models.Placement
	Edition   models.Edition
	Active    *bool
}

// Repository persists ads. RecordImpression and RecordClick are single atomic
// updates so concurrent serves never lose spend.
type Repository interface {
	Create(ctx context.Context, a *models.Ad) error
	Get(ctx context.Context, id string) (*models.Ad, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]*models.Ad, int, error)
	Update(ctx context.Context, a *models.Ad) error
	Delete(ctx context.Context, id string) error
	// Candidates returns active ads for placement and edition whose window
	// contains now, highest weight first.
	Candidates(ctx context.Context, placement models.Placement, edition models.Edition, now time.Time) ([]*models.Ad, error)
	RecordImpression(ctx context.Context, id string, cost decimal.Decimal) (*models.Ad, error)
	RecordClick(ctx context.Context, id string) (*models.Ad, error)
}
