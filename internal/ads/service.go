package ads

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/validate"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/newsdesk/newsdesk/pkg/metrics"
	"github.com/newsdesk/newsdesk/pkg/pagination"
	"github.com/shopspring/decimal"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, now: time.Now}
}

type Input struct {
	Title     string          `json:"title"`
	ImageURL  string          `json:"imageUrl"`
	TargetURL string          `json:"targetUrl"`
	Placement string          `json:"placement"`
	Edition   string          `json:"edition"`
	StartsAt  time.Time       `json:"startsAt"`
	EndsAt    time.Time       `json:"endsAt"`
	Active    *bool           `json:"active"`
	Weight    int             `json:"weight"`
	CPM       decimal.Decimal `json:"cpm"`
	Budget    decimal.Decimal `json:"budget"`
}

type Patch struct {
	Title     *string          `json:"title"`
	ImageURL  *string          `json:"imageUrl"`
	TargetURL *string          `json:"targetUrl"`
	Placement *string          `json:"placement"`
	StartsAt  *time.Time       `json:"startsAt"`
	EndsAt    *time.Time       `json:"endsAt"`
	Active    *bool            `json:"active"`
	Weight    *int             `json:"weight"`
	CPM       *decimal.Decimal `json:"cpm"`
	Budget    *decimal.Decimal `json:"budget"`
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("ad")
	}
	return apperr.Internal(err)
}

func validateAd(v *validate.Validator, a *models.Ad) {
	v.Required("title", a.Title).MaxLen("title", a.Title, 200)
	v.Required("targetUrl", a.TargetURL).URL("targetUrl", a.TargetURL)
	if a.ImageURL != "" {
		v.URL("imageUrl", a.ImageURL)
	}
	v.OneOf("placement", string(a.Placement), models.Placements...)
	v.Check(!a.StartsAt.IsZero() && !a.EndsAt.IsZero(), "startsAt", "startsAt and endsAt are required")
	v.Check(a.EndsAt.After(a.StartsAt), "endsAt", "must be after startsAt")
	v.Check(a.Weight >= 0, "weight", "must not be negative")
	v.Check(!a.CPM.IsNegative(), "cpm", "must not be negative")
	v.Check(!a.Budget.IsNegative(), "budget", "must not be negative")
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Ad, error) {
	v := validate.New()
	edition := models.EditionGlobal
	if strings.TrimSpace(in.Edition) != "" {
		e, ok := models.ParseEdition(in.Edition)
		v.Check(ok, "edition", "unknown edition")
		edition = e
	}
	a := &models.Ad{
		Title:     strings.TrimSpace(in.Title),
		ImageURL:  strings.TrimSpace(in.ImageURL),
		TargetURL: strings.TrimSpace(in.TargetURL),
		Placement: models.Placement(in.Placement),
		Edition:   edition,
		StartsAt:  in.StartsAt.UTC(),
		EndsAt:    in.EndsAt.UTC(),
		Active:    in.Active == nil || *in.Active,
		Weight:    in.Weight,
		CPM:       in.CPM,
		Budget:    in.Budget,
		Spent:     decimal.Zero,
	}
	validateAd(v, a)
	if err := v.Err("invalid ad"); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, mapErr(err)
	}
	logger.Infof("ad created id=%s placement=%s edition=%s", a.ID, a.Placement, a.Edition)
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Ad, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, f Filter, p pagination.Params) ([]*models.Ad, int, error) {
	list, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*models.Ad, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		a.Title = strings.TrimSpace(*p.Title)
	}
	if p.ImageURL != nil {
		a.ImageURL = strings.TrimSpace(*p.ImageURL)
	}
	if p.TargetURL != nil {
		a.TargetURL = strings.TrimSpace(*p.TargetURL)
	}
	if p.Placement != nil {
		a.Placement = models.Placement(*p.Placement)
	}
	if p.StartsAt != nil {
		a.StartsAt = p.StartsAt.UTC()
	}
	if p.EndsAt != nil {
		a.EndsAt = p.EndsAt.UTC()
	}
	if p.Active != nil {
		a.Active = *p.Active
	}
	if p.Weight != nil {
		a.Weight = *p.Weight
	}
	if p.CPM != nil {
		a.CPM = *p.CPM
	}
	if p.Budget != nil {
		a.Budget = *p.Budget
	}
	v := validate.New()
	validateAd(v, a)
	if err := v.Err("invalid ad"); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return mapErr(s.repo.Delete(ctx, id))
}

// Serve picks the heaviest servable ad for placement and edition and records
// an impression on it. It returns nil when nothing can be shown.
func (s *Service) Serve(ctx context.Context, placement models.Placement, edition models.Edition) (*models.Ad, error) {
	v := validate.New().OneOf("placement", string(placement), models.Placements...)
	if err := v.Err("invalid placement"); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	list, err := s.repo.Candidates(ctx, placement, edition, now)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	for _, a := range list {
		if !a.Servable(now) {
			continue
		}
		served, err := s.repo.RecordImpression(ctx, a.ID, a.ImpressionCost())
		if err != nil {
			return nil, mapErr(err)
		}
		metrics.AdImpressions.WithLabelValues(string(placement)).Inc()
		if !served.Active {
			logger.Infof("ad %s exhausted its budget of %s", served.ID, served.Budget)
		}
		return served, nil
	}
	return nil, nil
}

// Click counts a click and returns the landing URL.
func (s *Service) Click(ctx context.Context, id string) (string, error) {
	a, err := s.repo.RecordClick(ctx, id)
	if err != nil {
		return "", mapErr(err)
	}
	metrics.AdClicks.Inc()
	return a.TargetURL, nil
}
