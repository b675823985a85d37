package pages

import (
	"context"
	"errors"
	"strings"

	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/validate"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/newsdesk/newsdesk/pkg/slug"
)

// SectionDetacher unassigns the sections of a deleted page.
type SectionDetacher interface {
	DetachPage(ctx context.Context, pageID string) error
}

type Service struct {
	repo     Repository
	composer Composer
	sections SectionDetacher
}

func NewService(r Repository, c Composer, sections SectionDetacher) *Service {
	return &Service{repo: r, composer: c, sections: sections}
}

type Input struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Edition     string `json:"edition"`
	Description string `json:"description"`
}

type Patch struct {
	Slug        *string `json:"slug"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("page")
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict("page slug already exists in this edition")
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Internal(err)
}

func validatePage(v *validate.Validator, p *models.Page) {
	v.Required("title", p.Title).MaxLen("title", p.Title, 200)
	v.Required("slug", p.Slug).MaxLen("slug", p.Slug, slug.MaxLen)
	v.MaxLen("description", p.Description, 1000)
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Page, error) {
	v := validate.New()
	edition := models.EditionGlobal
	if strings.TrimSpace(in.Edition) != "" {
		e, ok := models.ParseEdition(in.Edition)
		v.Check(ok, "edition", "unknown edition")
		edition = e
	}
	p := &models.Page{
		Title:       strings.TrimSpace(in.Title),
		Slug:        slug.From(in.Slug),
		Edition:     edition,
		Description: strings.TrimSpace(in.Description),
	}
	if in.Slug == "" {
		p.Slug = slug.From(p.Title)
	}
	validatePage(v, p)
	if err := v.Err("invalid page"); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, mapErr(err)
	}
	logger.Infof("page created id=%s slug=%s edition=%s", p.ID, p.Slug, p.Edition)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Page, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (s *Service) GetBySlug(ctx context.Context, edition models.Edition, slugStr string) (*models.Page, error) {
	p, err := s.repo.GetBySlug(ctx, edition, slugStr)
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// PageEdition implements sections.PageLookup.
func (s *Service) PageEdition(ctx context.Context, id string) (models.Edition, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Edition, nil
}

func (s *Service) List(ctx context.Context, edition models.Edition) ([]*models.Page, error) {
	list, err := s.repo.List(ctx, edition)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (*models.Page, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Slug != nil {
		p.Slug = slug.From(*patch.Slug)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	v := validate.New()
	validatePage(v, p)
	if err := v.Err("invalid page"); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// Delete removes the page; its sections stay and become unassigned.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapErr(err)
	}
	if s.sections != nil {
		if err := s.sections.DetachPage(ctx, id); err != nil {
			logger.Warnf("detach sections of deleted page %s: %v", id, err)
		}
	}
	return nil
}

// Compose returns the rendered page for edition and slug.
func (s *Service) Compose(ctx context.Context, edition models.Edition, slugStr string) (*models.ComposedPage, error) {
	p, err := s.GetBySlug(ctx, edition, slugStr)
	if err != nil {
		return nil, err
	}
	out, err := s.composer.Compose(ctx, p)
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}
