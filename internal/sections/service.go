package sections

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

const MaxLimit = 100

// PostLookup resolves posts referenced by sections.
type PostLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]*models.Post, error)
}

// PageLookup resolves the edition of a page.
type PageLookup interface {
	PageEdition(ctx context.Context, pageID string) (models.Edition, error)
}

// Service manages sections and the manual post order inside them.
type Service struct {
	repo  Repository
	posts PostLookup
	pages PageLookup
}

func NewService(r Repository, posts PostLookup) *Service {
	return &Service{repo: r, posts: posts}
}

// SetPageLookup wires page validation; pages depend on sections for composition.
func (s *Service) SetPageLookup(p PageLookup) { s.pages = p }

type Input struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Edition   string `json:"edition"`
	PageID    string `json:"pageId"`
	Layout    string `json:"layout"`
	Highlight bool   `json:"highlight"`
	Limit     int    `json:"limit"`
}

type Patch struct {
	Name      *string `json:"name"`
	Layout    *string `json:"layout"`
	Highlight *bool   `json:"highlight"`
	Limit     *int    `json:"limit"`
	PageID    *string `json:"pageId"`
}

var layouts = []string{
	string(models.LayoutGrid), string(models.LayoutList),
	string(models.LayoutCarousel), string(models.LayoutHero),
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("section")
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Internal(err)
}

func validateSection(v *validate.Validator, sec *models.Section) {
	v.Required("name", sec.Name).MaxLen("name", sec.Name, 120)
	v.OneOf("layout", string(sec.Layout), layouts...)
	v.Check(sec.Limit >= 0 && sec.Limit <= MaxLimit, "limit", "must be between 0 and 100")
}

// checkPage verifies that pageID exists and belongs to edition.
func (s *Service) checkPage(ctx context.Context, pageID string, edition models.Edition) error {
	if pageID == "" || s.pages == nil {
		return nil
	}
	ed, err := s.pages.PageEdition(ctx, pageID)
	if err != nil {
		return err
	}
	if ed != edition {
		return apperr.BadRequest("page belongs to another edition")
	}
	return nil
}

// nextPosition returns the position after the last section of pageID.
func (s *Service) nextPosition(ctx context.Context, pageID string) (int, error) {
	if pageID == "" {
		return 0, nil
	}
	list, err := s.repo.List(ctx, Filter{PageID: pageID})
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (s *Service) Create(ctx context.Context, in Input) (*models.Section, error) {
	v := validate.New()
	edition := models.EditionGlobal
	if strings.TrimSpace(in.Edition) != "" {
		e, ok := models.ParseEdition(in.Edition)
		v.Check(ok, "edition", "unknown edition")
		edition = e
	}
	sec := &models.Section{
		Name:      strings.TrimSpace(in.Name),
		Slug:      slug.From(in.Slug),
		Edition:   edition,
		PageID:    in.PageID,
		Layout:    models.SectionLayout(in.Layout),
		Highlight: in.Highlight,
		Limit:     in.Limit,
		PostIDs:   []string{},
	}
	if sec.Layout == "" {
		sec.Layout = models.LayoutGrid
	}
	if sec.Slug == "" {
		sec.Slug = slug.From(sec.Name)
	}
	validateSection(v, sec)
	if err := v.Err("invalid section"); err != nil {
		return nil, err
	}
	if err := s.checkPage(ctx, sec.PageID, sec.Edition); err != nil {
		return nil, mapErr(err)
	}
	pos, err := s.nextPosition(ctx, sec.PageID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	sec.Position = pos
	if err := s.repo.Create(ctx, sec); err != nil {
		return nil, apperr.Internal(err)
	}
	logger.Infof("section created id=%s name=%q page=%s", sec.ID, sec.Name, sec.PageID)
	return sec, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Section, error) {
	sec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return sec, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]*models.Section, error) {
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, id string, p Patch) (*models.Section, error) {
	sec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		sec.Name = strings.TrimSpace(*p.Name)
	}
	if p.Layout != nil {
		sec.Layout = models.SectionLayout(*p.Layout)
	}
	if p.Highlight != nil {
		sec.Highlight = *p.Highlight
	}
	if p.Limit != nil {
		sec.Limit = *p.Limit
	}
	v := validate.New()
	validateSection(v, sec)
	if err := v.Err("invalid section"); err != nil {
		return nil, err
	}
	if p.PageID != nil && *p.PageID != sec.PageID {
		if err := s.checkPage(ctx, *p.PageID, sec.Edition); err != nil {
			return nil, mapErr(err)
		}
		pos, err := s.nextPosition(ctx, *p.PageID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		sec.PageID, sec.Position = *p.PageID, pos
	}
	if err := s.repo.Update(ctx, sec); err != nil {
		return nil, mapErr(err)
	}
	return sec, nil
}

// Delete removes the section and closes the gap in its page's positions.
func (s *Service) Delete(ctx context.Context, id string) error {
	sec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapErr(err)
	}
	if sec.PageID != "" {
		rest, err := s.repo.List(ctx, Filter{PageID: sec.PageID})
		if err != nil {
			return apperr.Internal(err)
		}
		ids := make([]string, len(rest))
		for i, r := range rest {
			ids[i] = r.ID
		}
		if err := s.repo.SetPositions(ctx, ids); err != nil {
			return apperr.Internal(err)
		}
	}
	return nil
}

func (s *Service) checkPost(ctx context.Context, postID string, edition models.Edition) error {
	if s.posts == nil {
		return nil
	}
	found, err := s.posts.GetMany(ctx, []string{postID})
	if err != nil {
		return err
	}
	p, ok := found[postID]
	if !ok {
		return apperr.NotFound("post")
	}
	if p.Edition != edition {
		return apperr.BadRequest("post belongs to another edition")
	}
	return nil
}

// AddPost inserts postID at index (clamped). A post appears at most once.
func (s *Service) AddPost(ctx context.Context, sectionID, postID string, index int) (*models.Section, error) {
	sec, err := s.Get(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if sec.IndexOf(postID) >= 0 {
		return nil, apperr.Conflict("post already in section")
	}
	if err := s.checkPost(ctx, postID, sec.Edition); err != nil {
		return nil, mapErr(err)
	}
	sec.PostIDs = InsertAt(sec.PostIDs, postID, index)
	if err := s.repo.Update(ctx, sec); err != nil {
		return nil, mapErr(err)
	}
	return sec, nil
}

func (s *Service) RemovePost(ctx context.Context, sectionID, postID string) (*models.Section, error) {
	sec, err := s.Get(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if sec.IndexOf(postID) < 0 {
		return nil, apperr.NotFound("post in section")
	}
	sec.PostIDs = without(sec.PostIDs, postID)
	if err := s.repo.Update(ctx, sec); err != nil {
		return nil, mapErr(err)
	}
	return sec, nil
}

// MovePost is the drag-reorder within a section.
func (s *Service) MovePost(ctx context.Context, sectionID string, from, to int) (*models.Section, error) {
	sec, err := s.Get(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	moved, err := Move(sec.PostIDs, from, to)
	if err != nil {
		return nil, apperr.BadRequest(err.Error())
	}
	sec.PostIDs = moved
	if err := s.repo.Update(ctx, sec); err != nil {
		return nil, mapErr(err)
	}
	return sec, nil
}

// ReorderPosts replaces the manual order; ids must be a permutation of the
// current posts.
func (s *Service) ReorderPosts(ctx context.Context, sectionID string, ids []string) (*models.Section, error) {
	sec, err := s.Get(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	if !IsPermutation(sec.PostIDs, ids) {
		return nil, apperr.BadRequest("postIds must contain exactly the section's current posts")
	}
	sec.PostIDs = append([]string{}, ids...)
	if err := s.repo.Update(ctx, sec); err != nil {
		return nil, mapErr(err)
	}
	return sec, nil
}

func (s *Service) SetHighlight(ctx context.Context, sectionID string, on bool) (*models.Section, error) {
	return s.Update(ctx, sectionID, Patch{Highlight: &on})
}

// ReorderSections rewrites positions 0..n-1 of a page's sections in the given order.
func (s *Service) ReorderSections(ctx context.Context, pageID string, ids []string) ([]*models.Section, error) {
	current, err := s.repo.List(ctx, Filter{PageID: pageID})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	have := make([]string, len(current))
	for i, c := range current {
		have[i] = c.ID
	}
	if !IsPermutation(have, ids) {
		return nil, apperr.BadRequest("sectionIds must contain exactly the page's sections")
	}
	if err := s.repo.SetPositions(ctx, ids); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.List(ctx, Filter{PageID: pageID})
}

// Attach appends postID to the section; used when a post names its section.
func (s *Service) Attach(ctx context.Context, sectionID, postID string, edition models.Edition) error {
	sec, err := s.Get(ctx, sectionID)
	if err != nil {
		return err
	}
	if sec.Edition != edition {
		return apperr.BadRequest("section belongs to another edition")
	}
	return mapErr(s.repo.AppendPost(ctx, sectionID, postID))
}

func (s *Service) Detach(ctx context.Context, sectionID, postID string) error {
	err := s.repo.PullPost(ctx, sectionID, postID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return mapErr(err)
}

func (s *Service) DetachAll(ctx context.Context, postID string) error {
	return mapErr(s.repo.PullPostEverywhere(ctx, postID))
}

// DetachPage unassigns every section of a deleted page.
func (s *Service) DetachPage(ctx context.Context, pageID string) error {
	return mapErr(s.repo.DetachPage(ctx, pageID))
}
