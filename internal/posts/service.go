package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/events"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/validate"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/newsdesk/newsdesk/pkg/pagination"
	"github.com/newsdesk/newsdesk/pkg/slug"
)

const (
	MaxTitleLen = 300
	MaxTags     = 20
	MaxTagLen   = 48
)

// SectionLinker keeps section post lists in sync with post.sectionId.
type SectionLinker interface {
	// Attach appends postID to the section; the section must belong to edition.
	Attach(ctx context.Context, sectionID, postID string, edition models.Edition) error
	Detach(ctx context.Context, sectionID, postID string) error
	// DetachAll pulls postID from every section.
	DetachAll(ctx context.Context, postID string) error
}

// Service holds post business rules.
type Service struct {
	repo     Repository
	sections SectionLinker
	events   events.Publisher
}

func NewService(r Repository, sections SectionLinker, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.LogPublisher{}
	}
	return &Service{repo: r, sections: sections, events: pub}
}

// SetSectionLinker wires the section service after construction; the two
// services reference each other.
func (s *Service) SetSectionLinker(l SectionLinker) { s.sections = l }

// Input is the create payload.
type Input struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Content    string   `json:"content"`
	CoverImage string   `json:"coverImage"`
	Tags       []string `json:"tags"`
	SectionID  string   `json:"sectionId"`
	Edition    string   `json:"edition"`
	Language   string   `json:"language"`
	Slug       string   `json:"slug"`
}

// Patch updates selected fields; nil fields are left unchanged.
type Patch struct {
	Title      *string   `json:"title"`
	Summary    *string   `json:"summary"`
	Content    *string   `json:"content"`
	CoverImage *string   `json:"coverImage"`
	Tags       *[]string `json:"tags"`
	SectionID  *string   `json:"sectionId"`
	Language   *string   `json:"language"`
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("post")
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict("slug already in use")
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	return apperr.Internal(err)
}

// NormalizeTags trims, lower-cases and dedupes tags, keeping first-seen order.
func NormalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.Join(strings.Fields(t), " "))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SearchText is the folded text regex search runs against.
func SearchText(p *models.Post) string {
	parts := []string{p.Title, p.Summary, strings.Join(p.Tags, " "), p.Content}
	return slug.Fold(strings.Join(parts, "\n"))
}

func validatePost(v *validate.Validator, p *models.Post) {
	v.Required("title", p.Title).MaxLen("title", p.Title, MaxTitleLen)
	v.Required("content", p.Content)
	v.MaxLen("summary", p.Summary, 1000)
	v.URL("coverImage", p.CoverImage)
	v.Check(len(p.Tags) <= MaxTags, "tags", fmt.Sprintf("at most %d tags", MaxTags))
	for _, t := range p.Tags {
		v.MaxLen("tags", t, MaxTagLen)
	}
}

func parseLanguage(v *validate.Validator, raw string, edition models.Edition) models.Language {
	if strings.TrimSpace(raw) == "" {
		return models.DefaultLanguage(edition)
	}
	l, ok := models.ParseLanguage(raw)
	v.Check(ok, "language", "unknown language")
	return l
}

// uniqueSlug returns base, or base-2, base-3... whichever is free in edition.
func (s *Service) uniqueSlug(ctx context.Context, edition models.Edition, base, excludeID string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		taken, err := s.repo.SlugTaken(ctx, edition, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func baseSlug(title, id string) string {
	if b := slug.From(title); b != "" {
		return b
	}
	// titles in non-Latin scripts have no ASCII slug
	return "post-" + strings.ReplaceAll(id, "-", "")[20:]
}

// Create stores a new draft owned by actor.
func (s *Service) Create(ctx context.Context, actor *models.Principal, in Input) (*models.Post, error) {
	if actor == nil {
		return nil, apperr.Unauthorized("authentication required")
	}
	v := validate.New()
	edition := models.EditionGlobal
	if strings.TrimSpace(in.Edition) != "" {
		e, ok := models.ParseEdition(in.Edition)
		v.Check(ok, "edition", "unknown edition")
		edition = e
	}
	p := &models.Post{
		ID:         models.NewID(),
		Title:      strings.TrimSpace(in.Title),
		Summary:    strings.TrimSpace(in.Summary),
		Content:    in.Content,
		CoverImage: strings.TrimSpace(in.CoverImage),
		Tags:       NormalizeTags(in.Tags),
		SectionID:  in.SectionID,
		AuthorID:   actor.ID,
		Edition:    edition,
		Status:     models.PostDraft,
	}
	p.Language = parseLanguage(v, in.Language, edition)
	validatePost(v, p)
	if in.Slug != "" {
		v.Check(slug.From(in.Slug) == in.Slug, "slug", "must be lower-case letters, digits and hyphens")
	}
	if err := v.Err("invalid post"); err != nil {
		return nil, err
	}
	base := in.Slug
	if base == "" {
		base = baseSlug(p.Title, p.ID)
	}
	var err error
	if p.Slug, err = s.uniqueSlug(ctx, edition, base, ""); err != nil {
		return nil, apperr.Internal(err)
	}
	p.SearchText = SearchText(p)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, mapErr(err)
	}
	if p.SectionID != "" && s.sections != nil {
		if err := s.sections.Attach(ctx, p.SectionID, p.ID, p.Edition); err != nil {
			// keep the store consistent: a post never points at a section that does not list it
			_ = s.repo.Delete(ctx, p.ID)
			return nil, mapErr(err)
		}
	}
	logger.Infof("post created id=%s slug=%s edition=%s author=%s", p.ID, p.Slug, p.Edition, p.AuthorID)
	return p, nil
}

func canEdit(actor *models.Principal, p *models.Post) bool {
	return actor != nil && (actor.IsStaff() || actor.ID == p.AuthorID)
}

// Get returns a post by id. Unpublished posts are visible only to their
// owner and staff.
func (s *Service) Get(ctx context.Context, actor *models.Principal, id string) (*models.Post, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	if !p.Published() && !canEdit(actor, p) {
		return nil, apperr.NotFound("post")
	}
	return p, nil
}

// GetPublished resolves a public slug read and counts the view.
func (s *Service) GetPublished(ctx context.Context, edition models.Edition, slugStr string) (*models.Post, error) {
	p, err := s.repo.GetBySlug(ctx, edition, slugStr)
	if err != nil {
		return nil, mapErr(err)
	}
	if !p.Published() {
		return nil, apperr.NotFound("post")
	}
	if err := s.repo.IncrementViews(ctx, p.ID); err != nil {
		logger.Warnf("increment views for %s: %v", p.ID, err)
	} else {
		p.Views++
	}
	return p, nil
}

// BySlug returns the post with slug in edition, whatever its status, to its
// owner and staff.
func (s *Service) BySlug(ctx context.Context, actor *models.Principal, edition models.Edition, slugStr string) (*models.Post, error) {
	p, err := s.repo.GetBySlug(ctx, edition, slugStr)
	if err != nil {
		return nil, mapErr(err)
	}
	if !p.Published() && !canEdit(actor, p) {
		return nil, apperr.NotFound("post")
	}
	return p, nil
}

// GetMany returns posts keyed by id.
func (s *Service) GetMany(ctx context.Context, ids []string) (map[string]*models.Post, error) {
	m, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return m, nil
}

// List applies visibility: anonymous callers and plain authors asking for
// other authors' work only see published posts.
func (s *Service) List(ctx context.Context, actor *models.Principal, f Filter, p pagination.Params) ([]*models.Post, int, error) {
	if !actor.IsStaff() && f.Status != models.PostPublished {
		if actor == nil {
			f.Status = models.PostPublished
		} else if f.AuthorID != actor.ID {
			if f.AuthorID == "" && f.Status != "" {
				f.AuthorID = actor.ID
			} else {
				f.Status = models.PostPublished
			}
		}
	}
	list, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

func (s *Service) load(ctx context.Context, actor *models.Principal, id string) (*models.Post, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	if !canEdit(actor, p) {
		if p.Published() {
			return nil, apperr.Forbidden("only the owner or an editor may change this post")
		}
		return nil, apperr.NotFound("post")
	}
	return p, nil
}

// Update applies patch. Moving a post between sections updates both lists.
func (s *Service) Update(ctx context.Context, actor *models.Principal, id string, patch Patch) (*models.Post, error) {
	p, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	v := validate.New()
	oldSection := p.SectionID
	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Summary != nil {
		p.Summary = strings.TrimSpace(*patch.Summary)
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.CoverImage != nil {
		p.CoverImage = strings.TrimSpace(*patch.CoverImage)
	}
	if patch.Tags != nil {
		p.Tags = NormalizeTags(*patch.Tags)
	}
	if patch.Language != nil {
		p.Language = parseLanguage(v, *patch.Language, p.Edition)
	}
	if patch.SectionID != nil {
		p.SectionID = *patch.SectionID
	}
	validatePost(v, p)
	if err := v.Err("invalid post"); err != nil {
		return nil, err
	}
	moved := p.SectionID != oldSection
	if moved && p.SectionID != "" && s.sections != nil {
		if err := s.sections.Attach(ctx, p.SectionID, p.ID, p.Edition); err != nil {
			return nil, mapErr(err)
		}
	}
	p.SearchText = SearchText(p)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, mapErr(err)
	}
	if moved && oldSection != "" && s.sections != nil {
		if err := s.sections.Detach(ctx, oldSection, p.ID); err != nil {
			logger.Warnf("detach post %s from section %s: %v", p.ID, oldSection, err)
		}
	}
	return p, nil
}

// Delete removes the post and pulls it from every section.
func (s *Service) Delete(ctx context.Context, actor *models.Principal, id string) error {
	p, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return mapErr(err)
	}
	if s.sections != nil {
		if err := s.sections.DetachAll(ctx, p.ID); err != nil {
			logger.Warnf("detach deleted post %s from sections: %v", p.ID, err)
		}
	}
	logger.Infof("post deleted id=%s by=%s", p.ID, actor.ID)
	return nil
}

// CanPublish reports whether actor may publish p: staff always, owners only
// once their author account is approved.
func CanPublish(actor *models.Principal, p *models.Post) bool {
	if actor == nil {
		return false
	}
	if actor.IsStaff() {
		return true
	}
	return actor.ID == p.AuthorID && actor.CanPublish()
}

// Publish makes the post public. publishedAt is set on first publish only.
func (s *Service) Publish(ctx context.Context, actor *models.Principal, id string) (*models.Post, error) {
	p, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !CanPublish(actor, p) {
		return nil, apperr.Forbidden("author is not approved to publish")
	}
	if p.Published() {
		return p, nil
	}
	if p.PublishedAt == nil {
		now := time.Now().UTC()
		p.PublishedAt = &now
	}
	p.Status = models.PostPublished
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, mapErr(err)
	}
	logger.Infof("post published id=%s slug=%s by=%s", p.ID, p.Slug, actor.ID)
	events.Emit(ctx, s.events, events.New(events.PostPublished, p.ID, map[string]interface{}{
		"slug":     p.Slug,
		"title":    p.Title,
		"edition":  string(p.Edition),
		"language": string(p.Language),
		"authorId": p.AuthorID,
	}))
	return p, nil
}

// Unpublish returns the post to draft.
func (s *Service) Unpublish(ctx context.Context, actor *models.Principal, id string) (*models.Post, error) {
	return s.setStatus(ctx, actor, id, models.PostDraft)
}

// Archive hides the post without deleting it.
func (s *Service) Archive(ctx context.Context, actor *models.Principal, id string) (*models.Post, error) {
	return s.setStatus(ctx, actor, id, models.PostArchived)
}

func (s *Service) setStatus(ctx context.Context, actor *models.Principal, id string, st models.PostStatus) (*models.Post, error) {
	p, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if p.Status == st {
		return p, nil
	}
	p.Status = st
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// Candidates returns every published post matching f for ranking.
func (s *Service) Candidates(ctx context.Context, f SearchFilter) ([]*models.Post, error) {
	list, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}
