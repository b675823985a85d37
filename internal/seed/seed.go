// Package seed loads fixture content (authors, posts, pages, sections, ads)
// from YAML. Every record is keyed by a natural id (email, slug, title) so a
// file can be applied repeatedly.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/newsdesk/newsdesk/internal/ads"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/authors"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/pages"
	"github.com/newsdesk/newsdesk/internal/posts"
	"github.com/newsdesk/newsdesk/internal/sections"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/newsdesk/newsdesk/pkg/pagination"
	"github.com/newsdesk/newsdesk/pkg/slug"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Admin struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type Author struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Bio      string `yaml:"bio"`
	Role     string `yaml:"role"`
	Approved bool   `yaml:"approved"`
}

type Post struct {
	Slug     string   `yaml:"slug"`
	Title    string   `yaml:"title"`
	Summary  string   `yaml:"summary"`
	Content  string   `yaml:"content"`
	Tags     []string `yaml:"tags"`
	Edition  string   `yaml:"edition"`
	Language string   `yaml:"language"`
	// Author is an email from the authors list; the admin when empty.
	Author  string `yaml:"author"`
	Publish bool   `yaml:"publish"`
}

type Section struct {
	Name      string `yaml:"name"`
	Slug      string `yaml:"slug"`
	Layout    string `yaml:"layout"`
	Highlight bool   `yaml:"highlight"`
	Limit     int    `yaml:"limit"`
	// Posts are post slugs in display order.
	Posts []string `yaml:"posts"`
}

type Page struct {
	Slug        string    `yaml:"slug"`
	Title       string    `yaml:"title"`
	Edition     string    `yaml:"edition"`
	Description string    `yaml:"description"`
	Sections    []Section `yaml:"sections"`
}

type Ad struct {
	Title     string    `yaml:"title"`
	ImageURL  string    `yaml:"imageUrl"`
	TargetURL string    `yaml:"targetUrl"`
	Placement string    `yaml:"placement"`
	Edition   string    `yaml:"edition"`
	StartsAt  time.Time `yaml:"startsAt"`
	EndsAt    time.Time `yaml:"endsAt"`
	Weight    int       `yaml:"weight"`
	CPM       string    `yaml:"cpm"`
	Budget    string    `yaml:"budget"`
}

// File is the document layout.
type File struct {
	Admin   Admin    `yaml:"admin"`
	Authors []Author `yaml:"authors"`
	Posts   []Post   `yaml:"posts"`
	Pages   []Page   `yaml:"pages"`
	Ads     []Ad     `yaml:"ads"`
}

// Parse decodes a seed document; unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parse seed: empty document")
		}
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if f.Admin.Email == "" {
		return nil, errors.New("parse seed: admin.email is required")
	}
	return &f, nil
}

// Report counts created and already present records per kind.
type Report struct {
	Created map[string]int
	Skipped map[string]int
}

func (r *Report) add(kind string, created bool) {
	if created {
		r.Created[kind]++
	} else {
		r.Skipped[kind]++
	}
}

type Seeder struct {
	Authors  *authors.Service
	Posts    *posts.Service
	Sections *sections.Service
	Pages    *pages.Service
	Ads      *ads.Service
}

func notFound(err error) bool { return apperr.Is(err, http.StatusNotFound) }

// Apply writes f through the services in dependency order.
func (s *Seeder) Apply(ctx context.Context, f *File) (*Report, error) {
	rep := &Report{Created: map[string]int{}, Skipped: map[string]int{}}

	admin, err := s.Authors.EnsureAdmin(ctx, f.Admin.Name, f.Admin.Email, f.Admin.Password)
	if err != nil {
		return nil, fmt.Errorf("admin %s: %w", f.Admin.Email, err)
	}
	actor := models.PrincipalOf(admin)
	people := map[string]*models.Principal{}

	for _, in := range f.Authors {
		a, created, err := s.author(ctx, actor, in)
		if err != nil {
			return nil, fmt.Errorf("author %s: %w", in.Email, err)
		}
		people[a.Email] = models.PrincipalOf(a)
		rep.add("authors", created)
	}

	bySlug := map[string]*models.Post{}
	for _, in := range f.Posts {
		owner := actor
		if in.Author != "" {
			a, err := s.Authors.GetByEmail(ctx, in.Author)
			if err != nil {
				return nil, fmt.Errorf("post %s: author %s: %w", in.Slug, in.Author, err)
			}
			owner = models.PrincipalOf(a)
		}
		p, created, err := s.post(ctx, actor, owner, in)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", in.Slug, err)
		}
		bySlug[p.Slug] = p
		rep.add("posts", created)
	}

	for _, in := range f.Pages {
		page, created, err := s.page(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", in.Slug, err)
		}
		rep.add("pages", created)
		for _, sec := range in.Sections {
			created, err := s.section(ctx, page, sec, bySlug)
			if err != nil {
				return nil, fmt.Errorf("page %s section %s: %w", in.Slug, sec.Name, err)
			}
			rep.add("sections", created)
		}
	}

	for _, in := range f.Ads {
		created, err := s.ad(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("ad %q: %w", in.Title, err)
		}
		rep.add("ads", created)
	}
	logger.Infof("seed applied: created=%v skipped=%v", rep.Created, rep.Skipped)
	return rep, nil
}

func (s *Seeder) author(ctx context.Context, admin *models.Principal, in Author) (*models.Author, bool, error) {
	a, err := s.Authors.GetByEmail(ctx, in.Email)
	if err == nil {
		return a, false, nil
	}
	if !notFound(err) {
		return nil, false, err
	}
	a, err = s.Authors.Register(ctx, authors.RegisterInput{Name: in.Name, Email: in.Email, Password: in.Password, Bio: in.Bio})
	if err != nil {
		return nil, false, err
	}
	if in.Approved {
		if a, err = s.Authors.Review(ctx, admin, a.ID, authors.DecisionApprove, "seed"); err != nil {
			return nil, false, err
		}
	}
	if in.Role != "" && models.Role(in.Role) != a.Role {
		if a, err = s.Authors.SetRole(ctx, admin, a.ID, models.Role(in.Role)); err != nil {
			return nil, false, err
		}
	}
	return a, true, nil
}

func (s *Seeder) post(ctx context.Context, admin, owner *models.Principal, in Post) (*models.Post, bool, error) {
	edition := models.EditionOrDefault(in.Edition)
	p, err := s.Posts.BySlug(ctx, admin, edition, in.Slug)
	if err == nil {
		return p, false, nil
	}
	if !notFound(err) {
		return nil, false, err
	}
	p, err = s.Posts.Create(ctx, owner, posts.Input{
		Title: in.Title, Summary: in.Summary, Content: in.Content, Tags: in.Tags,
		Edition: string(edition), Language: in.Language, Slug: in.Slug,
	})
	if err != nil {
		return nil, false, err
	}
	if in.Publish {
		if p, err = s.Posts.Publish(ctx, admin, p.ID); err != nil {
			return nil, false, err
		}
	}
	return p, true, nil
}

func (s *Seeder) page(ctx context.Context, in Page) (*models.Page, bool, error) {
	edition := models.EditionOrDefault(in.Edition)
	p, err := s.Pages.GetBySlug(ctx, edition, in.Slug)
	if err == nil {
		return p, false, nil
	}
	if !notFound(err) {
		return nil, false, err
	}
	p, err = s.Pages.Create(ctx, pages.Input{Slug: in.Slug, Title: in.Title, Edition: string(edition), Description: in.Description})
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// section creates the section on page and fills it; an existing section
// (same slug on the page) is left as editors arranged it.
func (s *Seeder) section(ctx context.Context, page *models.Page, in Section, bySlug map[string]*models.Post) (bool, error) {
	key := slug.From(in.Slug)
	if key == "" {
		key = slug.From(in.Name)
	}
	existing, err := s.Sections.List(ctx, sections.Filter{PageID: page.ID})
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if e.Slug == key {
			return false, nil
		}
	}
	sec, err := s.Sections.Create(ctx, sections.Input{
		Name: in.Name, Slug: key, Edition: string(page.Edition), PageID: page.ID,
		Layout: in.Layout, Highlight: in.Highlight, Limit: in.Limit,
	})
	if err != nil {
		return false, err
	}
	for _, ps := range in.Posts {
		p, ok := bySlug[ps]
		if !ok {
			return false, fmt.Errorf("unknown post %q", ps)
		}
		if _, err := s.Sections.AddPost(ctx, sec.ID, p.ID, -1); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *Seeder) ad(ctx context.Context, in Ad) (bool, error) {
	list, _, err := s.Ads.List(ctx, ads.Filter{Placement: models.Placement(in.Placement)}, pagination.Params{Page: 1, Limit: pagination.MaxLimit})
	if err != nil {
		return false, err
	}
	for _, a := range list {
		if a.Title == in.Title {
			return false, nil
		}
	}
	cpm, err := money(in.CPM)
	if err != nil {
		return false, fmt.Errorf("cpm: %w", err)
	}
	budget, err := money(in.Budget)
	if err != nil {
		return false, fmt.Errorf("budget: %w", err)
	}
	_, err = s.Ads.Create(ctx, ads.Input{
		Title: in.Title, ImageURL: in.ImageURL, TargetURL: in.TargetURL, Placement: in.Placement,
		Edition: in.Edition, StartsAt: in.StartsAt, EndsAt: in.EndsAt, Weight: in.Weight, CPM: cpm, Budget: budget,
	})
	return err == nil, err
}

func money(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
