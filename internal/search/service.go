// Package search ranks published posts for a free-text query.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/posts"
	"github.com/newsdesk/newsdesk/internal/sections"
	"github.com/newsdesk/newsdesk/pkg/metrics"
	"github.com/newsdesk/newsdesk/pkg/pagination"
	"golang.org/x/sync/errgroup"
)

const (
	MaxTopics   = 5
	MaxQueryLen = 200
)

// CandidateSource returns published posts matching any token.
type CandidateSource interface {
	Candidates(ctx context.Context, f posts.SearchFilter) ([]*models.Post, error)
}

// SectionLister resolves section names for topic extraction.
type SectionLister interface {
	List(ctx context.Context, f sections.Filter) ([]*models.Section, error)
}

type Service struct {
	posts    CandidateSource
	sections SectionLister
	now      func() time.Time
}

func NewService(p CandidateSource, s SectionLister) *Service {
	return &Service{posts: p, sections: s, now: time.Now}
}

// Request carries the raw query parameters.
type Request struct {
	Q       string
	Edition string
	Lang    string
	Range   string
	From    string
	To      string
	Section string
	Page    pagination.Params
}

type Response struct {
	Query   string   `json:"query"`
	Tokens  []string `json:"tokens"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
	Results []Result `json:"results"`
	Topics  []Topic  `json:"topics"`
}

var ranges = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
}

// Window resolves the publishedAt bounds. Explicit from/to win over range.
func Window(rangeName, from, to string, now time.Time) (*time.Time, *time.Time, error) {
	if from != "" || to != "" {
		var lo, hi *time.Time
		if from != "" {
			t, err := time.Parse(time.RFC3339, from)
			if err != nil {
				return nil, nil, apperr.BadRequest("from must be an RFC3339 timestamp")
			}
			lo = &t
		}
		if to != "" {
			t, err := time.Parse(time.RFC3339, to)
			if err != nil {
				return nil, nil, apperr.BadRequest("to must be an RFC3339 timestamp")
			}
			hi = &t
		}
		if lo != nil && hi != nil && hi.Before(*lo) {
			return nil, nil, apperr.BadRequest("to must not be before from")
		}
		return lo, hi, nil
	}
	switch r := strings.ToLower(strings.TrimSpace(rangeName)); r {
	case "", "all":
		return nil, nil, nil
	default:
		d, ok := ranges[r]
		if !ok {
			return nil, nil, apperr.BadRequest("range must be one of 24h, 7d, 30d, 1y, all")
		}
		lo := now.Add(-d)
		return &lo, nil, nil
	}
}

func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	edition := models.EditionOrDefault(req.Edition)
	q := strings.TrimSpace(req.Q)
	if len([]rune(q)) > MaxQueryLen {
		metrics.SearchQueries.WithLabelValues(string(edition), "invalid").Inc()
		return nil, apperr.BadRequest("query too long")
	}
	tokens := Tokenize(q)
	if len(tokens) == 0 {
		metrics.SearchQueries.WithLabelValues(string(edition), "invalid").Inc()
		return nil, apperr.BadRequest("query has no searchable words")
	}
	var lang models.Language
	if strings.TrimSpace(req.Lang) != "" {
		l, ok := models.ParseLanguage(req.Lang)
		if !ok {
			return nil, apperr.BadRequest("unknown language")
		}
		lang = l
	}
	now := s.now().UTC()
	from, to, err := Window(req.Range, req.From, req.To, now)
	if err != nil {
		return nil, err
	}

	f := posts.SearchFilter{Edition: edition, Language: lang, SectionID: req.Section, From: from, To: to, Tokens: tokens}
	var (
		candidates []*models.Post
		names      = map[string]string{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		candidates, err = s.posts.Candidates(gctx, f)
		return err
	})
	if s.sections != nil {
		g.Go(func() error {
			secs, err := s.sections.List(gctx, sections.Filter{Edition: edition})
			if err != nil {
				return err
			}
			for _, sec := range secs {
				names[sec.ID] = sec.Name
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperr.From(err)
	}

	ranked := Rank(candidates, tokens, phrase(q), now)
	p := req.Page.Normalize()
	lo, hi := pagination.Window(p, len(ranked))
	result := "hit"
	if len(ranked) == 0 {
		result = "empty"
	}
	metrics.SearchQueries.WithLabelValues(string(edition), result).Inc()
	return &Response{
		Query:   q,
		Tokens:  tokens,
		Total:   len(ranked),
		Page:    p.Page,
		Limit:   p.Limit,
		Results: ranked[lo:hi],
		Topics:  Topics(ranked, names, MaxTopics),
	}, nil
}
