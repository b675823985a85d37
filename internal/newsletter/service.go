// Package newsletter manages double opt-in newsletter subscriptions.
package newsletter

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/events"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/validate"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/newsdesk/newsdesk/pkg/pagination"
	"github.com/newsdesk/newsdesk/pkg/slug"
)

const MaxTopics = 20

// Outcome tells the caller what Subscribe did.
type Outcome string

const (
	Created           Outcome = "created"
	Reissued          Outcome = "reissued"
	Resubscribed      Outcome = "resubscribed"
	AlreadySubscribed Outcome = "already_subscribed"
)

type Service struct {
	repo Repository
	pub  events.Publisher
}

func NewService(r Repository, pub events.Publisher) *Service {
	return &Service{repo: r, pub: pub}
}

type SubscribeInput struct {
	Email   string   `json:"email"`
	Edition string   `json:"edition"`
	Topics  []string `json:"topics"`
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("subscription")
	case errors.Is(err, ErrDuplicate):
		return apperr.Conflict("already subscribed")
	}
	return apperr.Internal(err)
}

func normalizeTopics(in []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, t := range in {
		t = slug.From(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Subscribe registers email for the edition. Repeated calls are idempotent:
// a pending subscriber gets the same token back, an active one is left alone.
func (s *Service) Subscribe(ctx context.Context, in SubscribeInput) (*models.Subscriber, Outcome, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	topics := normalizeTopics(in.Topics)
	v := validate.New()
	v.Required("email", email).Email("email", email)
	v.Check(len(topics) <= MaxTopics, "topics", "too many topics")
	edition := models.EditionGlobal
	if strings.TrimSpace(in.Edition) != "" {
		e, ok := models.ParseEdition(in.Edition)
		v.Check(ok, "edition", "unknown edition")
		edition = e
	}
	if err := v.Err("invalid subscription"); err != nil {
		return nil, "", err
	}

	sub, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		sub = &models.Subscriber{
			Email:   email,
			Edition: edition,
			Topics:  topics,
			Status:  models.SubscriberPending,
			Token:   uuid.NewString(),
		}
		if err := s.repo.Create(ctx, sub); err != nil {
			return nil, "", mapErr(err)
		}
		s.emit(ctx, sub)
		return sub, Created, nil
	case err != nil:
		return nil, "", apperr.Internal(err)
	}

	if sub.Status == models.SubscriberActive {
		return sub, AlreadySubscribed, nil
	}
	outcome := Reissued
	if sub.Status == models.SubscriberUnsubscribed {
		outcome = Resubscribed
		sub.Status = models.SubscriberPending
		sub.ConfirmedAt = nil
	}
	sub.Edition = edition
	if len(topics) > 0 {
		sub.Topics = topics
	}
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, "", mapErr(err)
	}
	s.emit(ctx, sub)
	return sub, outcome, nil
}

func (s *Service) emit(ctx context.Context, sub *models.Subscriber) {
	events.Emit(ctx, s.pub, events.New(events.NewsletterSubscribed, sub.ID, map[string]interface{}{
		"email":   sub.Email,
		"edition": sub.Edition,
		"topics":  sub.Topics,
		"token":   sub.Token,
	}))
}

func (s *Service) byToken(ctx context.Context, token string) (*models.Subscriber, error) {
	if strings.TrimSpace(token) == "" {
		return nil, apperr.NotFound("subscription")
	}
	sub, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, mapErr(err)
	}
	return sub, nil
}

// Confirm activates the subscription behind token.
func (s *Service) Confirm(ctx context.Context, token string) (*models.Subscriber, error) {
	sub, err := s.byToken(ctx, token)
	if err != nil {
		return nil, err
	}
	switch sub.Status {
	case models.SubscriberActive:
		return sub, nil
	case models.SubscriberUnsubscribed:
		return nil, apperr.Conflict("subscription was cancelled; subscribe again to receive a new confirmation")
	}
	now := time.Now().UTC()
	sub.Status = models.SubscriberActive
	sub.ConfirmedAt = &now
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, mapErr(err)
	}
	logger.Infof("newsletter subscription confirmed id=%s edition=%s", sub.ID, sub.Edition)
	return sub, nil
}

// Unsubscribe keeps the token so a repeated unsubscribe link stays valid.
// Confirming it again requires a new Subscribe.
func (s *Service) Unsubscribe(ctx context.Context, token string) (*models.Subscriber, error) {
	sub, err := s.byToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if sub.Status == models.SubscriberUnsubscribed {
		return sub, nil
	}
	sub.Status = models.SubscriberUnsubscribed
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, mapErr(err)
	}
	return sub, nil
}

func (s *Service) List(ctx context.Context, f Filter, p pagination.Params) ([]*models.Subscriber, int, error) {
	list, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return list, total, nil
}

func (s *Service) Count(ctx context.Context, f Filter) (int, error) {
	n, err := s.repo.Count(ctx, f)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return n, nil
}
