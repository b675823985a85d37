package newsletter

import (
	"context"
	"net/http"
	"testing"

	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/events"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() (*Service, *events.MemoryPublisher) {
	pub := &events.MemoryPublisher{}
	return NewService(NewMemoryRepository(), pub), pub
}

func TestSubscribeLifecycle(t *testing.T) {
	s, pub := newService()
	ctx := context.Background()

	sub, outcome, err := s.Subscribe(ctx, SubscribeInput{Email: " Reader@Example.com ", Edition: "bangladesh", Topics: []string{"Cricket", "cricket", "Politics"}})
	require.NoError(t, err)
	assert.Equal(t, Created, outcome)
	assert.Equal(t, "reader@example.com", sub.Email)
	assert.Equal(t, models.EditionBangladesh, sub.Edition)
	assert.Equal(t, []string{"cricket", "politics"}, sub.Topics)
	assert.Equal(t, models.SubscriberPending, sub.Status)
	require.NotEmpty(t, sub.Token)
	token := sub.Token

	again, outcome, err := s.Subscribe(ctx, SubscribeInput{Email: "reader@example.com", Edition: "bd"})
	require.NoError(t, err)
	assert.Equal(t, Reissued, outcome)
	assert.Equal(t, token, again.Token)
	assert.Equal(t, []string{"cricket", "politics"}, again.Topics)

	confirmed, err := s.Confirm(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriberActive, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	_, outcome, err = s.Subscribe(ctx, SubscribeInput{Email: "reader@example.com", Edition: "bd"})
	require.NoError(t, err)
	assert.Equal(t, AlreadySubscribed, outcome)

	left, err := s.Unsubscribe(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriberUnsubscribed, left.Status)

	_, err = s.Confirm(ctx, token)
	assert.True(t, apperr.Is(err, http.StatusConflict))

	back, outcome, err := s.Subscribe(ctx, SubscribeInput{Email: "reader@example.com"})
	require.NoError(t, err)
	assert.Equal(t, Resubscribed, outcome)
	assert.Equal(t, models.SubscriberPending, back.Status)
	assert.Nil(t, back.ConfirmedAt)

	reconfirmed, err := s.Confirm(ctx, back.Token)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriberActive, reconfirmed.Status)

	evs := pub.Events()
	require.Len(t, evs, 3, "created, reissued and resubscribed emit; already subscribed does not")
	for _, e := range evs {
		assert.Equal(t, events.NewsletterSubscribed, e.Type)
		assert.Equal(t, sub.ID, e.Key)
	}
}

func TestSubscribeValidation(t *testing.T) {
	s, _ := newService()
	_, _, err := s.Subscribe(context.Background(), SubscribeInput{Email: "nope", Edition: "mars"})
	ae := apperr.From(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, map[string]string{"email": "must be a valid email address", "edition": "unknown edition"}, ae.Payload)
}

func TestUnknownToken(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()
	_, err := s.Confirm(ctx, "missing")
	assert.True(t, apperr.Is(err, http.StatusNotFound))
	_, err = s.Unsubscribe(ctx, "")
	assert.True(t, apperr.Is(err, http.StatusNotFound))
}

func TestListAndCount(t *testing.T) {
	s, _ := newService()
	ctx := context.Background()
	for _, e := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, _, err := s.Subscribe(ctx, SubscribeInput{Email: e})
		require.NoError(t, err)
	}
	sub, _, err := s.Subscribe(ctx, SubscribeInput{Email: "d@example.com", Edition: "bd"})
	require.NoError(t, err)
	_, err = s.Confirm(ctx, sub.Token)
	require.NoError(t, err)

	n, err := s.Count(ctx, Filter{Status: models.SubscriberPending})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = s.Count(ctx, Filter{Edition: models.EditionBangladesh, Status: models.SubscriberActive})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, total, err := s.List(ctx, Filter{}, pagination.Params{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Len(t, list, 1)
}
