package sections

import (
	"context"
	"net/http"
	"testing"

	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePosts map[string]*models.Post

func (f fakePosts) GetMany(_ context.Context, ids []string) (map[string]*models.Post, error) {
	out := map[string]*models.Post{}
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type fakePages map[string]models.Edition

func (f fakePages) PageEdition(_ context.Context, id string) (models.Edition, error) {
	e, ok := f[id]
	if !ok {
		return "", apperr.NotFound("page")
	}
	return e, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	posts := fakePosts{}
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		posts[id] = &models.Post{ID: id, Edition: models.EditionGlobal}
	}
	posts["bd1"] = &models.Post{ID: "bd1", Edition: models.EditionBangladesh}
	s := NewService(NewMemoryRepository(), posts)
	s.SetPageLookup(fakePages{"home": models.EditionGlobal, "bd-home": models.EditionBangladesh})
	return s
}

func TestCreate_DefaultsAndPositions(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	a, err := s.Create(ctx, Input{Name: "Top Stories", PageID: "home"})
	require.NoError(t, err)
	assert.Equal(t, "top-stories", a.Slug)
	assert.Equal(t, models.LayoutGrid, a.Layout)
	assert.Equal(t, 0, a.Position)
	assert.NotNil(t, a.PostIDs)

	b, err := s.Create(ctx, Input{Name: "Sports", PageID: "home", Layout: "carousel"})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Position)

	_, err = s.Create(ctx, Input{Name: "Bad", Layout: "masonry", Limit: 500})
	ae := apperr.From(err)
	require.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Contains(t, ae.Payload, "layout")
	assert.Contains(t, ae.Payload, "limit")

	_, err = s.Create(ctx, Input{Name: "Cross", PageID: "bd-home"})
	assert.True(t, apperr.Is(err, http.StatusBadRequest))
	_, err = s.Create(ctx, Input{Name: "Orphan", PageID: "nope"})
	assert.True(t, apperr.Is(err, http.StatusNotFound))
}

func TestAddMoveRemovePosts(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	sec, err := s.Create(ctx, Input{Name: "Front"})
	require.NoError(t, err)

	for _, id := range []string{"p1", "p2", "p3"} {
		sec, err = s.AddPost(ctx, sec.ID, id, -1)
		require.NoError(t, err)
	}
	sec, err = s.AddPost(ctx, sec.ID, "p4", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"p4", "p1", "p2", "p3"}, sec.PostIDs)

	_, err = s.AddPost(ctx, sec.ID, "p1", 0)
	assert.True(t, apperr.Is(err, http.StatusConflict))
	_, err = s.AddPost(ctx, sec.ID, "missing", 0)
	assert.True(t, apperr.Is(err, http.StatusNotFound))
	_, err = s.AddPost(ctx, sec.ID, "bd1", 0)
	assert.True(t, apperr.Is(err, http.StatusBadRequest))

	sec, err = s.MovePost(ctx, sec.ID, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, sec.PostIDs)
	_, err = s.MovePost(ctx, sec.ID, 0, 4)
	assert.True(t, apperr.Is(err, http.StatusBadRequest))

	sec, err = s.RemovePost(ctx, sec.ID, "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3", "p4"}, sec.PostIDs)
	_, err = s.RemovePost(ctx, sec.ID, "p2")
	assert.True(t, apperr.Is(err, http.StatusNotFound))

	stored, err := s.Get(ctx, sec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3", "p4"}, stored.PostIDs)
}

func TestReorderPosts(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	sec, err := s.Create(ctx, Input{Name: "Front"})
	require.NoError(t, err)
	for _, id := range []string{"p1", "p2", "p3"} {
		_, err = s.AddPost(ctx, sec.ID, id, -1)
		require.NoError(t, err)
	}
	got, err := s.ReorderPosts(ctx, sec.ID, []string{"p3", "p1", "p2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p1", "p2"}, got.PostIDs)

	_, err = s.ReorderPosts(ctx, sec.ID, []string{"p3", "p1"})
	assert.True(t, apperr.Is(err, http.StatusBadRequest))
	_, err = s.ReorderPosts(ctx, sec.ID, []string{"p3", "p1", "p4"})
	assert.True(t, apperr.Is(err, http.StatusBadRequest))
}

func TestReorderSectionsAndDelete(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	var ids []string
	for _, name := range []string{"A", "B", "C"} {
		sec, err := s.Create(ctx, Input{Name: name, PageID: "home"})
		require.NoError(t, err)
		ids = append(ids, sec.ID)
	}
	list, err := s.ReorderSections(ctx, "home", []string{ids[2], ids[0], ids[1]})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "C", list[0].Name)
	assert.Equal(t, "A", list[1].Name)
	assert.Equal(t, 2, list[2].Position)

	_, err = s.ReorderSections(ctx, "home", []string{ids[0], ids[1]})
	assert.True(t, apperr.Is(err, http.StatusBadRequest))

	require.NoError(t, s.Delete(ctx, ids[2]))
	list, err = s.List(ctx, Filter{PageID: "home"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 0, list[0].Position)
	assert.Equal(t, "A", list[0].Name)
	assert.Equal(t, 1, list[1].Position)
}

func TestHighlightAndLinker(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	sec, err := s.Create(ctx, Input{Name: "Front"})
	require.NoError(t, err)

	got, err := s.SetHighlight(ctx, sec.ID, true)
	require.NoError(t, err)
	assert.True(t, got.Highlight)

	require.NoError(t, s.Attach(ctx, sec.ID, "p1", models.EditionGlobal))
	require.NoError(t, s.Attach(ctx, sec.ID, "p1", models.EditionGlobal))
	assert.True(t, apperr.Is(s.Attach(ctx, sec.ID, "bd1", models.EditionBangladesh), http.StatusBadRequest))
	assert.True(t, apperr.Is(s.Attach(ctx, "missing", "p1", models.EditionGlobal), http.StatusNotFound))

	got, err = s.Get(ctx, sec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, got.PostIDs)

	require.NoError(t, s.DetachAll(ctx, "p1"))
	require.NoError(t, s.Detach(ctx, "missing", "p1"))
	got, err = s.Get(ctx, sec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PostIDs)
}
