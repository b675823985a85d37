package posts

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/events"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLinker records section membership like the sections service does.
type fakeLinker struct {
	mu       sync.Mutex
	sections map[string][]string
	editions map[string]models.Edition
}

func newFakeLinker() *fakeLinker {
	return &fakeLinker{
		sections: map[string][]string{"front": nil, "sports": nil, "bd-front": nil},
		editions: map[string]models.Edition{"front": models.EditionGlobal, "sports": models.EditionGlobal, "bd-front": models.EditionBangladesh},
	}
}

func (f *fakeLinker) Attach(_ context.Context, sectionID, postID string, edition models.Edition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ed, ok := f.editions[sectionID]
	if !ok {
		return apperr.NotFound("section")
	}
	if ed != edition {
		return apperr.BadRequest("section belongs to another edition")
	}
	f.sections[sectionID] = append(f.sections[sectionID], postID)
	return nil
}

func (f *fakeLinker) Detach(_ context.Context, sectionID, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.sections[sectionID][:0]
	for _, id := range f.sections[sectionID] {
		if id != postID {
			ids = append(ids, id)
		}
	}
	f.sections[sectionID] = ids
	return nil
}

func (f *fakeLinker) DetachAll(ctx context.Context, postID string) error {
	for id := range f.editions {
		_ = f.Detach(ctx, id, postID)
	}
	return nil
}

func (f *fakeLinker) ids(section string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sections[section]...)
}

var (
	approved = &models.Principal{ID: "author-1", Role: models.RoleAuthor, Status: models.AuthorApproved}
	pending  = &models.Principal{ID: "author-2", Role: models.RoleAuthor, Status: models.AuthorPending}
	editor   = &models.Principal{ID: "editor-1", Role: models.RoleEditor, Status: models.AuthorApproved}
)

func newTestService(t *testing.T) (*Service, *fakeLinker, *events.MemoryPublisher) {
	t.Helper()
	linker := newFakeLinker()
	pub := &events.MemoryPublisher{}
	return NewService(NewMemoryRepository(), linker, pub), linker, pub
}

func TestCreate_DefaultsAndSlug(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	p, err := s.Create(ctx, approved, Input{Title: "Café Opens Downtown", Content: "body", Tags: []string{" Food ", "food", "City"}, Edition: "intl"})
	require.NoError(t, err)
	assert.Equal(t, "cafe-opens-downtown", p.Slug)
	assert.Equal(t, models.PostDraft, p.Status)
	assert.Equal(t, models.EditionGlobal, p.Edition)
	assert.Equal(t, models.LangEnglish, p.Language)
	assert.Equal(t, []string{"food", "city"}, p.Tags)
	assert.Equal(t, "author-1", p.AuthorID)
	assert.Contains(t, p.SearchText, "cafe opens downtown")

	second, err := s.Create(ctx, approved, Input{Title: "Cafe opens downtown!", Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "cafe-opens-downtown-2", second.Slug)
	third, err := s.Create(ctx, approved, Input{Title: "Cafe opens downtown", Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "cafe-opens-downtown-3", third.Slug)

	// same slug is free in another edition
	bd, err := s.Create(ctx, approved, Input{Title: "Cafe opens downtown", Content: "x", Edition: "dhaka"})
	require.NoError(t, err)
	assert.Equal(t, "cafe-opens-downtown", bd.Slug)
	assert.Equal(t, models.LangBangla, bd.Language)
}

func TestCreate_NonLatinTitleGetsFallbackSlug(t *testing.T) {
	s, _, _ := newTestService(t)
	p, err := s.Create(context.Background(), approved, Input{Title: "ঢাকায় বৃষ্টি", Content: "x", Edition: "bd"})
	require.NoError(t, err)
	assert.Regexp(t, `^post-[0-9a-f]{12}$`, p.Slug)
}

func TestCreate_Validation(t *testing.T) {
	s, _, _ := newTestService(t)
	_, err := s.Create(context.Background(), approved, Input{Title: "", Content: "", Edition: "mars", Language: "klingon"})
	ae := apperr.From(err)
	require.Equal(t, http.StatusBadRequest, ae.Status)
	fields := ae.Payload.(map[string]string)
	for _, f := range []string{"title", "content", "edition", "language"} {
		assert.Contains(t, fields, f)
	}

	_, err = s.Create(context.Background(), nil, Input{Title: "t", Content: "c"})
	assert.True(t, apperr.Is(err, http.StatusUnauthorized))
}

func TestCreate_AttachesToSection(t *testing.T) {
	s, linker, _ := newTestService(t)
	ctx := context.Background()
	p, err := s.Create(ctx, approved, Input{Title: "Goal", Content: "x", SectionID: "sports"})
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, linker.ids("sports"))

	// wrong edition section: post is not kept
	_, err = s.Create(ctx, approved, Input{Title: "Goal two", Content: "x", SectionID: "bd-front"})
	assert.True(t, apperr.Is(err, http.StatusBadRequest))
	list, total, err := s.List(ctx, editor, Filter{}, pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}

func TestUpdate_MovesBetweenSections(t *testing.T) {
	s, linker, _ := newTestService(t)
	ctx := context.Background()
	p, err := s.Create(ctx, approved, Input{Title: "Match", Content: "x", SectionID: "sports"})
	require.NoError(t, err)

	front := "front"
	title := "Match report"
	got, err := s.Update(ctx, approved, p.ID, Patch{SectionID: &front, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "front", got.SectionID)
	assert.Equal(t, "match", got.Slug, "slug is stable across title edits")
	assert.Empty(t, linker.ids("sports"))
	assert.Equal(t, []string{p.ID}, linker.ids("front"))

	_, err = s.Update(ctx, pending, p.ID, Patch{Title: &title})
	assert.True(t, apperr.Is(err, http.StatusNotFound), "drafts of other authors are invisible")
}

func TestPublish_Gating(t *testing.T) {
	s, _, pub := newTestService(t)
	ctx := context.Background()
	draft, err := s.Create(ctx, pending, Input{Title: "Pending work", Content: "x"})
	require.NoError(t, err)

	_, err = s.Publish(ctx, pending, draft.ID)
	assert.True(t, apperr.Is(err, http.StatusForbidden))
	assert.Empty(t, pub.Events())

	got, err := s.Publish(ctx, editor, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostPublished, got.Status)
	require.NotNil(t, got.PublishedAt)
	first := *got.PublishedAt

	evs := pub.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.PostPublished, evs[0].Type)
	assert.Equal(t, draft.ID, evs[0].Key)

	_, err = s.Unpublish(ctx, editor, draft.ID)
	require.NoError(t, err)
	again, err := s.Publish(ctx, editor, draft.ID)
	require.NoError(t, err)
	assert.True(t, first.Equal(*again.PublishedAt), "publishedAt is kept from the first publish")
}

func TestPublish_ApprovedOwner(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	p, err := s.Create(ctx, approved, Input{Title: "Mine", Content: "x"})
	require.NoError(t, err)
	other := &models.Principal{ID: "author-3", Role: models.RoleAuthor, Status: models.AuthorApproved}
	_, err = s.Publish(ctx, other, p.ID)
	assert.True(t, apperr.Is(err, http.StatusNotFound))

	got, err := s.Publish(ctx, approved, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Published())

	// published posts of others are visible but not editable
	_, err = s.Archive(ctx, other, p.ID)
	assert.True(t, apperr.Is(err, http.StatusForbidden))
}

func TestGetPublished_CountsViewsAndHidesDrafts(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	p, err := s.Create(ctx, approved, Input{Title: "Read me", Content: "x"})
	require.NoError(t, err)

	_, err = s.GetPublished(ctx, models.EditionGlobal, "read-me")
	assert.True(t, apperr.Is(err, http.StatusNotFound))

	_, err = s.Publish(ctx, approved, p.ID)
	require.NoError(t, err)
	got, err := s.GetPublished(ctx, models.EditionGlobal, "read-me")
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Views)
	got, err = s.GetPublished(ctx, models.EditionGlobal, "read-me")
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.Views)

	_, err = s.Get(ctx, nil, p.ID)
	require.NoError(t, err)
}

func TestList_Visibility(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	mine, err := s.Create(ctx, approved, Input{Title: "Draft A", Content: "x"})
	require.NoError(t, err)
	_, err = s.Create(ctx, pending, Input{Title: "Draft B", Content: "x"})
	require.NoError(t, err)
	pubd, err := s.Create(ctx, approved, Input{Title: "Live", Content: "x", Tags: []string{"politics"}})
	require.NoError(t, err)
	_, err = s.Publish(ctx, approved, pubd.ID)
	require.NoError(t, err)
	page := pagination.Params{Page: 1, Limit: 20}

	list, total, err := s.List(ctx, nil, Filter{Status: models.PostDraft}, page)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, pubd.ID, list[0].ID)

	list, _, err = s.List(ctx, approved, Filter{Status: models.PostDraft}, page)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, total, err = s.List(ctx, editor, Filter{Status: models.PostDraft}, page)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	list, _, err = s.List(ctx, nil, Filter{Tag: "politics"}, page)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestDelete_DetachesEverywhere(t *testing.T) {
	s, linker, _ := newTestService(t)
	ctx := context.Background()
	p, err := s.Create(ctx, approved, Input{Title: "Gone", Content: "x", SectionID: "front"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, approved, p.ID))
	assert.Empty(t, linker.ids("front"))
	_, err = s.Get(ctx, editor, p.ID)
	assert.True(t, apperr.Is(err, http.StatusNotFound))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"world cup", "sports"}, NormalizeTags([]string{"World  Cup", "", "sports", "SPORTS"}))
}

func TestBySlug_HidesDraftsFromOthers(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := s.Create(ctx, approved, Input{Title: "Quiet draft", Content: "x"})
	require.NoError(t, err)

	got, err := s.BySlug(ctx, approved, models.EditionGlobal, "quiet-draft")
	require.NoError(t, err)
	assert.Equal(t, models.PostDraft, got.Status)
	_, err = s.BySlug(ctx, editor, models.EditionGlobal, "quiet-draft")
	require.NoError(t, err)
	_, err = s.BySlug(ctx, pending, models.EditionGlobal, "quiet-draft")
	assert.True(t, apperr.Is(err, http.StatusNotFound))
	_, err = s.BySlug(ctx, editor, models.EditionBangladesh, "quiet-draft")
	assert.True(t, apperr.Is(err, http.StatusNotFound))
	assert.EqualValues(t, 0, got.Views)
}
