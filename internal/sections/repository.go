package sections

import (
	"context"
	"errors"

	"github.com/newsdesk/newsdesk/internal/models"
)

var ErrNotFound = errors.New("section not found")

// Filter narrows List results; zero values match everything.
type Filter struct {
	Edition models.Edition
	PageID  string
	// Unassigned selects sections that belong to no page.
	Unassigned bool
}

// Repository defines persistence operations for sections. List returns
// sections ordered by position, then name.
type Repository interface {
	Create(ctx context.Context, s *models.Section) error
	Get(ctx context.Context, id string) (*models.Section, error)
	List(ctx context.Context, f Filter) ([]*models.Section, error)
	Update(ctx context.Context, s *models.Section) error
	Delete(ctx context.Context, id string) error
	// AppendPost adds postID at the end unless already present.
	AppendPost(ctx context.Context, sectionID, postID string) error
	PullPost(ctx context.Context, sectionID, postID string) error
	// PullPostEverywhere removes postID from every section.
	PullPostEverywhere(ctx context.Context, postID string) error
	// SetPositions writes position i to ids[i].
	SetPositions(ctx context.Context, ids []string) error
	// DetachPage clears pageId on every section of pageID.
	DetachPage(ctx context.Context, pageID string) error
}
