package models

import "time"

type SectionLayout string

const (
	LayoutGrid     SectionLayout = "grid"
	LayoutList     SectionLayout = "list"
	LayoutCarousel SectionLayout = "carousel"
	LayoutHero     SectionLayout = "hero"
)

// Section groups posts, in manual order, on a page.
type Section struct {
	ID        string        `bson:"_id" json:"id"`
	Name      string        `bson:"name" json:"name"`
	Slug      string        `bson:"slug" json:"slug"`
	Edition   Edition       `bson:"edition" json:"edition"`
	PageID    string        `bson:"pageId,omitempty" json:"pageId,omitempty"`
	Position  int           `bson:"position" json:"position"`
	Layout    SectionLayout `bson:"layout" json:"layout"`
	Highlight bool          `bson:"highlight" json:"highlight"`
	PostIDs   []string      `bson:"postIds" json:"postIds"`
	// Limit caps rendered posts; 0 renders all.
	Limit     int       `bson:"limit" json:"limit"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IndexOf returns the position of postID in the section or -1.
func (s *Section) IndexOf(postID string) int {
	for i, id := range s.PostIDs {
		if id == postID {
			return i
		}
	}
	return -1
}
