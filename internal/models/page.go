package models

import "time"

// Page is a composed front (home, sports, ...) per edition.
type Page struct {
	ID          string    `bson:"_id" json:"id"`
	Slug        string    `bson:"slug" json:"slug"`
	Title       string    `bson:"title" json:"title"`
	Edition     Edition   `bson:"edition" json:"edition"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ComposedSection is a section with its rendered posts.
type ComposedSection struct {
	Section   Section    `json:"section"`
	Highlight *PostCard  `json:"highlight,omitempty"`
	Posts     []PostCard `json:"posts"`
}

// ComposedPage is the nested document served to page renderers.
type ComposedPage struct {
	Page     Page              `json:"page"`
	Sections []ComposedSection `json:"sections"`
}
