package models

import "time"

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostArchived  PostStatus = "archived"
)

// Post is a blog/news article document.
type Post struct {
	ID          string     `bson:"_id" json:"id"`
	Slug        string     `bson:"slug" json:"slug"`
	Title       string     `bson:"title" json:"title"`
	Summary     string     `bson:"summary,omitempty" json:"summary,omitempty"`
	Content     string     `bson:"content" json:"content"`
	CoverImage  string     `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	Tags        []string   `bson:"tags" json:"tags"`
	SectionID   string     `bson:"sectionId,omitempty" json:"sectionId,omitempty"`
	AuthorID    string     `bson:"authorId" json:"authorId"`
	Edition     Edition    `bson:"edition" json:"edition"`
	Language    Language   `bson:"language" json:"language"`
	Status      PostStatus `bson:"status" json:"status"`
	PublishedAt *time.Time `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	Views       int64      `bson:"views" json:"views"`
	// SearchText is the folded title/summary/tags/content used for regex search.
	SearchText string    `bson:"searchText" json:"-"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Published reports whether the post is publicly visible.
func (p *Post) Published() bool { return p.Status == PostPublished }

// PostCard is a post joined with its author's public profile, as rendered on pages.
type PostCard struct {
	ID          string         `bson:"_id" json:"id"`
	Slug        string         `bson:"slug" json:"slug"`
	Title       string         `bson:"title" json:"title"`
	Summary     string         `bson:"summary,omitempty" json:"summary,omitempty"`
	CoverImage  string         `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	Tags        []string       `bson:"tags" json:"tags"`
	Language    Language       `bson:"language" json:"language"`
	PublishedAt *time.Time     `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	Author      *AuthorProfile `bson:"author,omitempty" json:"author,omitempty"`
}

// CardOf builds the card for p and its (possibly nil) author.
func CardOf(p *Post, a *Author) PostCard {
	card := PostCard{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Summary:     p.Summary,
		CoverImage:  p.CoverImage,
		Tags:        p.Tags,
		Language:    p.Language,
		PublishedAt: p.PublishedAt,
	}
	if a != nil {
		prof := a.Profile()
		card.Author = &prof
	}
	return card
}
