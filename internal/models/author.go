package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleEditor || r == RoleAuthor
}

type AuthorStatus string

const (
	AuthorPending   AuthorStatus = "pending"
	AuthorApproved  AuthorStatus = "approved"
	AuthorRejected  AuthorStatus = "rejected"
	AuthorSuspended AuthorStatus = "suspended"
)

// Author is a content-contributor account subject to approval before it may publish.
type Author struct {
	ID           string       `bson:"_id" json:"id"`
	Name         string       `bson:"name" json:"name"`
	Email        string       `bson:"email" json:"email"`
	PasswordHash string       `bson:"passwordHash,omitempty" json:"-"`
	Bio          string       `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURL    string       `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
	Role         Role         `bson:"role" json:"role"`
	Status       AuthorStatus `bson:"status" json:"status"`
	Provider     string       `bson:"provider,omitempty" json:"provider,omitempty"`
	ProviderSub  string       `bson:"providerSub,omitempty" json:"-"`
	ReviewedBy   string       `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time   `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	ReviewNote   string       `bson:"reviewNote,omitempty" json:"reviewNote,omitempty"`
	CreatedAt    time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// CanPublish reports whether the author holds publishing rights.
func (a *Author) CanPublish() bool {
	return a.Status == AuthorApproved
}

// IsStaff reports editor or admin role.
func (a *Author) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleEditor
}

// AuthorProfile is the public subset of an author.
type AuthorProfile struct {
	ID        string `bson:"_id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Bio       string `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURL string `bson:"avatarUrl,omitempty" json:"avatarUrl,omitempty"`
}

func (a *Author) Profile() AuthorProfile {
	return AuthorProfile{ID: a.ID, Name: a.Name, Bio: a.Bio, AvatarURL: a.AvatarURL}
}

// Principal is the authenticated caller resolved by the auth middleware.
type Principal struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Role   Role         `json:"role"`
	Status AuthorStatus `json:"status"`
}

func (p *Principal) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

func (p *Principal) IsStaff() bool {
	return p != nil && (p.Role == RoleAdmin || p.Role == RoleEditor)
}

// CanPublish mirrors Author.CanPublish for the caller.
func (p *Principal) CanPublish() bool { return p != nil && p.Status == AuthorApproved }

// PrincipalOf builds the principal for a.
func PrincipalOf(a *Author) *Principal {
	return &Principal{ID: a.ID, Name: a.Name, Role: a.Role, Status: a.Status}
}
