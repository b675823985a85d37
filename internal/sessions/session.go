package sessions

import (
	"time"

	"github.com/newsdesk/newsdesk/internal/models"
)

// Session is a server-side login session referenced by the session cookie.
// Mongo expires documents through the TTL index on expiresAt.
type Session struct {
	ID        string      `bson:"_id,omitempty" json:"id"`
	Token     string      `bson:"token" json:"token"`
	Sub       string      `bson:"sub" json:"sub"`
	Role      models.Role `bson:"role" json:"role"`
	UserAgent string      `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	ExpiresAt time.Time   `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time   `bson:"createdAt" json:"createdAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
