package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/sessions"
)

// Context keys set by Authenticate.
const (
	ContextPrincipal   = "principal"
	ContextClaims      = "claims"
	ContextAccessToken = "access_token"
	ContextSession     = "session"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// PrincipalLoader resolves the current role and status of an author id.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, id string) (*models.Principal, error)
}

// SessionValidator looks up the session behind a cookie value.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*sessions.Session, error)
}

type AuthOptions struct {
	Verifier   Verifier
	Sessions   SessionValidator
	Loader     PrincipalLoader
	Blacklist  *sessions.Blacklist
	CookieName string
}

func abortAuth(c *gin.Context, err error) {
	ae := apperr.From(err)
	c.AbortWithStatusJSON(ae.Status, gin.H{"error": ae.Message})
}

// Authenticate resolves the caller from `Authorization: Bearer <jwt>` or the
// session cookie. Anonymous requests pass through; presented but invalid
// credentials are rejected with 401. Use RequireAuth to demand a principal.
func Authenticate(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var sub string

		if auth := c.GetHeader("Authorization"); auth != "" {
			// Expect 'Bearer <token>'
			var token string
			if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
				abortAuth(c, apperr.Unauthorized("invalid Authorization header"))
				return
			}
			revoked, err := opts.Blacklist.Contains(ctx, token)
			if err != nil {
				abortAuth(c, apperr.Unavailable("token check failed"))
				return
			}
			if revoked {
				abortAuth(c, apperr.Unauthorized("token revoked"))
				return
			}
			if opts.Verifier == nil {
				abortAuth(c, apperr.Unauthorized("bearer tokens not accepted"))
				return
			}
			verified, err := opts.Verifier.Verify(ctx, token)
			if err != nil {
				abortAuth(c, apperr.Unauthorized("invalid token"))
				return
			}
			var claims map[string]interface{}
			if err := verified.Claims(&claims); err != nil {
				abortAuth(c, apperr.Unauthorized("failed to parse claims"))
				return
			}
			sub, _ = claims["sub"].(string)
			c.Set(ContextClaims, claims)
			c.Set(ContextAccessToken, token)
		} else if opts.Sessions != nil && opts.CookieName != "" {
			raw, err := c.Cookie(opts.CookieName)
			if err != nil || raw == "" {
				c.Next()
				return
			}
			sess, err := opts.Sessions.Validate(ctx, raw)
			if err != nil {
				abortAuth(c, apperr.Unavailable("session lookup failed"))
				return
			}
			if sess == nil {
				abortAuth(c, apperr.Unauthorized("session expired"))
				return
			}
			sub = sess.Sub
			c.Set(ContextSession, sess)
		} else {
			c.Next()
			return
		}

		if sub == "" {
			abortAuth(c, apperr.Unauthorized("credentials carry no subject"))
			return
		}
		p, err := opts.Loader.LoadPrincipal(ctx, sub)
		if err != nil {
			if apperr.Is(err, http.StatusNotFound) {
				err = apperr.Unauthorized("unknown author")
			}
			abortAuth(c, err)
			return
		}
		c.Set(ContextPrincipal, p)
		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal or nil.
func PrincipalFrom(c *gin.Context) *models.Principal {
	if v, ok := c.Get(ContextPrincipal); ok {
		if p, ok := v.(*models.Principal); ok {
			return p
		}
	}
	return nil
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if PrincipalFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireRole admits only principals holding one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// subjectKey picks the rate-limit key: authenticated author when known,
// otherwise the client IP.
func subjectKey(c *gin.Context) string {
	if p := PrincipalFrom(c); p != nil {
		return "sub:" + p.ID
	}
	if v, ok := c.Get(ContextClaims); ok {
		if cm, ok2 := v.(map[string]interface{}); ok2 {
			if sub, ok3 := cm["sub"].(string); ok3 && sub != "" {
				return "sub:" + sub
			}
		}
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
