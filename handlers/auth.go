package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/apperr"
	"github.com/newsdesk/newsdesk/internal/authors"
	"github.com/newsdesk/newsdesk/internal/config"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/oidc"
	"github.com/newsdesk/newsdesk/internal/sessions"
	"github.com/newsdesk/newsdesk/internal/tokens"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/newsdesk/newsdesk/pkg/middleware"
)

const (
	stateCookie    = "newsdesk_oauth_state"
	nonceCookie    = "newsdesk_oauth_nonce"
	oauthCookieTTL = 10 * time.Minute
	defaultAccess  = 15 * time.Minute
)

// LoginRequest is the password login body.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler serves password and OAuth login, refresh and logout.
type AuthHandler struct {
	cfg       *config.Config
	authors   *authors.Service
	sessions  *sessions.Service
	blacklist *sessions.Blacklist
	providers *oidc.Registry
}

func NewAuthHandler(cfg *config.Config, a *authors.Service, s *sessions.Service, bl *sessions.Blacklist, providers *oidc.Registry) *AuthHandler {
	if providers == nil {
		providers = oidc.NewRegistry()
	}
	return &AuthHandler{cfg: cfg, authors: a, sessions: s, blacklist: bl, providers: providers}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
	a.GET("/me", middleware.RequireAuth(), h.Me)
	a.GET("/providers", h.Providers)
	a.GET("/oauth/:provider/login", h.OAuthLogin)
	a.GET("/oauth/:provider/callback", h.OAuthCallback)
}

func (h *AuthHandler) accessTTL() time.Duration {
	if h.cfg.JWT.AccessTokenTTL > 0 {
		return h.cfg.JWT.AccessTokenTTL
	}
	return defaultAccess
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", h.cfg.Session.Domain, h.cfg.Session.Secure, true)
}

// startSession creates the session cookie and, when a JWT secret is set, a
// short-lived access token for API clients.
func (h *AuthHandler) startSession(c *gin.Context, a *models.Author) (gin.H, error) {
	p := models.PrincipalOf(a)
	sess, err := h.sessions.Create(c.Request.Context(), p, c.Request.UserAgent())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	h.setCookie(c, h.cfg.Session.CookieName, sess.Token, int(h.sessions.TTL().Seconds()))
	body := gin.H{"author": a, "sessionExpiresAt": sess.ExpiresAt}
	if h.cfg.JWT.Secret != "" {
		access, err := tokens.GenerateAccessToken(h.cfg, p, h.accessTTL())
		if err != nil {
			return nil, apperr.Internal(err)
		}
		body["accessToken"] = access
		body["expiresIn"] = int(h.accessTTL().Seconds())
	}
	return body, nil
}

// Login checks email and password and starts a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}
	a, err := h.authors.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	body, err := h.startSession(c, a)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Infof("author %s logged in", a.ID)
	c.JSON(http.StatusOK, body)
}

// sessionToken reads the session from the cookie, falling back to a JSON
// body {"sessionToken": "..."} for non-browser clients.
func (h *AuthHandler) sessionToken(c *gin.Context) string {
	if raw, err := c.Cookie(h.cfg.Session.CookieName); err == nil && raw != "" {
		return raw
	}
	var body struct {
		SessionToken string `json:"sessionToken"`
	}
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&body)
	}
	return body.SessionToken
}

// Refresh exchanges a live session for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw := h.sessionToken(c)
	if raw == "" {
		fail(c, apperr.Unauthorized("no session"))
		return
	}
	sess, err := h.sessions.Validate(c.Request.Context(), raw)
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	if sess == nil {
		fail(c, apperr.Unauthorized("invalid or expired session"))
		return
	}
	p, err := h.authors.LoadPrincipal(c.Request.Context(), sess.Sub)
	if err != nil {
		fail(c, err)
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, p, h.accessTTL())
	if err != nil {
		fail(c, apperr.Unavailable("access tokens are not configured"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": access, "expiresIn": int(h.accessTTL().Seconds())})
}

// Logout deletes the session, clears the cookie and revokes the presented
// bearer token until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if claims, err := tokens.Parse(h.cfg, raw); err == nil {
			if err := h.blacklist.Add(ctx, raw, claims.Remaining()); err != nil {
				fail(c, apperr.Unavailable("failed to revoke access token"))
				return
			}
		}
	}
	if raw := h.sessionToken(c); raw != "" {
		if err := h.sessions.Delete(ctx, raw); err != nil {
			fail(c, apperr.Internal(err))
			return
		}
	}
	h.setCookie(c, h.cfg.Session.CookieName, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated author.
func (h *AuthHandler) Me(c *gin.Context) {
	a, err := h.authors.Get(c.Request.Context(), principal(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"author": a})
}

func (h *AuthHandler) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": h.providers.Names()})
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// OAuthLogin redirects the browser to the provider with fresh state and nonce.
func (h *AuthHandler) OAuthLogin(c *gin.Context) {
	p, ok := h.providers.Get(c.Param("provider"))
	if !ok {
		fail(c, apperr.NotFound("oauth provider"))
		return
	}
	state, err := randomToken()
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	nonce, err := randomToken()
	if err != nil {
		fail(c, apperr.Internal(err))
		return
	}
	maxAge := int(oauthCookieTTL.Seconds())
	h.setCookie(c, stateCookie, state, maxAge)
	h.setCookie(c, nonceCookie, nonce, maxAge)
	c.Redirect(http.StatusFound, p.AuthCodeURL(state, nonce))
}

// OAuthCallback completes the code flow and signs the author in.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	name := c.Param("provider")
	p, ok := h.providers.Get(name)
	if !ok {
		fail(c, apperr.NotFound("oauth provider"))
		return
	}
	if e := c.Query("error"); e != "" {
		fail(c, apperr.BadRequest("provider returned error: "+e))
		return
	}
	state, _ := c.Cookie(stateCookie)
	if state == "" || c.Query("state") != state {
		fail(c, apperr.BadRequest("oauth state mismatch"))
		return
	}
	code := c.Query("code")
	if code == "" {
		fail(c, apperr.BadRequest("missing code"))
		return
	}
	nonce, _ := c.Cookie(nonceCookie)
	h.setCookie(c, stateCookie, "", -1)
	h.setCookie(c, nonceCookie, "", -1)

	claims, err := p.Exchange(c.Request.Context(), code, nonce)
	if err != nil {
		logger.Warnf("oauth %s exchange failed: %v", name, err)
		fail(c, apperr.Unauthorized("authentication failed"))
		return
	}
	a, err := h.authors.UpsertFromClaims(c.Request.Context(), name, claims)
	if err != nil {
		fail(c, err)
		return
	}
	body, err := h.startSession(c, a)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Infof("author %s logged in via %s", a.ID, name)
	if h.cfg.Server.PublicURL != "" {
		c.Redirect(http.StatusFound, h.cfg.Server.PublicURL+"/")
		return
	}
	c.JSON(http.StatusOK, body)
}
