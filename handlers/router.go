package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/ads"
	"github.com/newsdesk/newsdesk/internal/authors"
	"github.com/newsdesk/newsdesk/internal/config"
	"github.com/newsdesk/newsdesk/internal/improve"
	"github.com/newsdesk/newsdesk/internal/newsletter"
	"github.com/newsdesk/newsdesk/internal/oidc"
	"github.com/newsdesk/newsdesk/internal/pages"
	"github.com/newsdesk/newsdesk/internal/posts"
	"github.com/newsdesk/newsdesk/internal/search"
	"github.com/newsdesk/newsdesk/internal/sections"
	"github.com/newsdesk/newsdesk/internal/sessions"
	"github.com/newsdesk/newsdesk/internal/storage"
	"github.com/newsdesk/newsdesk/pkg/middleware"
	"github.com/redis/go-redis/v9"
)

// Deps carries everything the API routes need.
type Deps struct {
	Config     *config.Config
	Authors    *authors.Service
	Posts      *posts.Service
	Sections   *sections.Service
	Pages      *pages.Service
	Ads        *ads.Service
	Newsletter *newsletter.Service
	Search     *search.Service
	Uploader   *storage.Uploader
	Improve    *improve.Client
	Sessions   *sessions.Service
	Blacklist  *sessions.Blacklist
	Providers  *oidc.Registry
	// Verifier checks bearer tokens; nil disables them.
	Verifier middleware.Verifier
	// Redis backs the improve limiter when rate limiting uses Redis.
	Redis *redis.Client
}

// Mount registers /api/v1 and the swagger docs on r.
func Mount(r *gin.Engine, d Deps) *gin.RouterGroup {
	api := r.Group("/api/v1")
	api.Use(middleware.Authenticate(middleware.AuthOptions{
		Verifier:   d.Verifier,
		Sessions:   d.Sessions,
		Loader:     d.Authors,
		Blacklist:  d.Blacklist,
		CookieName: d.Config.Session.CookieName,
	}))

	api.GET("/editions", listEditions)
	NewAuthHandler(d.Config, d.Authors, d.Sessions, d.Blacklist, d.Providers).Register(api)
	NewAuthorHandler(d.Authors).Register(api)
	NewPostHandler(d.Posts).Register(api)
	NewSectionHandler(d.Sections).Register(api)
	NewPageHandler(d.Pages, d.Sections).Register(api)
	NewAdHandler(d.Ads).Register(api)
	NewNewsletterHandler(d.Newsletter).Register(api)
	NewSearchHandler(d.Search).Register(api)
	NewUploadHandler(d.Uploader).Register(api)
	NewImproveHandler(d.Improve).Register(api, improveLimiter(d))

	RegisterSwagger(r)
	return api
}

func improveLimiter(d Deps) gin.HandlerFunc {
	rl := d.Config.RateLimit
	if !rl.Enabled || rl.ImproveRPS <= 0 {
		return nil
	}
	burst := rl.ImproveBurst
	if burst <= 0 {
		burst = 1
	}
	if rl.UseRedis && d.Redis != nil {
		win := time.Duration(rl.WindowSeconds) * time.Second
		return middleware.RedisRateLimitMiddleware(d.Redis, "improve", rl.ImproveRPS, burst, win)
	}
	return middleware.RateLimitMiddleware("improve", rl.ImproveRPS, burst)
}
