package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/newsdesk/newsdesk/internal/ads"
	"github.com/newsdesk/newsdesk/internal/authors"
	"github.com/newsdesk/newsdesk/internal/config"
	"github.com/newsdesk/newsdesk/internal/events"
	"github.com/newsdesk/newsdesk/internal/improve"
	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/newsletter"
	"github.com/newsdesk/newsdesk/internal/oidc"
	"github.com/newsdesk/newsdesk/internal/pages"
	"github.com/newsdesk/newsdesk/internal/posts"
	"github.com/newsdesk/newsdesk/internal/search"
	"github.com/newsdesk/newsdesk/internal/sections"
	"github.com/newsdesk/newsdesk/internal/sessions"
	"github.com/newsdesk/newsdesk/internal/storage"
	"github.com/newsdesk/newsdesk/internal/tokens"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@newsdesk.test"
	adminPassword = "admin-password"
)

type testEnv struct {
	t         *testing.T
	cfg       *config.Config
	router    *gin.Engine
	authors   *authors.Service
	posts     *posts.Service
	subs      *newsletter.MemoryRepository
	blobs     *storage.MemoryStorage
	providers *oidc.Registry
	events    *events.MemoryPublisher
	redis     *mr.Miniredis
	adminID   string
}

// envOption adjusts the dependencies before the router is mounted.
type envOption func(*Deps)

// withoutRedis keeps sessions and revoked tokens in process.
func withoutRedis(d *Deps) {
	d.Sessions = sessions.NewService(sessions.NewMemoryRepository(), d.Config.Session.TTL)
	d.Blacklist = sessions.NewMemoryBlacklist()
	d.Redis = nil
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	cfg := &config.Config{}
	cfg.JWT.Secret = "handler-test-secret-32-bytes-xxxx"
	cfg.JWT.Issuer = "newsdesk"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.Session.CookieName = "newsdesk_session"
	cfg.Session.TTL = time.Hour

	pub := &events.MemoryPublisher{}
	authorSvc := authors.NewService(authors.NewMemoryRepository(), pub)
	postSvc := posts.NewService(posts.NewMemoryRepository(), nil, pub)
	secSvc := sections.NewService(sections.NewMemoryRepository(), postSvc)
	postSvc.SetSectionLinker(secSvc)
	pageSvc := pages.NewService(pages.NewMemoryRepository(), pages.NewLookupComposer(secSvc, postSvc, authorSvc), secSvc)
	secSvc.SetPageLookup(pageSvc)
	subs := newsletter.NewMemoryRepository()
	blobs := storage.NewMemoryStorage("https://cdn.newsdesk.test")
	providers := oidc.NewRegistry()

	deps := Deps{
		Config:     cfg,
		Authors:    authorSvc,
		Posts:      postSvc,
		Sections:   secSvc,
		Pages:      pageSvc,
		Ads:        ads.NewService(ads.NewMemoryRepository()),
		Newsletter: newsletter.NewService(subs, pub),
		Search:     search.NewService(postSvc, secSvc),
		Uploader:   storage.NewUploader(blobs, 1<<20),
		Improve:    improve.NewClient(config.ImproveConfig{}, nil),
		Sessions:   sessions.NewService(sessions.NewRedisRepository(rc, "session:"), cfg.Session.TTL),
		Blacklist:  sessions.NewBlacklist(rc),
		Providers:  providers,
		Verifier:   tokens.NewVerifier(cfg),
		Redis:      rc,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	r := gin.New()
	Mount(r, deps)

	admin, err := authorSvc.EnsureAdmin(context.Background(), "Admin", adminEmail, adminPassword)
	require.NoError(t, err)

	return &testEnv{
		t: t, cfg: cfg, router: r, authors: authorSvc, posts: postSvc, subs: subs,
		blobs: blobs, providers: providers, events: pub, redis: m, adminID: admin.ID,
	}
}

// creds is how a request authenticates: a session cookie, a bearer token or both.
type creds struct {
	cookie *http.Cookie
	bearer string
}

func (e *testEnv) do(method, path string, body interface{}, as *creds) *httptest.ResponseRecorder {
	e.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.serve(req, as)
}

func (e *testEnv) serve(req *http.Request, as *creds) *httptest.ResponseRecorder {
	if as != nil {
		if as.cookie != nil {
			req.AddCookie(as.cookie)
		}
		if as.bearer != "" {
			req.Header.Set("Authorization", "Bearer "+as.bearer)
		}
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (e *testEnv) login(email, password string) *creds {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/v1/auth/login", LoginRequest{Email: email, Password: password}, nil)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		AccessToken string `json:"accessToken"`
	}
	decode(e.t, w, &body)
	c := cookieNamed(w, e.cfg.Session.CookieName)
	require.NotNil(e.t, c)
	return &creds{cookie: c, bearer: body.AccessToken}
}

func (e *testEnv) admin() *creds {
	return e.login(adminEmail, adminPassword)
}

// approvedAuthor registers an author, has the admin approve them and logs in.
func (e *testEnv) approvedAuthor(name, email string) (*creds, string) {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/v1/author", authors.RegisterInput{Name: name, Email: email, Password: "password-123"}, nil)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var a models.Author
	decode(e.t, w, &a)
	w = e.do(http.MethodPost, "/api/v1/author/"+a.ID+"/review", reviewRequest{Decision: "approve"}, e.admin())
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return e.login(email, "password-123"), a.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
