package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/newsdesk/newsdesk/internal/models"
	"github.com/newsdesk/newsdesk/internal/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestLoginMeLogout(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/auth/login", LoginRequest{Email: adminEmail, Password: "wrong-password"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": adminEmail}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	as := env.admin()
	require.NotEmpty(t, as.bearer)
	assert.True(t, as.cookie.HttpOnly)

	for name, c := range map[string]*creds{
		"cookie": {cookie: as.cookie},
		"bearer": {bearer: as.bearer},
	} {
		w = env.do(http.MethodGet, "/api/v1/auth/me", nil, c)
		require.Equal(t, http.StatusOK, w.Code, name)
		var body struct {
			Author models.Author `json:"author"`
		}
		decode(t, w, &body)
		assert.Equal(t, env.adminID, body.Author.ID, name)
		assert.Equal(t, models.RoleAdmin, body.Author.Role, name)
	}

	w = env.do(http.MethodGet, "/api/v1/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/v1/auth/logout", nil, as)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := cookieNamed(w, env.cfg.Session.CookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	w = env.do(http.MethodGet, "/api/v1/auth/me", nil, &creds{cookie: as.cookie})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.do(http.MethodGet, "/api/v1/auth/me", nil, &creds{bearer: as.bearer})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestLogoutRevokesBearerWithoutRedis(t *testing.T) {
	env := newTestEnv(t, withoutRedis)
	as := env.admin()

	w := env.do(http.MethodGet, "/api/v1/auth/me", nil, &creds{bearer: as.bearer})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/api/v1/auth/logout", nil, &creds{bearer: as.bearer})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/v1/auth/me", nil, &creds{bearer: as.bearer})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.do(http.MethodGet, "/api/v1/auth/me", nil, &creds{cookie: as.cookie})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	as := env.admin()

	w := env.do(http.MethodPost, "/api/v1/auth/refresh", nil, &creds{cookie: as.cookie})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   int    `json:"expiresIn"`
	}
	decode(t, w, &body)
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, 900, body.ExpiresIn)

	w = env.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"sessionToken": as.cookie.Value}, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/api/v1/auth/refresh", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = env.do(http.MethodPost, "/api/v1/auth/refresh", map[string]string{"sessionToken": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSuspendedAuthorLosesAccess(t *testing.T) {
	env := newTestEnv(t)
	as, id := env.approvedAuthor("Rina", "rina@newsdesk.test")

	w := env.do(http.MethodPost, "/api/v1/author/"+id+"/review", reviewRequest{Decision: "suspend", Note: "plagiarism"}, env.admin())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPost, "/api/v1/auth/login", LoginRequest{Email: "rina@newsdesk.test", Password: "password-123"}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// suspension applies to live sessions too
	w = env.do(http.MethodGet, "/api/v1/auth/me", nil, as)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(http.MethodPost, "/api/v1/post", map[string]string{"title": "Still here", "content": "body"}, as)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func idToken(t *testing.T, claims map[string]interface{}) string {
	b, err := json.Marshal(claims)
	require.NoError(t, err)
	return "eyJhbGciOiJub25lIn0." + base64.RawURLEncoding.EncodeToString(b) + ".sig"
}

func TestOAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	var nonce string
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "at",
			"token_type":   "Bearer",
			"id_token": idToken(t, map[string]interface{}{
				"sub": "g-123", "email": "Nadia@Example.com", "name": "Nadia", "nonce": nonce,
			}),
		})
	}))
	defer tokenSrv.Close()

	env.providers.Add(oidc.NewStaticProvider("google", &oauth2.Config{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/api/v1/auth/oauth/google/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: tokenSrv.URL + "/authorize", TokenURL: tokenSrv.URL + "/token"},
	}, oidc.NewInsecureVerifier()))

	w := env.do(http.MethodGet, "/api/v1/auth/providers", nil, nil)
	assert.JSONEq(t, `{"providers":["google"]}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/v1/auth/oauth/github/login", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/v1/auth/oauth/google/login", nil, nil)
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := cookieNamed(w, stateCookie)
	nonceC := cookieNamed(w, nonceCookie)
	require.NotNil(t, state)
	require.NotNil(t, nonceC)
	assert.Equal(t, state.Value, loc.Query().Get("state"))
	assert.Equal(t, nonceC.Value, loc.Query().Get("nonce"))
	nonce = nonceC.Value

	callback := func(query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/google/callback?"+query, nil)
		req.AddCookie(state)
		req.AddCookie(nonceC)
		return env.serve(req, nil)
	}

	w = callback("state=forged&code=good-code")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = callback("state=" + state.Value + "&code=bad-code")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = callback("state=" + state.Value + "&code=good-code")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Author models.Author `json:"author"`
	}
	decode(t, w, &body)
	assert.Equal(t, "nadia@example.com", body.Author.Email)
	assert.Equal(t, models.AuthorPending, body.Author.Status)
	assert.Equal(t, "google", body.Author.Provider)
	require.NotNil(t, cookieNamed(w, env.cfg.Session.CookieName))

	// a second login links to the same account
	w = callback("state=" + state.Value + "&code=good-code")
	require.Equal(t, http.StatusOK, w.Code)
	var again struct {
		Author models.Author `json:"author"`
	}
	decode(t, w, &again)
	assert.Equal(t, body.Author.ID, again.Author.ID)
}

func TestOAuthCallbackRedirectsToSite(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Server.PublicURL = "https://news.example.com"

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "at",
			"id_token":     idToken(t, map[string]interface{}{"sub": "admin-sub", "email": adminEmail, "email_verified": true}),
		})
	}))
	defer tokenSrv.Close()
	env.providers.Add(oidc.NewStaticProvider("sso", &oauth2.Config{
		ClientID: "cid",
		Endpoint: oauth2.Endpoint{AuthURL: tokenSrv.URL + "/authorize", TokenURL: tokenSrv.URL + "/token"},
	}, oidc.NewInsecureVerifier()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/sso/callback?state=s1&code=c", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
	w := env.serve(req, nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "https://news.example.com/", w.Header().Get("Location"))
	assert.NotNil(t, cookieNamed(w, env.cfg.Session.CookieName))
}

func TestOAuthProviderError(t *testing.T) {
	env := newTestEnv(t)
	env.providers.Add(oidc.NewStaticProvider("sso", &oauth2.Config{ClientID: "cid"}, oidc.NewInsecureVerifier()))
	w := env.do(http.MethodGet, "/api/v1/auth/oauth/sso/callback?error=access_denied", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "access_denied")
}

func TestOAuthUnverifiedEmailDoesNotTakeOverAccount(t *testing.T) {
	env := newTestEnv(t)
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "at",
			"id_token":     idToken(t, map[string]interface{}{"sub": "attacker-sub", "email": adminEmail, "email_verified": false}),
		})
	}))
	defer tokenSrv.Close()
	env.providers.Add(oidc.NewStaticProvider("sso", &oauth2.Config{
		ClientID: "cid",
		Endpoint: oauth2.Endpoint{AuthURL: tokenSrv.URL + "/authorize", TokenURL: tokenSrv.URL + "/token"},
	}, oidc.NewInsecureVerifier()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/sso/callback?state=s1&code=c", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "s1"})
	w := env.serve(req, nil)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Nil(t, cookieNamed(w, env.cfg.Session.CookieName))
}
