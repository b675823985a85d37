package oidc

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func unsignedJWT(payload string) string {
	enc := base64.RawURLEncoding.EncodeToString
	return enc([]byte(`{"alg":"none"}`)) + "." + enc([]byte(payload)) + "."
}

func tokenServer(t *testing.T, idToken string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		body := `{"access_token":"at","token_type":"Bearer","expires_in":3600`
		if idToken != "" {
			body += `,"id_token":"` + idToken + `"`
		}
		_, _ = w.Write([]byte(body + "}"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func staticProvider(srv *httptest.Server) *Provider {
	oc := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/authorize", TokenURL: srv.URL + "/token"},
		Scopes:       []string{"openid", "email"},
	}
	return NewStaticProvider("test", oc, NewInsecureVerifier())
}

func TestProvider_AuthCodeURL(t *testing.T) {
	p := staticProvider(tokenServer(t, ""))
	u, err := url.Parse(p.AuthCodeURL("state-1", "nonce-1"))
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "state-1", q.Get("state"))
	require.Equal(t, "nonce-1", q.Get("nonce"))
	require.Equal(t, "client", q.Get("client_id"))
	require.Equal(t, "/authorize", u.Path)
}

func TestProvider_Exchange(t *testing.T) {
	srv := tokenServer(t, unsignedJWT(`{"sub":"s-1","email":"a@example.com","nonce":"n1"}`))
	p := staticProvider(srv)

	claims, err := p.Exchange(context.Background(), "the-code", "n1")
	require.NoError(t, err)
	require.Equal(t, "s-1", claims["sub"])
	require.Equal(t, "a@example.com", claims["email"])

	_, err = p.Exchange(context.Background(), "the-code", "other-nonce")
	require.Error(t, err)
}

func TestProvider_ExchangeWithoutIDToken(t *testing.T) {
	p := staticProvider(tokenServer(t, ""))
	_, err := p.Exchange(context.Background(), "the-code", "")
	require.ErrorIs(t, err, ErrNoIDToken)
}

func TestInsecureVerifier_RejectsMalformed(t *testing.T) {
	_, err := NewInsecureVerifier().Verify(context.Background(), "only.two")
	require.Error(t, err)
	_, err = NewInsecureVerifier().Verify(context.Background(), "a.!!!.c")
	require.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	srv := tokenServer(t, "")
	r.Add(NewStaticProvider("zeta", &oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: srv.URL}}, NewInsecureVerifier()))
	r.Add(NewStaticProvider("alpha", &oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: srv.URL}}, NewInsecureVerifier()))
	require.Equal(t, []string{"alpha", "zeta"}, r.Names())
	_, ok := r.Get("alpha")
	require.True(t, ok)
	_, ok = r.Get("missing")
	require.False(t, ok)
}
