// Package oidc runs the authorization-code login flow against configured
// OpenID Connect providers and verifies the returned id_tokens.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/newsdesk/newsdesk/internal/config"
	"github.com/newsdesk/newsdesk/pkg/logger"
	"github.com/newsdesk/newsdesk/pkg/middleware"
	"golang.org/x/oauth2"
)

// Verifier wraps the OIDC provider and token verifier
type Verifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// NewVerifier creates a new OIDC verifier for the given issuer and client ID
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: clientID})
	return &Verifier{provider: provider, verifier: verifier}, nil
}

// Verify verifies the provided raw ID token using the provided context and returns a middleware.Token
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}

// exchanger is the subset of *oauth2.Config used by Provider.
type exchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// Provider is one configured login provider.
type Provider struct {
	Name     string
	oauth    exchanger
	verifier middleware.Verifier
}

var ErrNoIDToken = errors.New("token response has no id_token")

// NewProvider discovers the issuer and builds the code-flow config. When
// insecure is set the id_token signature is not checked.
func NewProvider(ctx context.Context, pc config.OAuthProvider, insecure bool) (*Provider, error) {
	v, err := NewVerifier(ctx, pc.Issuer, pc.ClientID)
	if err != nil {
		return nil, err
	}
	oc := &oauth2.Config{
		ClientID:     pc.ClientID,
		ClientSecret: pc.ClientSecret,
		RedirectURL:  pc.RedirectURL,
		Endpoint:     v.provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	var tv middleware.Verifier = v
	if insecure {
		tv = NewInsecureVerifier()
	}
	return NewStaticProvider(pc.Name, oc, tv), nil
}

// NewStaticProvider builds a provider from explicit endpoints, skipping discovery.
func NewStaticProvider(name string, oc *oauth2.Config, v middleware.Verifier) *Provider {
	return &Provider{Name: name, oauth: oc, verifier: v}
}

// AuthCodeURL returns the provider URL the browser is redirected to.
func (p *Provider) AuthCodeURL(state, nonce string) string {
	return p.oauth.AuthCodeURL(state, oidc.Nonce(nonce))
}

// Exchange trades the authorization code for tokens, verifies the id_token and
// returns its claims. A non-empty nonce must match the token's nonce claim.
func (p *Provider) Exchange(ctx context.Context, code, nonce string) (map[string]interface{}, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, ErrNoIDToken
	}
	idToken, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}
	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	if nonce != "" {
		if got, _ := claims["nonce"].(string); got != nonce {
			return nil, errors.New("id_token nonce mismatch")
		}
	}
	return claims, nil
}

// Registry holds the providers that could be initialised.
type Registry struct {
	providers map[string]*Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]*Provider{}}
}

// LoadRegistry discovers every configured provider; providers that fail
// discovery are logged and skipped.
func LoadRegistry(ctx context.Context, cfg config.OAuthConfig) *Registry {
	r := NewRegistry()
	if cfg.AllowInsecureTokens {
		logger.Warnf("ALLOW_INSECURE_TOKEN set: id_token signatures are NOT verified")
	}
	for _, pc := range cfg.Providers {
		p, err := NewProvider(ctx, pc, cfg.AllowInsecureTokens)
		if err != nil {
			logger.Warnf("oauth provider %s unavailable: %v", pc.Name, err)
			continue
		}
		r.Add(p)
		logger.Infof("oauth provider %s ready (issuer=%s)", pc.Name, pc.Issuer)
	}
	return r
}

func (r *Registry) Add(p *Provider) { r.providers[p.Name] = p }

func (r *Registry) Get(name string) (*Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names lists provider names in order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.providers))
	for n := range r.providers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
