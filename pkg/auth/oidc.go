package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/oauth2"
)

// OIDCConfig holds OpenID Connect settings for single sign-on
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// OIDCUser is the subset of identity-provider claims the back office needs
// to match or provision a local user
type OIDCUser struct {
	ExternalID string
	Email      string
	FullName   string
}

// stateTTL bounds how long a login attempt may sit between redirect and
// callback before the state nonce expires
const stateTTL = 10 * time.Minute

// OIDCProvider implements OpenID Connect single sign-on
type OIDCProvider struct {
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
	// pending login states; evicted after stateTTL or capacity pressure
	states *lru.LRU[string, struct{}]
}

// NewOIDCProvider discovers the issuer and prepares the OAuth2 flow
func NewOIDCProvider(ctx context.Context, config OIDCConfig) (*OIDCProvider, error) {
	provider, err := oidc.NewProvider(ctx, config.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: config.ClientID})

	scopes := config.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauth2Config := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  config.RedirectURL,
		Scopes:       scopes,
	}

	return &OIDCProvider{
		provider:     provider,
		verifier:     verifier,
		oauth2Config: oauth2Config,
		states:       lru.NewLRU[string, struct{}](1024, nil, stateTTL),
	}, nil
}

// InitiateLogin redirects the browser to the identity provider's
// authorization endpoint with a fresh state nonce
func (p *OIDCProvider) InitiateLogin(w http.ResponseWriter, r *http.Request) error {
	state, err := newState()
	if err != nil {
		return fmt.Errorf("failed to generate state: %w", err)
	}
	p.states.Add(state, struct{}{})

	http.Redirect(w, r, p.oauth2Config.AuthCodeURL(state), http.StatusFound)
	return nil
}

// HandleCallback validates the state, exchanges the authorization code and
// verifies the ID token, returning the provider's view of the user
func (p *OIDCProvider) HandleCallback(r *http.Request) (*OIDCUser, error) {
	state := r.URL.Query().Get("state")
	if _, ok := p.states.Get(state); !ok {
		return nil, fmt.Errorf("unknown or expired login state")
	}
	p.states.Remove(state)

	code := r.URL.Query().Get("code")
	if code == "" {
		return nil, fmt.Errorf("missing authorization code")
	}

	ctx := r.Context()
	oauth2Token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("missing id_token in response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}

	if claims.Email == "" {
		return nil, fmt.Errorf("missing email in OIDC token")
	}

	return &OIDCUser{
		ExternalID: idToken.Subject,
		Email:      claims.Email,
		FullName:   claims.Name,
	}, nil
}

func newState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
