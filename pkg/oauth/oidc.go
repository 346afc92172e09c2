package oauth

import (
	"context"
	"fmt"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCProvider resolves profiles through any OpenID Connect issuer's
// userinfo endpoint, discovered from the issuer URL.
type OIDCProvider struct {
	provider *gooidc.Provider
}

// NewOIDCProvider runs OIDC discovery against the issuer.
func NewOIDCProvider(ctx context.Context, issuerURL string) (*OIDCProvider, error) {
	provider, err := gooidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery failed for %s: %w", issuerURL, err)
	}
	return &OIDCProvider{provider: provider}, nil
}

// Name returns the provider name.
func (p *OIDCProvider) Name() string { return "OIDC" }

// UserInfo fetches claims from the issuer's userinfo endpoint. The subject
// claim is the external user id; preferred_username falls back to email when
// the issuer doesn't set it.
func (p *OIDCProvider) UserInfo(ctx context.Context, token string) (*User, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	info, err := p.provider.UserInfo(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("oidc userinfo request failed: %w", err)
	}

	var claims struct {
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
	}
	if err := info.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to decode oidc claims: %w", err)
	}

	username := claims.PreferredUsername
	if username == "" {
		username = claims.Email
	}

	return &User{
		ID:       info.Subject,
		Username: username,
		Email:    claims.Email,
	}, nil
}
