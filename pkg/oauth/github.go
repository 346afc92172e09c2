package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
)

// DefaultGitHubAPIURL is the public GitHub REST endpoint. Overridable for
// GitHub Enterprise installs and tests.
const DefaultGitHubAPIURL = "https://api.github.com"

// GitHubProvider resolves profiles against the GitHub REST API.
type GitHubProvider struct {
	apiURL string
}

// NewGitHubProvider creates a GitHub provider. An empty apiURL selects the
// public API.
func NewGitHubProvider(apiURL string) *GitHubProvider {
	if apiURL == "" {
		apiURL = DefaultGitHubAPIURL
	}
	return &GitHubProvider{apiURL: apiURL}
}

// Name returns the provider name.
func (p *GitHubProvider) Name() string { return "GitHub" }

// UserInfo fetches the authenticated user behind the token from /user.
func (p *GitHubProvider) UserInfo(ctx context.Context, token string) (*User, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := oauth2.NewClient(ctx, ts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build github request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github user request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user request returned %d", resp.StatusCode)
	}

	var body struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode github user: %w", err)
	}

	return &User{
		ID:       strconv.FormatInt(body.ID, 10),
		Username: body.Login,
		Email:    body.Email,
	}, nil
}
