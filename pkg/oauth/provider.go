package oauth

import "context"

// User is the minimal profile an identity provider reports for a token:
// just enough to key an account and address its owner.
type User struct {
	// ID is the provider-assigned external user id.
	ID string `json:"id"`
	// Username is the provider-side login name.
	Username string `json:"username"`
	// Email may be empty; not every provider discloses one.
	Email string `json:"email,omitempty"`
}

// Provider fetches the profile behind a raw provider access token. The
// redirect/callback flow that produced the token lives in the HTTP layer,
// not here.
type Provider interface {
	// Name returns the provider name as understood by session.ParseProvider.
	Name() string
	// UserInfo exchanges a raw provider token for the user's profile.
	UserInfo(ctx context.Context, token string) (*User, error)
}
