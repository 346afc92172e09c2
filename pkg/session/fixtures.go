package session

import (
	"context"
	"fmt"

	"github.com/buildforge/depot/pkg/oauth"
)

// funcTestFixtures maps well-known literal tokens to synthetic profiles for
// functional test runs. Consulted only when Config.FixtureMode is set.
var funcTestFixtures = map[string]oauth.User{
	"bobo":     {ID: "0", Username: "bobo", Email: "bobo@example.com"},
	"mystique": {ID: "1", Username: "mystique", Email: "mystique@example.com"},
	"hank":     {ID: "2", Username: "hank", Email: "hank@example.com"},
}

// fixtureProvider is the provider every fixture session reports.
const fixtureProvider = "GitHub"

// shortCircuitSession substitutes a deterministic profile for the provider
// exchange and then runs the normal issuance path. Unknown tokens are a hard
// error: the fixture table is closed.
func (r *Resolver) shortCircuitSession(ctx context.Context, token string) (*Session, error) {
	user, ok := funcTestFixtures[token]
	if !ok {
		r.logger.WithField("token", token).Error("unexpected short circuit token")
		return nil, fmt.Errorf("unexpected short circuit token %q: %w", token, ErrSystem)
	}
	return r.IssueOAuthSession(ctx, token, &user, fixtureProvider)
}
