package session

import (
	"context"
	"fmt"

	"github.com/buildforge/depot/pkg/oauth"
)

// IssueOAuthSession mints a new session from a raw provider token and the
// profile fetched from that provider. The account is find-or-created, the
// payload is encoded into the bearer string the client will present from now
// on, and the session is cached with the configured TTL.
func (r *Resolver) IssueOAuthSession(ctx context.Context, oauthToken string, user *oauth.User, provider string) (*Session, error) {
	prov, err := ParseProvider(provider)
	if err != nil {
		r.logger.WithError(err).WithField("provider", provider).Warn("failed to parse oauth provider")
		return nil, err
	}

	account, err := r.store.FindOrCreateAccount(ctx, user.Username, user.Email)
	if err != nil {
		r.logger.WithError(err).WithField("username", user.Username).Error("failed to create account")
		return nil, fmt.Errorf("%w: find or create account: %v", ErrStorage, err)
	}

	payload := &AccessTokenPayload{
		AccountID: account.ID,
		ExternID:  user.ID,
		Token:     []byte(oauthToken),
		Provider:  prov,
	}

	encoded, err := EncodeSessionToken(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSystem, err)
	}

	sess := &Session{
		ID:         account.ID,
		Name:       account.Name,
		Email:      account.Email,
		Token:      encoded,
		Flags:      0,
		OAuthToken: oauthToken,
	}

	r.logger.WithFields(map[string]interface{}{
		"account_id": account.ID,
		"provider":   prov.String(),
	}).Debug("issuing session")

	r.cacheSession(ctx, encoded, sess, r.cfg.SessionTTL)
	r.metrics.SessionsIssuedTotal.Inc()

	return sess, nil
}
