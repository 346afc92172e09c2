package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/buildforge/depot/pkg/observability"
)

// DefaultSessionTTL is how long an OAuth-issued session stays cached.
const DefaultSessionTTL = 3 * 24 * time.Hour

// decodeMemoSize bounds the memo of structural token decodes. Entries are
// tiny; this is sized for the working set of active credentials.
const decodeMemoSize = 4096

// Config carries the resolver's construction-time settings. Both values are
// resolved once at startup; the resolver never reads process state at call
// time.
type Config struct {
	// SessionTTL is the cache expiry applied to OAuth-issued sessions.
	// Sessions resolved from personal access tokens are cached without
	// forced expiry.
	SessionTTL time.Duration

	// FixtureMode routes every resolution through the deterministic test
	// fixtures instead of the normal path. Never enable outside of
	// functional test runs.
	FixtureMode bool
}

// Resolver turns opaque bearer tokens into verified sessions. Resolution is
// cache first, then structural classification, then the authoritative store.
type Resolver struct {
	cfg     Config
	cache   Cache
	store   Store
	logger  *observability.Logger
	metrics *observability.Metrics

	// decoded memoizes successful structural decodes by token string.
	// Decoding is deterministic, so a stale entry cannot exist.
	decoded *lru.Cache[string, *AccessTokenPayload]
}

// NewResolver creates a resolver. A zero SessionTTL falls back to
// DefaultSessionTTL.
func NewResolver(cfg Config, cache Cache, store Store, logger *observability.Logger, metrics *observability.Metrics) (*Resolver, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	decoded, err := lru.New[string, *AccessTokenPayload](decodeMemoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create decode memo: %w", err)
	}
	return &Resolver{
		cfg:     cfg,
		cache:   cache,
		store:   store,
		logger:  logger,
		metrics: metrics,
		decoded: decoded,
	}, nil
}

// Authenticate resolves a raw bearer token to a session.
//
// Two concurrent resolutions of the same token may both reach the store and
// both populate the cache; that is benign and intentionally not locked.
func (r *Resolver) Authenticate(ctx context.Context, token string) (*Session, error) {
	if r.cfg.FixtureMode {
		return r.shortCircuitSession(ctx, token)
	}

	cached, err := r.cache.Get(ctx, token)
	if err != nil {
		// The cache is an optimization, not the source of truth: a cache
		// failure degrades to a miss.
		r.logger.WithError(err).Warn("session cache lookup failed")
	}
	if cached != nil {
		r.logger.WithField("account_id", cached.ID).Debug("session cache hit")
		r.metrics.CacheHitsTotal.Inc()
		r.metrics.AuthResolutionsTotal.WithLabelValues("cache_hit").Inc()
		return cached, nil
	}

	r.logger.Debug("session cache miss")
	r.metrics.CacheMissesTotal.Inc()

	// Not in cache and not shaped like an access token: there is nothing
	// left to validate against. OAuth-issued session tokens that fall out
	// of cache land here and cannot be re-derived.
	if !IsAccessToken(token) {
		r.metrics.AuthResolutionsTotal.WithLabelValues("unauthorized").Inc()
		return nil, fmt.Errorf("token is not an access token: %w", ErrUnauthorized)
	}

	payload, err := r.decodePayload(token)
	if err != nil {
		r.metrics.AuthResolutionsTotal.WithLabelValues("unauthorized").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	if payload.AccountID == InternalAccountID {
		r.logger.Debug("internal service token identified")
		sess := &Session{
			ID:         InternalAccountID,
			Name:       InternalAccountName,
			Token:      token,
			Flags:      FlagAdmin | FlagBuildWorker,
			OAuthToken: string(payload.Token),
		}
		r.cacheSession(ctx, token, sess, 0)
		r.metrics.AuthResolutionsTotal.WithLabelValues("authenticated").Inc()
		return sess, nil
	}

	sess, err := r.validateAgainstStore(ctx, token, payload)
	if err != nil {
		switch {
		case errors.Is(err, ErrStorage):
			r.metrics.AuthResolutionsTotal.WithLabelValues("storage_error").Inc()
		case errors.Is(err, ErrSystem):
			r.metrics.AuthResolutionsTotal.WithLabelValues("system_error").Inc()
		default:
			r.metrics.AuthResolutionsTotal.WithLabelValues("unauthorized").Inc()
		}
		return nil, err
	}

	r.metrics.AuthResolutionsTotal.WithLabelValues("authenticated").Inc()
	return sess, nil
}

// validateAgainstStore checks a decoded access token against the account's
// stored token and, on a match, fills in the account profile.
func (r *Resolver) validateAgainstStore(ctx context.Context, token string, payload *AccessTokenPayload) (*Session, error) {
	tokens, err := r.store.ListAccountTokens(ctx, payload.AccountID)
	if err != nil {
		r.logger.WithError(err).WithField("account_id", payload.AccountID).Error("failed to list account tokens")
		return nil, fmt.Errorf("%w: list account tokens: %v", ErrStorage, err)
	}

	switch len(tokens) {
	case 0:
		// No tokens on file for this account
		return nil, fmt.Errorf("no access token on file for account %d: %w", payload.AccountID, ErrUnauthorized)
	case 1:
	default:
		// At most one access token per account; more means the store and
		// this code disagree about which credential to trust.
		return nil, fmt.Errorf("account %d has %d access tokens on file: %w", payload.AccountID, len(tokens), ErrSystem)
	}

	stored := tokens[0]
	if !TokensEqual(token, stored.Token) {
		// Structurally valid but no longer the token on file: revoked or
		// regenerated since issuance.
		return nil, fmt.Errorf("access token revoked for account %d: %w", payload.AccountID, ErrUnauthorized)
	}

	account, err := r.store.GetAccount(ctx, payload.AccountID)
	if err != nil {
		r.logger.WithError(err).WithField("account_id", payload.AccountID).Error("failed to fetch account")
		return nil, fmt.Errorf("%w: get account: %v", ErrStorage, err)
	}

	sess := &Session{
		ID:         account.ID,
		Name:       account.Name,
		Email:      account.Email,
		Token:      stored.Token,
		OAuthToken: string(payload.Token),
	}

	// Cache under the stored token value: it compares equal to the
	// presented one modulo padding, and the session's Token field must be
	// the exact key of its cache entry.
	r.cacheSession(ctx, stored.Token, sess, 0)

	return sess, nil
}

// decodePayload structurally decodes an access token, memoizing successes.
func (r *Resolver) decodePayload(token string) (*AccessTokenPayload, error) {
	if payload, ok := r.decoded.Get(token); ok {
		return payload, nil
	}
	payload, err := DecodeAccessToken(token)
	if err != nil {
		return nil, err
	}
	r.decoded.Add(token, payload)
	return payload, nil
}

// cacheSession stores a session, logging rather than failing on error: the
// resolution already succeeded and the next request will simply miss.
func (r *Resolver) cacheSession(ctx context.Context, token string, sess *Session, ttl time.Duration) {
	if err := r.cache.Set(ctx, token, sess, ttl); err != nil {
		r.logger.WithError(err).Warn("failed to cache session")
	}
}
