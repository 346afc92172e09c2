package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildforge/depot/pkg/oauth"
	"github.com/buildforge/depot/pkg/observability"
	"github.com/buildforge/depot/pkg/session"
)

type memCache struct {
	entries map[string]*session.Session
}

func (c *memCache) Get(ctx context.Context, token string) (*session.Session, error) {
	return c.entries[token], nil
}

func (c *memCache) Set(ctx context.Context, token string, sess *session.Session, ttl time.Duration) error {
	c.entries[token] = sess
	return nil
}

type memStore struct {
	nextID uint64
	byName map[string]*session.Account
}

func (s *memStore) ListAccountTokens(ctx context.Context, accountID uint64) ([]session.AccountToken, error) {
	return nil, nil
}

func (s *memStore) GetAccount(ctx context.Context, accountID uint64) (*session.Account, error) {
	return nil, errors.New("not found")
}

func (s *memStore) FindOrCreateAccount(ctx context.Context, name, email string) (*session.Account, error) {
	if account, ok := s.byName[name]; ok {
		return account, nil
	}
	s.nextID++
	account := &session.Account{ID: s.nextID, Name: name, Email: email}
	s.byName[name] = account
	return account, nil
}

type staticProvider struct {
	user *oauth.User
	err  error
}

func (p *staticProvider) Name() string { return "GitHub" }

func (p *staticProvider) UserInfo(ctx context.Context, token string) (*oauth.User, error) {
	return p.user, p.err
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(t *testing.T, cfg session.Config, provider oauth.Provider, backends map[string]Pinger) *Server {
	t.Helper()
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	cache := &memCache{entries: make(map[string]*session.Session)}
	store := &memStore{byName: make(map[string]*session.Account)}
	resolver, err := session.NewResolver(cfg, cache, store, logger, metrics)
	require.NoError(t, err)

	providers := map[string]oauth.Provider{}
	if provider != nil {
		providers["GitHub"] = provider
	}
	return NewServer(resolver, providers, nil, logger, registry, backends)
}

func TestHealthz(t *testing.T) {
	ok := pingFunc(func(ctx context.Context) error { return nil })
	down := pingFunc(func(ctx context.Context) error { return errors.New("unreachable") })

	t.Run("all healthy", func(t *testing.T) {
		srv := newTestServer(t, session.Config{}, nil, map[string]Pinger{"redis": ok, "postgres": ok})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("backend down", func(t *testing.T) {
		srv := newTestServer(t, session.Config{}, nil, map[string]Pinger{"redis": ok, "postgres": down})
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var checks map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &checks))
		assert.Equal(t, "ok", checks["redis"])
		assert.Equal(t, "unreachable", checks["postgres"])
	})
}

func TestAuthenticateEndpoint(t *testing.T) {
	provider := &staticProvider{user: &oauth.User{ID: "734091", Username: "alice", Email: "alice@example.com"}}
	srv := newTestServer(t, session.Config{}, provider, nil)

	body := strings.NewReader(`{"provider": "GitHub", "provider_token": "gho_tok"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/authenticate", body))
	require.Equal(t, http.StatusOK, rec.Code)

	var sess session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, "alice", sess.Name)
	assert.NotEmpty(t, sess.Token)

	// The issued token now resolves through the normal path
	req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var whoami session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &whoami))
	assert.Equal(t, sess.ID, whoami.ID)
	assert.Equal(t, "alice", whoami.Name)
}

func TestAuthenticateEndpoint_UnsupportedProvider(t *testing.T) {
	srv := newTestServer(t, session.Config{}, nil, nil)

	body := strings.NewReader(`{"provider": "MySpace", "provider_token": "x"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/authenticate", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthenticateEndpoint_ProviderRejectsToken(t *testing.T) {
	provider := &staticProvider{err: errors.New("401 from provider")}
	srv := newTestServer(t, session.Config{}, provider, nil)

	body := strings.NewReader(`{"provider": "GitHub", "provider_token": "bad"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/authenticate", body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionEndpoint_RequiresAuth(t *testing.T) {
	srv := newTestServer(t, session.Config{}, nil, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/session", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionEndpoint_FixtureMode(t *testing.T) {
	srv := newTestServer(t, session.Config{FixtureMode: true}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
	req.Header.Set("Authorization", "Bearer mystique")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var sess session.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	assert.Equal(t, "mystique", sess.Name)
	assert.Equal(t, "mystique@example.com", sess.Email)
}

func TestDispatchJob_NoRouterConfigured(t *testing.T) {
	srv := newTestServer(t, session.Config{FixtureMode: true}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs/17/dispatch", nil)
	req.Header.Set("Authorization", "Bearer bobo")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, session.Config{}, nil, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
