package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/buildforge/depot/pkg/jobsrv"
	"github.com/buildforge/depot/pkg/middleware"
	"github.com/buildforge/depot/pkg/oauth"
	"github.com/buildforge/depot/pkg/observability"
	"github.com/buildforge/depot/pkg/session"
)

// Pinger is anything that can report backend liveness (cache, store).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the depot API surface: health, metrics, session introspection,
// OAuth issuance, and job dispatch.
type Server struct {
	resolver  *session.Resolver
	providers map[string]oauth.Provider
	router    *jobsrv.Router
	logger    *observability.Logger
	registry  *prometheus.Registry
	backends  map[string]Pinger
}

// NewServer assembles the API. providers maps the provider name (as used by
// session.ParseProvider) to its client; router may be nil when no job
// service is configured.
func NewServer(resolver *session.Resolver, providers map[string]oauth.Provider, router *jobsrv.Router, logger *observability.Logger, registry *prometheus.Registry, backends map[string]Pinger) *Server {
	return &Server{
		resolver:  resolver,
		providers: providers,
		router:    router,
		logger:    logger,
		registry:  registry,
		backends:  backends,
	}
}

// Handler builds the mux router with middleware applied.
func (s *Server) Handler() http.Handler {
	auth := middleware.NewAuthentication(s.resolver, s.logger)

	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(auth.Handler)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", observability.Handler(s.registry)).Methods(http.MethodGet)
	r.HandleFunc("/v1/authenticate", s.handleAuthenticate).Methods(http.MethodPost)
	r.Handle("/v1/session", middleware.RequireSession(http.HandlerFunc(s.handleSession))).Methods(http.MethodGet)
	r.Handle("/v1/jobs/{id}/dispatch", middleware.RequireSession(http.HandlerFunc(s.handleDispatchJob))).Methods(http.MethodPost)

	return r
}

// handleHealth pings every backend and reports per-backend status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(s.backends))
	for name, backend := range s.backends {
		if err := backend.Ping(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}
	writeJSON(w, status, checks)
}

// handleSession returns the resolved session for the presented token.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.SessionFromRequest(r))
}

type authenticateRequest struct {
	Provider      string `json:"provider"`
	ProviderToken string `json:"provider_token"`
}

// handleAuthenticate exchanges a raw provider token for a depot session: the
// provider reports the profile behind the token, and the issuer mints and
// caches the session. The redirect/callback dance that produced the provider
// token is the caller's business.
func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	provider, ok := s.providers[req.Provider]
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported provider")
		return
	}

	user, err := provider.UserInfo(r.Context(), req.ProviderToken)
	if err != nil {
		s.logger.WithError(err).WithField("provider", req.Provider).Warn("provider profile fetch failed")
		writeError(w, http.StatusUnauthorized, "provider rejected token")
		return
	}

	sess, err := s.resolver.IssueOAuthSession(r.Context(), req.ProviderToken, user, provider.Name())
	if err != nil {
		switch {
		case errors.Is(err, session.ErrStorage):
			writeError(w, http.StatusServiceUnavailable, "backing store unavailable")
		default:
			s.logger.WithError(err).Error("session issuance failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// handleDispatchJob forwards a dispatch request for the named job to the job
// service and relays its reported state.
func (s *Server) handleDispatchJob(w http.ResponseWriter, r *http.Request) {
	if s.router == nil {
		writeError(w, http.StatusServiceUnavailable, "job service not configured")
		return
	}

	jobID := mux.Vars(r)["id"]
	var state wrapperspb.StringValue
	if err := s.router.Route(r.Context(), "/depot.jobsrv.JobSrv/Dispatch", wrapperspb.String(jobID), &state); err != nil {
		s.logger.WithError(err).WithField("job_id", jobID).Error("job dispatch failed")
		writeError(w, http.StatusServiceUnavailable, "job service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": jobID, "state": state.GetValue()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
