package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/buildforge/depot/pkg/api"
	"github.com/buildforge/depot/pkg/config"
	"github.com/buildforge/depot/pkg/jobsrv"
	"github.com/buildforge/depot/pkg/oauth"
	"github.com/buildforge/depot/pkg/observability"
	"github.com/buildforge/depot/pkg/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.ParseLogLevel(cfg.Log.Level), os.Stdout)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	cache, err := session.NewRedisCache(cfg.Session.RedisURL)
	if err != nil {
		logger.WithError(err).Error("failed to connect to redis")
		os.Exit(1)
	}
	defer cache.Close()

	store, err := session.NewPostgresStore(cfg.Session.PostgresURL, cfg.Session.PostgresMaxConns)
	if err != nil {
		logger.WithError(err).Error("failed to connect to postgres")
		os.Exit(1)
	}
	defer store.Close()

	resolver, err := session.NewResolver(session.Config{
		SessionTTL:  cfg.Session.SessionTTL,
		FixtureMode: cfg.Session.FixtureMode,
	}, cache, store, logger, metrics)
	if err != nil {
		logger.WithError(err).Error("failed to build resolver")
		os.Exit(1)
	}
	if cfg.Session.FixtureMode {
		logger.Warn("fixture mode enabled: all authentication is short-circuited")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers := map[string]oauth.Provider{
		"GitHub": oauth.NewGitHubProvider(cfg.Session.GitHubAPIURL),
	}
	if cfg.Session.OIDCIssuerURL != "" {
		oidcProvider, err := oauth.NewOIDCProvider(ctx, cfg.Session.OIDCIssuerURL)
		if err != nil {
			logger.WithError(err).Error("failed to configure oidc provider")
			os.Exit(1)
		}
		providers["OIDC"] = oidcProvider
	}

	var router *jobsrv.Router
	if cfg.Session.JobsrvAddr != "" {
		router, err = jobsrv.Dial(cfg.Session.JobsrvAddr, metrics.RouteMessagesTotal)
		if err != nil {
			logger.WithError(err).Error("failed to dial job service")
			os.Exit(1)
		}
		defer router.Close()
	}

	backends := map[string]api.Pinger{
		"redis":    cache,
		"postgres": store,
	}
	server := api.NewServer(resolver, providers, router, logger, registry, backends)

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", httpServer.Addr).Info("depot api listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}
