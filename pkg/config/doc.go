// Package config provides application configuration management from environment variables.
//
// # Overview
//
// Configuration comes from environment variables with sensible defaults; a
// YAML file named by DEPOT_CONFIG overlays the environment-derived settings.
//
// # Configuration Structure
//
// Server settings:
//
//	DEPOT_HOST="0.0.0.0"
//	DEPOT_PORT="9636"
//	DEPOT_READ_TIMEOUT="15s"
//	DEPOT_WRITE_TIMEOUT="15s"
//
// Session settings:
//
//	DEPOT_REDIS_URL="redis://localhost:6379"
//	DEPOT_POSTGRES_URL="postgres://localhost/depot?sslmode=disable"
//	DEPOT_POSTGRES_MAX_CONNS="20"
//	DEPOT_SESSION_TTL="72h"
//	DEPOT_GITHUB_API_URL=""       # empty selects api.github.com
//	DEPOT_OIDC_ISSUER_URL=""
//	DEPOT_JOBSRV_ADDR="jobsrv:5566"
//	DEPOT_FUNC_TEST               # presence enables fixture mode; value unused
//
// Observability settings:
//
//	DEPOT_LOG_LEVEL="info"  # debug, info, warn, error
//
// # Usage Example
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
package config
