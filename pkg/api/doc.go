// Package api assembles the depot HTTP surface.
//
// Routes:
//
//	GET  /healthz                   liveness of cache and store
//	GET  /metrics                   prometheus exposition
//	POST /v1/authenticate           provider token -> depot session
//	GET  /v1/session                the caller's resolved session
//	POST /v1/jobs/{id}/dispatch     forward a dispatch to the job service
//
// Every route runs behind the request-id and authentication middleware;
// /v1/session and job dispatch additionally require a resolved session.
package api
