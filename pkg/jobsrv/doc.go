// Package jobsrv routes protobuf messages to the downstream job-processing service.
//
// The router is a thin unary-invoke wrapper over a shared gRPC connection:
// serialize the request, deliver, deserialize the typed response. Any
// transport, encoding, or remote failure surfaces as ErrRoute so callers see
// a single error kind. Each invocation bumps a prometheus counter.
package jobsrv
