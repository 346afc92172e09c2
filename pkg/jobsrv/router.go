package jobsrv

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/proto"
)

// ErrRoute is the single error kind routing failures collapse into:
// transport trouble, encoding trouble, and remote errors all wrap it.
var ErrRoute = errors.New("job service routing failure")

// Router forwards protobuf request messages to the downstream job service
// and fills in the typed response.
type Router struct {
	conn    *grpc.ClientConn
	counter prometheus.Counter
}

// Dial connects to the job service. The connection is lazy; failures show up
// on the first Route call.
func Dial(addr string, counter prometheus.Counter) (*Router, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to dial job service at %s: %w", addr, err)
	}
	return NewRouter(conn, counter), nil
}

// NewRouter wraps an established connection (tests use bufconn here).
func NewRouter(conn *grpc.ClientConn, counter prometheus.Counter) *Router {
	return &Router{conn: conn, counter: counter}
}

// Route invokes a unary method, e.g. "/depot.jobsrv.JobSrv/Dispatch". The
// request counter is incremented unconditionally before the call; it is a
// side effect only and never affects the outcome.
func (r *Router) Route(ctx context.Context, method string, req, resp proto.Message) error {
	r.counter.Inc()
	if err := r.conn.Invoke(ctx, method, req, resp); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRoute, method, err)
	}
	return nil
}

// Close tears down the underlying connection.
func (r *Router) Close() error {
	return r.conn.Close()
}
