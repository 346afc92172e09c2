package jobsrv

import (
	"context"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const bufSize = 1 << 20

// jobSrvDesc is a hand-rolled unary echo service standing in for the real
// job service.
var jobSrvDesc = grpc.ServiceDesc{
	ServiceName: "depot.jobsrv.JobSrv",
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Dispatch",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				in := new(wrapperspb.StringValue)
				if err := dec(in); err != nil {
					return nil, err
				}
				return wrapperspb.String("dispatched:" + in.GetValue()), nil
			},
		},
	},
}

func startJobSrv(t *testing.T) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(bufSize)
	srv := grpc.NewServer()
	srv.RegisterService(&jobSrvDesc, struct{}{})
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, addr string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func newTestCounter() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Name: "test_route_messages_total"})
}

func TestRouter_Route(t *testing.T) {
	counter := newTestCounter()
	router := NewRouter(startJobSrv(t), counter)

	var resp wrapperspb.StringValue
	err := router.Route(context.Background(), "/depot.jobsrv.JobSrv/Dispatch", wrapperspb.String("job-17"), &resp)
	require.NoError(t, err)
	assert.Equal(t, "dispatched:job-17", resp.GetValue())
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))
}

func TestRouter_Route_RemoteError(t *testing.T) {
	counter := newTestCounter()
	router := NewRouter(startJobSrv(t), counter)

	var resp wrapperspb.StringValue
	err := router.Route(context.Background(), "/depot.jobsrv.JobSrv/NoSuchMethod", wrapperspb.String("x"), &resp)
	require.Error(t, err)
	// Remote and transport failures collapse into the one routing kind
	assert.ErrorIs(t, err, ErrRoute)
}

func TestRouter_CounterCountsFailures(t *testing.T) {
	counter := newTestCounter()
	router := NewRouter(startJobSrv(t), counter)

	var resp wrapperspb.StringValue
	_ = router.Route(context.Background(), "/depot.jobsrv.JobSrv/NoSuchMethod", wrapperspb.String("x"), &resp)
	_ = router.Route(context.Background(), "/depot.jobsrv.JobSrv/Dispatch", wrapperspb.String("y"), &resp)

	// The counter is a side effect of invocation, success or not
	assert.Equal(t, float64(2), testutil.ToFloat64(counter))
}
