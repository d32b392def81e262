package grpc_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/smartshelf/shelfweb/pkg/backend"
	"github.com/smartshelf/shelfweb/pkg/grpc"
	"github.com/smartshelf/shelfweb/pkg/testkit"
)

func dial(t *testing.T, srv *grpc.Server) grpc_health_v1.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 16)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := ggrpc.NewClient("passthrough:///bufnet",
		ggrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		ggrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return grpc_health_v1.NewHealthClient(conn)
}

func TestHealthFollowsProbe(t *testing.T) {
	var probeErr error
	srv := grpc.New(func(context.Context) error { return probeErr })
	client := dial(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: grpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	probeErr = errors.New("down")
	assert.Error(t, srv.Refresh(ctx))

	resp, err = client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: grpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestBackendProbe(t *testing.T) {
	mt := testkit.Install(t)
	probe := grpc.BackendProbe(backend.Config{BaseURL: "http://backend.test/api", Timeout: time.Second})

	mt.Stub("GET", "/api/products", 401, nil)
	assert.NoError(t, probe(context.Background()))

	mt.StubError("GET", "/api/products", errors.New("connection refused"))
	assert.ErrorIs(t, probe(context.Background()), backend.ErrUnavailable)
}

type probeMock struct{ mock.Mock }

func (m *probeMock) Check(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestWatchRefreshesUntilCancelled(t *testing.T) {
	m := &probeMock{}
	ticks := make(chan struct{}, 8)
	m.On("Check", mock.Anything).Return(nil).Run(func(mock.Arguments) {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	srv := grpc.New(m.Check)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Watch(ctx, 5*time.Millisecond)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatal("probe was not called")
		}
	}
	cancel()
	<-done
	m.AssertExpectations(t)
}
