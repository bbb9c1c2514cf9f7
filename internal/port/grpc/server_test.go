package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/cart-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(context.Context) error { return p.err }

func TestServer_ProbeFollowsStore(t *testing.T) {
	store := &stubPinger{}
	srv := NewServer(logger.NewNopLogger(), "0", time.Minute, store)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, srv.Probe(context.Background()))

	resp, err := srv.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: CartServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	store.err = errors.New("redis down")
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, srv.Probe(context.Background()))

	resp, err = srv.health.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestServer_WatchStoreStopsWithContext(t *testing.T) {
	srv := NewServer(logger.NewNopLogger(), "0", time.Minute, &stubPinger{})
	srv.probeInterval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		srv.WatchStore(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WatchStore did not return after cancel")
	}
}
