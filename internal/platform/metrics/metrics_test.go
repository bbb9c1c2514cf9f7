package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation_CountsByOutcome(t *testing.T) {
	m := NewMetricsManager("storefront")

	m.ObserveOperation("add_product", time.Now(), nil)
	m.ObserveOperation("add_product", time.Now(), errors.New("not found"))
	m.ObserveOperation("add_product", time.Now(), errors.New("not found"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartOperationsTotal.WithLabelValues("add_product", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CartOperationsTotal.WithLabelValues("add_product", OutcomeFailure)))
}

func TestNewServer_ExposesRegistry(t *testing.T) {
	m := NewMetricsManager("storefront")
	m.SnapshotCorrupt.Inc()

	srv := NewServer("0", m.Registry)
	require.NotNil(t, srv)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "storefront_cart_snapshot_corrupt_total 1")
}

func TestNewServer_DisabledWithoutPort(t *testing.T) {
	assert.Nil(t, NewServer("", NewMetricsManager("x").Registry))
}
