package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
)

func TestRegistryServesCollectors(t *testing.T) {
	reg := metrics.InitRegistry()

	metrics.ObserveHTTP("/store/product-reviews/random", http.MethodGet, http.StatusOK, 12*time.Millisecond)
	metrics.ObserveCache("product_reviews", "hit")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body, _ := io.ReadAll(rr.Body)
	assert.Contains(t, string(body), "product_reviews_http_requests_total")
	assert.Contains(t, string(body), "product_reviews_cache_events_total")
}

func TestObserveSample(t *testing.T) {
	before := testutil.ToFloat64(metrics.SampledReviews.WithLabelValues("with_images"))

	metrics.ObserveSample(3, 2)

	after := testutil.ToFloat64(metrics.SampledReviews.WithLabelValues("with_images"))
	assert.Equal(t, 3.0, after-before)
}

func TestObserveStatsRefresh_LabelsResult(t *testing.T) {
	okBefore := testutil.ToFloat64(metrics.StatsRefreshes.WithLabelValues("worker", "ok"))
	errBefore := testutil.ToFloat64(metrics.StatsRefreshes.WithLabelValues("worker", "error"))

	metrics.ObserveStatsRefresh("worker", nil)
	metrics.ObserveStatsRefresh("worker", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StatsRefreshes.WithLabelValues("worker", "ok"))-okBefore)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.StatsRefreshes.WithLabelValues("worker", "error"))-errBefore)
}
