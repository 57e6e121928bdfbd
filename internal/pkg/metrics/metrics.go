// Package metrics exposes the Prometheus collectors shared by the API,
// the stats worker and the notifier.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "product_reviews"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del|error
	)
	SampledReviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "random_reviews_selected_total", Help: "Reviews returned by the random sampler."},
		[]string{"kind"}, // kind: with_images|without_images
	)
	StatsRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "stats_refreshes_total", Help: "Review stats recomputations."},
		[]string{"source", "result"}, // source: api|worker, result: ok|error
	)
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "events_published_total", Help: "Review events published to NATS."},
		[]string{"subject", "result"},
	)
)

// InitRegistry returns a fresh registry carrying every collector of this package
// plus the Go runtime and process collectors.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency, CacheEvents, SampledReviews, StatsRefreshes, EventsPublished,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveSample(withImages, withoutImages int) {
	SampledReviews.WithLabelValues("with_images").Add(float64(withImages))
	SampledReviews.WithLabelValues("without_images").Add(float64(withoutImages))
}

func ObserveStatsRefresh(source string, err error) {
	StatsRefreshes.WithLabelValues(source, result(err)).Inc()
}

func ObservePublish(subject string, err error) {
	EventsPublished.WithLabelValues(subject, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
