package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// RequestsTotal counts API requests by route and status code.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "platefinder",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of API requests, labeled by route and status code.",
	}, []string{"route", "code"})

	// RequestDurationSeconds is the time spent serving a request.
	RequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "platefinder",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Time to serve an API request.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"route"})

	// ClassificationsTotal counts classify-image results by matched cuisine.
	ClassificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "platefinder",
		Subsystem: "classifier",
		Name:      "classifications_total",
		Help:      "Total number of classified images, labeled by matched cuisine (\"none\" when unmatched).",
	}, []string{"cuisine"})

	// GeocodeTotal counts geocoding attempts by result.
	GeocodeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "platefinder",
		Subsystem: "geocoder",
		Name:      "lookups_total",
		Help:      "Total number of geocoding lookups, labeled by result.",
	}, []string{"result"})

	// GeocodeInFlight is the number of lookups currently running.
	GeocodeInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "platefinder",
		Subsystem: "geocoder",
		Name:      "in_flight",
		Help:      "Current number of geocoding lookups being processed by worker goroutines.",
	})
)

// Register registers the metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestDurationSeconds,
			ClassificationsTotal,
			GeocodeTotal,
			GeocodeInFlight,
		)
	})
}

// ObserveClassification records a classify-image outcome.
func ObserveClassification(cuisine string) {
	if cuisine == "" {
		cuisine = "none"
	}
	ClassificationsTotal.WithLabelValues(cuisine).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument records the request count and latency of next under route.
func Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		RequestDurationSeconds.WithLabelValues(route).Observe(time.Since(startedAt).Seconds())
	})
}
