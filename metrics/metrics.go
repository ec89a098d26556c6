// Package metrics exposes Prometheus instrumentation for the collector
package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	PollsTotal     prometheus.Counter
	PollErrors     prometheus.Counter
	SnapshotsSaved prometheus.Counter

	VehiclesTracked prometheus.Gauge

	RequestDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		PollsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buswatch_api_polls_total",
			Help: "Total requests sent to the transit API.",
		}),
		PollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buswatch_api_poll_errors_total",
			Help: "Total failed transit API requests.",
		}),
		SnapshotsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buswatch_snapshots_saved_total",
			Help: "Total live position snapshots written to disk.",
		}),
		VehiclesTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buswatch_vehicles_tracked",
			Help: "Vehicles present in the most recent live snapshot.",
		}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "buswatch_api_request_duration_seconds",
			Help:    "Duration of transit API requests.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}

	reg.MustRegister(
		c.PollsTotal, c.PollErrors, c.SnapshotsSaved,
		c.VehiclesTracked, c.RequestDuration,
	)
	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
