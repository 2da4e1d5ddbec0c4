// Package metrics
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the fragmenter service.
type Metrics struct {
	registry         *prometheus.Registry
	requestsTotal    prometheus.Counter
	cuesPushedTotal  prometheus.Counter
	fragmentsWritten prometheus.Counter
	activeTracks     prometheus.Gauge
	errorsTotal      prometheus.Counter
}

// New creates and registers Prometheus metrics for the fragmenter service.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vttfrag_requests_total",
		Help: "Total number of HTTP requests received",
	})
	cuesPushedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vttfrag_cues_pushed_total",
		Help: "Total number of cues pushed into a track's fragmenter",
	})
	fragmentsWritten := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vttfrag_fragments_written_total",
		Help: "Total number of moof/mdat fragments assembled on flush",
	})
	activeTracks := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vttfrag_active_tracks",
		Help: "Number of tracks currently tracked in memory",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vttfrag_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		cuesPushedTotal,
		fragmentsWritten,
		activeTracks,
		errorsTotal,
	)

	return &Metrics{
		registry:         registry,
		requestsTotal:    requestsTotal,
		cuesPushedTotal:  cuesPushedTotal,
		fragmentsWritten: fragmentsWritten,
		activeTracks:     activeTracks,
		errorsTotal:      errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncCuesPushed increments the cues-pushed counter.
func (m *Metrics) IncCuesPushed() {
	m.cuesPushedTotal.Inc()
}

// IncFragmentsWritten increments the fragments-written counter.
func (m *Metrics) IncFragmentsWritten() {
	m.fragmentsWritten.Inc()
}

// SetActiveTracks sets the active tracks gauge.
func (m *Metrics) SetActiveTracks(n int) {
	m.activeTracks.Set(float64(n))
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g.
// active track count).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
