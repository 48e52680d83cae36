// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package request

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides Prometheus metrics for request exchanges. A nil *Metrics
// records nothing.
type Metrics struct {
	exchanges *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	inFlight  prometheus.Gauge
}

// NewMetrics registers request metrics with registry, panicking if they are
// already registered.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		exchanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classkit_request_exchanges_total",
				Help: "Total number of finished request exchanges, by outcome",
			},
			[]string{"method", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "classkit_request_exchange_duration_seconds",
				Help:    "Duration of request exchanges in seconds, by outcome",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "outcome"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "classkit_request_exchanges_in_flight",
				Help: "Number of request exchanges currently in flight",
			},
		),
	}
}

func (x *Metrics) start() {
	if x == nil {
		return
	}
	x.inFlight.Inc()
}

func (x *Metrics) end(method string, outcome State, duration time.Duration) {
	if x == nil {
		return
	}
	x.inFlight.Dec()
	x.exchanges.WithLabelValues(method, outcome.String()).Inc()
	x.duration.WithLabelValues(method, outcome.String()).Observe(duration.Seconds())
}
