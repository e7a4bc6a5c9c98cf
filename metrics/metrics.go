// Copyright 2026 The MediMate Authors.
// Licensed under the LGPLv3, see LICENCE file for details.

// Package metrics exposes the hub's internal state as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/medimate/datahub"
)

// Collector implements datahub.Metrics.
type Collector struct {
	published *prometheus.CounterVec
	queued    *prometheus.GaugeVec
	consumed  *prometheus.HistogramVec
	failed    *prometheus.CounterVec
}

var _ datahub.Metrics = (*Collector)(nil)

// NewCollector creates the hub metrics and registers them with the
// registerer.
func NewCollector(registerer prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "datahub",
				Name:      "events_published_total",
				Help:      "Total number of events published, by event.",
			},
			[]string{"event"},
		),
		queued: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "datahub",
				Name:      "subscriber_queue_length",
				Help:      "Number of events waiting to be handled, by subscriber.",
			},
			[]string{"subscriber"},
		),
		consumed: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "datahub",
				Name:      "event_consume_seconds",
				Help:      "Time from an event being queued to its callback returning, by subscriber.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // from 0.1ms to ~26s
			},
			[]string{"subscriber"},
		),
		failed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "datahub",
				Name:      "callback_failures_total",
				Help:      "Total number of callbacks that returned an error or panicked, by subscriber.",
			},
			[]string{"subscriber"},
		),
	}
	for _, collector := range []prometheus.Collector{c.published, c.queued, c.consumed, c.failed} {
		if err := registerer.Register(collector); err != nil {
			return nil, errors.Annotate(err, "registering hub metrics")
		}
	}
	return c, nil
}

// Published implements datahub.Metrics.
func (c *Collector) Published(event string) {
	c.published.WithLabelValues(event).Inc()
}

// Enqueued implements datahub.Metrics.
func (c *Collector) Enqueued(subscriber string) {
	c.queued.WithLabelValues(subscriber).Inc()
}

// Dequeued implements datahub.Metrics.
func (c *Collector) Dequeued(subscriber string) {
	c.queued.WithLabelValues(subscriber).Dec()
}

// Consumed implements datahub.Metrics.
func (c *Collector) Consumed(subscriber string, duration time.Duration) {
	c.consumed.WithLabelValues(subscriber).Observe(duration.Seconds())
}

// Failed implements datahub.Metrics.
func (c *Collector) Failed(subscriber string) {
	c.failed.WithLabelValues(subscriber).Inc()
}
