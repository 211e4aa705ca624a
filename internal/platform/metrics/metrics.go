// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics exposes the Prometheus collectors of the API.
//
// A nil [*Metrics] is valid: every method becomes a no-op, so components can
// be constructed in tests without a registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contactbook"

// Cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Mail delivery outcomes.
const (
	MailSent    = "sent"
	MailFailed  = "failed"
	MailDropped = "dropped"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	IdentityCacheLookups *prometheus.CounterVec
	AuthEventsTotal      *prometheus.CounterVec
	MailDeliveriesTotal  *prometheus.CounterVec
}

// New creates the collectors and registers them, plus Go runtime and process
// collectors, on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		IdentityCacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "identity_cache_lookups_total",
				Help:      "Identity cache lookups by outcome",
			},
			[]string{"result"},
		),
		AuthEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_events_total",
				Help:      "Authentication flow outcomes",
			},
			[]string{"event", "outcome"},
		),
		MailDeliveriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mail_deliveries_total",
				Help:      "Outbound mail by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.IdentityCacheLookups,
		m.AuthEventsTotal,
		m.MailDeliveriesTotal,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// CacheLookup records an identity cache outcome.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.IdentityCacheLookups.WithLabelValues(result).Inc()
}

// AuthEvent records an authentication flow outcome, e.g. ("login", "invalid_password").
func (m *Metrics) AuthEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.AuthEventsTotal.WithLabelValues(event, outcome).Inc()
}

// MailDelivery records an outbound mail outcome.
func (m *Metrics) MailDelivery(provider, outcome string) {
	if m == nil {
		return
	}
	m.MailDeliveriesTotal.WithLabelValues(provider, outcome).Inc()
}
