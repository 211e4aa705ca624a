// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/contactbook/internal/platform/metrics"
)

/*
TestMetrics_Counters checks that each recorder lands in its own series.
*/
func TestMetrics_Counters(t *testing.T) {
	m := metrics.New()

	m.ObserveHTTP(http.MethodGet, "/api/contacts", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "/api/contacts", http.StatusOK, 30*time.Millisecond)
	m.CacheLookup(metrics.CacheHit)
	m.CacheLookup(metrics.CacheMiss)
	m.CacheLookup(metrics.CacheMiss)
	m.AuthEvent("login", "success")
	m.MailDelivery("log", metrics.MailSent)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/contacts", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IdentityCacheLookups.WithLabelValues(metrics.CacheHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IdentityCacheLookups.WithLabelValues(metrics.CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEventsTotal.WithLabelValues("login", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MailDeliveriesTotal.WithLabelValues("log", metrics.MailSent)))
}

/*
TestMetrics_NilIsNoop allows components to run without a registry.
*/
func TestMetrics_NilIsNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.CacheLookup(metrics.CacheHit)
		m.AuthEvent("login", "success")
		m.MailDelivery("log", metrics.MailSent)
	})

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

/*
TestMetrics_Handler exposes the registered series.
*/
func TestMetrics_Handler(t *testing.T) {
	m := metrics.New()
	m.AuthEvent("signup", "success")

	server := httptest.NewServer(m.Handler())
	defer server.Close()

	response, err := http.Get(server.URL)
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `contactbook_auth_events_total{event="signup",outcome="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
