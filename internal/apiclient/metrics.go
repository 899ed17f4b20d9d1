// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StatusTransportError labels requests that never produced a response.
const StatusTransportError = "transport_error"

// APIRequests counts backend requests.
// Use RegisterMetrics to register this with a Prometheus registry.
var APIRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authclient_api_requests_total",
		Help: "Total number of backend API requests by method, path and status class",
	},
	[]string{"method", "path", "status"},
)

// APIRequestDuration is the histogram of backend request latency.
// Use RegisterMetrics to register this with a Prometheus registry.
var APIRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "authclient_api_request_duration_seconds",
		Help:    "Backend API request duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"method", "path"},
)

// RegisterMetrics registers apiclient metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(APIRequests)
	reg.MustRegister(APIRequestDuration)
}

func recordRequest(method, path, status string, d time.Duration) {
	APIRequests.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// statusClass collapses a status code to "2xx", "4xx" and so on.
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
