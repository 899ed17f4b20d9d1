// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package router

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Navigations counts guard decisions per requested route.
// Use RegisterMetrics to register this with a Prometheus registry.
var Navigations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authclient_navigations_total",
		Help: "Total number of route decisions by route and verdict",
	},
	[]string{"route", "decision"},
)

// RegisterMetrics registers router metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Navigations)
}

// RecordNavigation increments the navigation counter.
// route is the route name, or its path when unnamed.
func RecordNavigation(route string, verdict Verdict) {
	Navigations.WithLabelValues(route, string(verdict)).Inc()
}
