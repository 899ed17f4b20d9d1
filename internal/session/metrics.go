// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package session

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Action labels.
const (
	ActionLogin     = "login"
	ActionRegister  = "register"
	ActionFetchUser = "fetch_user"
	ActionLogout    = "logout"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
	OutcomeStale   = "stale"
)

// Transitions counts session actions by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var Transitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authclient_session_transitions_total",
		Help: "Total number of session actions by action and outcome",
	},
	[]string{"action", "outcome"},
)

// AuthenticatedGauge is 1 while the most recently changed session holds a token.
var AuthenticatedGauge = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "authclient_session_authenticated",
		Help: "Whether the session currently holds a bearer token (1) or not (0)",
	},
)

// RegisterMetrics registers session metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Transitions)
	reg.MustRegister(AuthenticatedGauge)
}

func recordTransition(action, outcome string) {
	Transitions.WithLabelValues(action, outcome).Inc()
}

func setAuthenticatedGauge(s State) {
	if s.IsAuthenticated() {
		AuthenticatedGauge.Set(1)
		return
	}
	AuthenticatedGauge.Set(0)
}
