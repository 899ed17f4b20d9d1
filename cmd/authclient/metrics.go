// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"

	"github.com/holomush/authclient/internal/apiclient"
	"github.com/holomush/authclient/internal/router"
	"github.com/holomush/authclient/internal/session"
)

// newRegistry returns a registry holding every authclient collector.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	apiclient.RegisterMetrics(reg)
	session.RegisterMetrics(reg)
	router.RegisterMetrics(reg)
	return reg
}

// writeMetrics dumps the registry in the node-exporter textfile format.
func writeMetrics(reg *prometheus.Registry, path string) error {
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return oops.Code("METRICS_WRITE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}
