// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/authclient/internal/config"
	"github.com/holomush/authclient/internal/storage"
)

// Deps contains injectable dependencies for the session commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// ConfigLoader resolves the configuration.
	// Default: config.Load
	ConfigLoader func(opts config.Options) (*config.Config, error)

	// StorageOpener opens the session store.
	// Default: storage.Open
	StorageOpener func(ctx context.Context, cfg storage.Config) (storage.Store, error)

	// HTTPClient is used for backend calls. Its Timeout is overridden by
	// the configured timeout.
	// Default: a fresh http.Client
	HTTPClient *http.Client

	// TracerProvider instruments backend calls and navigations.
	// Default: the global OpenTelemetry provider
	TracerProvider trace.TracerProvider

	// Now returns the current time, for token expiry display.
	// Default: time.Now
	Now func() time.Time
}

func (d *Deps) withDefaults() Deps {
	var out Deps
	if d != nil {
		out = *d
	}
	if out.ConfigLoader == nil {
		out.ConfigLoader = config.Load
	}
	if out.StorageOpener == nil {
		out.StorageOpener = storage.Open
	}
	if out.HTTPClient == nil {
		out.HTTPClient = &http.Client{}
	}
	if out.TracerProvider == nil {
		out.TracerProvider = otel.GetTracerProvider()
	}
	if out.Now == nil {
		out.Now = time.Now
	}
	return out
}
