// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/authclient/internal/apiclient"
	"github.com/holomush/authclient/internal/config"
	"github.com/holomush/authclient/internal/logging"
	"github.com/holomush/authclient/internal/notify"
	"github.com/holomush/authclient/internal/router"
	"github.com/holomush/authclient/internal/session"
	"github.com/holomush/authclient/internal/storage"
	"github.com/holomush/authclient/pkg/errutil"
)

const serviceName = "authclient"

// app is the wired client stack for one command run.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   *apiclient.Client
	store    storage.Store
	session  *session.Session
	router   *router.Router
	registry *prometheus.Registry
	now      func() time.Time
}

// newApp loads configuration and wires storage, the HTTP client, the
// session and the router. The caller must call close.
func newApp(cmd *cobra.Command, flags *globalFlags, deps *Deps) (*app, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d := deps.withDefaults()

	cfg, err := d.ConfigLoader(config.Options{
		File:  flags.configFile,
		Flags: cmd.Root().PersistentFlags(),
	})
	if err != nil {
		return nil, err
	}

	logger := logging.SetDefault(serviceName, version, cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())
	registry := newRegistry()
	notifier := notify.NewWriter(cmd.ErrOrStderr())

	store, err := d.StorageOpener(ctx, cfg.StorageConfig())
	if err != nil {
		return nil, oops.With("storage", cfg.Storage).Wrap(err)
	}

	client, err := apiclient.New(cfg.APIBaseURL,
		apiclient.WithHTTPClient(d.HTTPClient),
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithLogger(logger),
		apiclient.WithTracerProvider(d.TracerProvider),
		apiclient.WithUserAgent(serviceName+"/"+version),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	rt, err := router.NewDefault(
		router.WithNotifier(notifier),
		router.WithLogger(logger),
		router.WithTracerProvider(d.TracerProvider),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	sess, err := session.Open(ctx, session.Options{
		API:       client,
		Storage:   store,
		Navigator: rt,
		Notifier:  notifier,
		Logger:    logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	client.SetTokenSource(sess)
	rt.Attach(sess)

	logger.Debug("client ready",
		"api_base_url", client.BaseURL(),
		"storage", cfg.Storage,
		"authenticated", sess.IsAuthenticated())

	return &app{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		store:    store,
		session:  sess,
		router:   rt,
		registry: registry,
		now:      d.Now,
	}, nil
}

// close flushes metrics and releases storage. Failures are logged.
func (a *app) close() {
	if a.cfg.MetricsTextfile != "" {
		if err := writeMetrics(a.registry, a.cfg.MetricsTextfile); err != nil {
			errutil.LogError(a.logger, "failed to write metrics textfile", err)
		}
	}
	if err := a.store.Close(); err != nil {
		errutil.LogError(a.logger, "failed to close session storage", err)
	}
}

// withApp runs fn against a freshly wired app and closes it afterwards.
func withApp(cmd *cobra.Command, flags *globalFlags, deps *Deps, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd, flags, deps)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, a)
}
