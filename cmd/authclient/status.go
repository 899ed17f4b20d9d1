// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/holomush/authclient/internal/apiclient"
)

// StatusReport holds backend reachability and a session summary.
type StatusReport struct {
	APIBaseURL    string     `json:"api_base_url"`
	Reachable     bool       `json:"reachable"`
	HTTPStatus    int        `json:"http_status,omitempty"`
	LatencyMs     int64      `json:"latency_ms"`
	Error         string     `json:"error,omitempty"`
	Storage       string     `json:"storage"`
	Authenticated bool       `json:"authenticated"`
	Role          string     `json:"role"`
	TokenExpires  *time.Time `json:"token_expires_at,omitempty"`
}

func newStatusCmd(flags *globalFlags, deps *Deps) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show backend reachability and the session summary",
		Long: `Check that the backend answers HTTP requests and summarize the stored
session. Any HTTP response counts as reachable; only transport failures do not.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, deps, func(ctx context.Context, a *app) error {
				report := probe(ctx, a)
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				printStatus(cmd, report)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output status as JSON")

	return cmd
}

// probe queries the backend root and collects the session summary.
func probe(ctx context.Context, a *app) StatusReport {
	report := StatusReport{
		APIBaseURL:    a.client.BaseURL(),
		Storage:       a.cfg.Storage,
		Authenticated: a.session.IsAuthenticated(),
		Role:          a.session.UserRole(),
	}
	if claims, err := a.session.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
		report.TokenExpires = &claims.ExpiresAt
	}

	start := time.Now()
	resp, err := a.client.Get(ctx, "/")
	report.LatencyMs = time.Since(start).Milliseconds()

	if err == nil {
		report.Reachable = true
		report.HTTPStatus = resp.StatusCode
		return report
	}
	if code, ok := apiclient.StatusCode(err); ok {
		report.Reachable = true
		report.HTTPStatus = code
		return report
	}
	report.Error = err.Error()
	return report
}

func printStatus(cmd *cobra.Command, r StatusReport) {
	t := newTable(cmd.OutOrStdout())
	defer t.flush()

	backend := "unreachable"
	if r.Reachable {
		backend = "reachable"
	}
	t.row("Backend:", r.APIBaseURL, backend)
	if r.Reachable {
		t.row("HTTP status:", r.HTTPStatus)
		t.row("Latency:", (time.Duration(r.LatencyMs) * time.Millisecond).String())
	} else {
		t.row("Error:", r.Error)
	}
	t.row("Storage:", r.Storage)
	t.row("Authenticated:", yesNo(r.Authenticated))
	t.row("Role:", r.Role)
	if r.TokenExpires != nil {
		t.row("Token expires:", formatTime(r.TokenExpires))
	}
}
