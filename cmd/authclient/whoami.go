// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/holomush/authclient/internal/session"
)

// whoamiReport describes the stored session. It never includes the token itself.
type whoamiReport struct {
	Authenticated bool           `json:"authenticated"`
	Role          string         `json:"role"`
	Profile       map[string]any `json:"profile,omitempty"`
	Token         *tokenReport   `json:"token,omitempty"`
}

type tokenReport struct {
	Opaque    bool       `json:"opaque"`
	Subject   string     `json:"subject,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

func newWhoamiCmd(flags *globalFlags, deps *Deps) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Long: `Show whether a token is stored, the user's role and profile, and what
the token says about itself. The backend is not contacted; use
refresh-profile to reload the profile.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, deps, func(_ context.Context, a *app) error {
				report := buildWhoami(a.session, a.now())
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				printWhoami(cmd, report)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func buildWhoami(sess *session.Session, now time.Time) whoamiReport {
	snap := sess.Snapshot()
	report := whoamiReport{
		Authenticated: snap.IsAuthenticated(),
		Role:          snap.UserRole(),
	}
	if p := snap.Profile(); p != nil {
		report.Profile = p.Attributes()
	}
	if !snap.IsAuthenticated() {
		return report
	}

	claims, err := session.ParseClaims(snap.Token())
	if err != nil {
		report.Token = &tokenReport{Opaque: true}
		return report
	}
	tr := &tokenReport{Subject: claims.Subject, Expired: claims.Expired(now)}
	if !claims.IssuedAt.IsZero() {
		tr.IssuedAt = &claims.IssuedAt
	}
	if !claims.ExpiresAt.IsZero() {
		tr.ExpiresAt = &claims.ExpiresAt
	}
	report.Token = tr
	return report
}

func printWhoami(cmd *cobra.Command, r whoamiReport) {
	t := newTable(cmd.OutOrStdout())
	defer t.flush()

	t.row("Authenticated:", yesNo(r.Authenticated))
	t.row("Role:", r.Role)
	if !r.Authenticated {
		return
	}
	if r.Profile == nil {
		t.row("Profile:", "not loaded")
	}
	for _, key := range []string{"username", "email", "id", "is_active"} {
		if v, ok := r.Profile[key]; ok {
			t.row(key+":", v)
		}
	}
	switch {
	case r.Token == nil:
	case r.Token.Opaque:
		t.row("Token:", "opaque (not a JWT)")
	default:
		t.row("Subject:", r.Token.Subject)
		t.row("Issued:", formatTime(r.Token.IssuedAt))
		expires := formatTime(r.Token.ExpiresAt)
		if r.Token.Expired {
			expires += " (expired)"
		}
		t.row("Expires:", expires)
	}
}
