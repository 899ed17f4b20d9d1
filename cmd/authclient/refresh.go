// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func newRefreshProfileCmd(flags *globalFlags, deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-profile",
		Short: "Reload the user profile",
		Long: `Fetch the current user from the backend and store it. If the backend
refuses, the token is treated as invalid and the session is cleared.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, deps, func(ctx context.Context, a *app) error {
				out := a.session.FetchUser(ctx)
				switch {
				case !out.Attempted:
					cmd.Println("Not logged in")
					return nil
				case out.Err != nil:
					return oops.Wrapf(out.Err, "profile refresh failed, session cleared")
				}
				if !a.session.IsAuthenticated() {
					cmd.Println("Session ended while refreshing")
					return nil
				}
				cmd.Printf("Profile refreshed (role: %s)\n", a.session.UserRole())
				return nil
			})
		},
	}
}
