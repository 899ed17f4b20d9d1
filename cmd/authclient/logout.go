// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newLogoutCmd(flags *globalFlags, deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Long: `Tell the backend the session is over, then remove the stored token and
profile. The local session is always cleared, even when the backend cannot
be reached.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, deps, func(ctx context.Context, a *app) error {
				out := a.session.Logout(ctx)
				if out.OK() {
					cmd.Println("Logged out")
				} else {
					cmd.Printf("Logged out locally; the backend did not confirm: %v\n", out.Err)
				}
				if loc, ok := a.router.Current(); ok {
					cmd.Printf("Location: %s\n", loc.Path)
				}
				return nil
			})
		},
	}
}
