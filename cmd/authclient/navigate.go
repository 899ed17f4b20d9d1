// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/holomush/authclient/internal/router"
)

func newNavigateCmd(flags *globalFlags, deps *Deps) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "navigate PATH",
		Short: "Check where a route would take the current user",
		Long: `Resolve PATH against the route table and run the navigation guard with
the stored session. Prints every redirect taken and the final location.`,
		Example: `  authclient navigate /admin/users`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, deps, func(ctx context.Context, a *app) error {
				nav, err := a.router.Push(ctx, args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), nav)
				}
				printNavigation(cmd, nav)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func printNavigation(cmd *cobra.Command, nav router.Navigation) {
	t := newTable(cmd.OutOrStdout())
	t.row("PATH", "ROUTE", "DECISION", "NEXT")
	for _, s := range nav.Steps {
		next := "-"
		if s.Decision.RedirectTo != "" {
			next = s.Decision.RedirectTo
		}
		t.row(s.Path, s.Route, string(s.Decision.Verdict), next)
	}
	t.flush()
	cmd.Printf("Location: %s\n", nav.Path)
}
