// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/holomush/authclient/internal/session"
)

func newRegisterCmd(flags *globalFlags, deps *Deps) *cobra.Command {
	creds := &credentialFlags{}
	var email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account on the backend. Registration does not log in; run
login afterwards with the same username and password.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := creds.resolvePassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			info := session.UserInfo{Email: email, Username: creds.username, Password: password}
			return withApp(cmd, flags, deps, func(ctx context.Context, a *app) error {
				if err := a.session.Register(ctx, info); err != nil {
					return err
				}
				if loc, ok := a.router.Current(); ok {
					cmd.Printf("Location: %s\n", loc.Path)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	creds.register(cmd)

	return cmd
}
