// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/authclient/internal/session"
)

// credentialFlags are shared by login and register.
type credentialFlags struct {
	username      string
	password      string
	passwordStdin bool
}

func (c *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.username, "username", "", "account username")
	cmd.Flags().StringVar(&c.password, "password", "", "account password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&c.passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("username")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
}

// resolvePassword returns the password from the flag or the first line of in.
func (c *credentialFlags) resolvePassword(in io.Reader) (string, error) {
	if !c.passwordStdin {
		if c.password == "" {
			return "", oops.Code("CLI_PASSWORD_REQUIRED").Errorf("a password is required: use --password-stdin or --password")
		}
		return c.password, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", oops.Code("CLI_PASSWORD_READ_FAILED").Wrap(err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", oops.Code("CLI_PASSWORD_REQUIRED").Errorf("no password on stdin")
	}
	return password, nil
}

func newLoginCmd(flags *globalFlags, deps *Deps) *cobra.Command {
	creds := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: `Exchange a username and password for a bearer token, load the user
profile and store both for later commands. On success the landing route is
opened through the navigation guard.`,
		Example: `  echo "$PASSWORD" | authclient login --username alice --password-stdin`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := creds.resolvePassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withApp(cmd, flags, deps, func(ctx context.Context, a *app) error {
				return runLogin(ctx, cmd, a, session.Credentials{Username: creds.username, Password: password})
			})
		},
	}
	creds.register(cmd)

	return cmd
}

func runLogin(ctx context.Context, cmd *cobra.Command, a *app, creds session.Credentials) error {
	if err := a.session.Login(ctx, creds); err != nil {
		return err
	}
	if !a.session.IsAuthenticated() {
		return oops.Code("CLI_LOGIN_REJECTED").
			With("username", creds.Username).
			Errorf("logged in, but the backend rejected the new token when loading the profile")
	}

	name := creds.Username
	if p := a.session.Profile(); p != nil && p.Username != "" {
		name = p.Username
	}
	cmd.Printf("Logged in as %s (role: %s)\n", name, a.session.UserRole())
	if loc, ok := a.router.Current(); ok {
		cmd.Printf("Location: %s\n", loc.Path)
	}
	return nil
}
