// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/authclient/internal/config"
)

// globalFlags holds flags shared by every subcommand. Everything except
// configFile is read back through config.Load from the root flag set.
type globalFlags struct {
	configFile string
}

// NewRootCmd creates the root command for the authclient CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmdWithDeps(nil)
}

func newRootCmdWithDeps(deps *Deps) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "authclient",
		Short: "Sign in to the backend and inspect the local session",
		Long: `authclient talks to the backend's authentication API. It keeps the
bearer token and user profile in durable storage between runs, attaches the
token to every request and checks routes against the navigation guard.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/authclient/config.yaml)")
	pf.String(config.KeyAPIBaseURL, "", "backend base URL, e.g. http://localhost:8000")
	pf.String(config.KeyStorage, "", "session storage backend: file, memory or redis")
	pf.String(config.KeyStoragePath, "", "session file (default: XDG_STATE_HOME/authclient/session.json)")
	pf.String(config.KeyRedisURL, "", "redis URL for the redis storage backend")
	pf.String(config.KeyRedisPrefix, "", "key prefix for the redis storage backend (default \"authclient:\")")
	pf.String(config.KeyLogFormat, "", "log format: json or text")
	pf.String(config.KeyLogLevel, "", "log level: debug, info, warn or error")
	pf.Duration(config.KeyTimeout, 0, "HTTP request timeout (default 30s)")
	pf.String(config.KeyMetricsTextfile, "", "write Prometheus metrics to this file after the command")

	cmd.AddCommand(newLoginCmd(flags, deps))
	cmd.AddCommand(newRegisterCmd(flags, deps))
	cmd.AddCommand(newLogoutCmd(flags, deps))
	cmd.AddCommand(newWhoamiCmd(flags, deps))
	cmd.AddCommand(newRefreshProfileCmd(flags, deps))
	cmd.AddCommand(newNavigateCmd(flags, deps))
	cmd.AddCommand(newRoutesCmd())
	cmd.AddCommand(newStatusCmd(flags, deps))

	return cmd
}
