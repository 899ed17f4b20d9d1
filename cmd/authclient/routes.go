// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/authclient/internal/router"
)

func newRoutesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Long:  `List every route with its redirect, authentication and role requirements.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			routes := router.DefaultRoutes()
			switch format {
			case formatYAML:
				return writeYAML(cmd.OutOrStdout(), routes)
			case formatJSON:
				return writeJSON(cmd.OutOrStdout(), routes)
			default:
				return oops.Code("CLI_INVALID_FORMAT").
					With("format", format).
					Errorf("format must be 'yaml' or 'json', got %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", formatYAML, "output format: yaml or json")

	return cmd
}
