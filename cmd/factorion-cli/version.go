package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildVersion is overridden at release-build time via
// -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the factorion-cli version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "factorion-cli "+buildVersion)
			return nil
		},
	}
}
