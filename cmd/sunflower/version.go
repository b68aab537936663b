package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sunflower-search/sunflower/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), version.String())
			return nil
		},
	}
}
