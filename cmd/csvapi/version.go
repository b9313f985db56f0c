package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/csvapi/server"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", server.Name, server.Version)
			return nil
		},
	}
}
