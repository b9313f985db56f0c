package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoadCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "load [--name NAME] PATH...",
		Short: "Create datasets from local files or directories",
		Long: `Create one dataset per supported file. Directories are searched
recursively. Without --name each dataset is named after its file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			created, err := svc.LoadPaths(cmd.Context(), a.inputFS, args, name)
			for _, ds := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rows\t%s\n", ds.Name, ds.RowCount, ds.PhysicalTable)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "dataset name (single file only)")
	return cmd
}
