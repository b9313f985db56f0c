package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/nao1215/csvapi"
	"github.com/nao1215/csvapi/engine"
	"github.com/nao1215/csvapi/export"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format      string
		compression string
		output      string
		filters     []string
		sort        string
	)
	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Write a dataset to a CSV, TSV, LTSV or XLSX file",
		Long: `Write every row of a dataset, optionally filtered and sorted, to a file.
Without --output the file is named after the dataset and format, e.g.
sales.csv.gz. Use --output - to write to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			params := url.Values{
				export.ParamFormat:      {format},
				export.ParamCompression: {compression},
				engine.ParamFilter:      filters,
			}
			if sort != "" {
				params.Set(engine.ParamSort, sort)
			}
			x, err := svc.PrepareExport(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := x.WriteTo(cmd.Context(), cmd.OutOrStdout())
				return err
			}
			if output == "" {
				output = x.FileName()
			}
			n, err := a.writeExport(cmd, x, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d rows\t%s\n", x.Dataset.Name, n, output)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&format, "format", "f", "csv", "output format: csv, tsv, ltsv or xlsx")
	flags.StringVarP(&compression, "compression", "c", "none", "output compression: none, gz, xz or zstd")
	flags.StringVarP(&output, "output", "o", "", "output file, - for stdout")
	flags.StringArrayVar(&filters, "filter", nil, "col:op:value filter, repeatable")
	flags.StringVar(&sort, "sort", "", "col[:asc|desc] sort key")
	return cmd
}

// writeExport writes x to path on the input filesystem. A partial file is
// removed on failure.
func (a *app) writeExport(cmd *cobra.Command, x *csvapi.Export, path string) (n int64, err error) {
	f, err := a.inputFS.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = a.inputFS.Remove(path)
		}
	}()
	return x.WriteTo(cmd.Context(), f)
}
