package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nao1215/csvapi"
	"github.com/nao1215/csvapi/config"
	"github.com/nao1215/csvapi/logging"
)

// app is the state shared by every subcommand.
type app struct {
	// inputFS is where load reads files and export writes them.
	inputFS afero.Fs
	// dataFS hosts the database directory.
	dataFS afero.Fs

	envFile string
	dataDir string
	port    int

	newLogger func(env string) (logging.Logger, error)

	cfg config.Config
	log logging.Logger
}

func newApp(inputFS afero.Fs) *app {
	return &app{
		inputFS: inputFS,
		dataFS:  afero.NewOsFs(),
		newLogger: func(env string) (logging.Logger, error) {
			return logging.New(env)
		},
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "csvapi",
		Short:         "Turn CSV, TSV, LTSV, Parquet and Excel files into a queryable HTTP API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading CSVAPI_* variables")
	flags.StringVar(&a.dataDir, "data-dir", "", "directory holding the database (overrides CSVAPI_DATA_DIR)")
	flags.IntVar(&a.port, "port", 0, "HTTP port (overrides CSVAPI_PORT)")

	root.AddCommand(
		newServeCmd(a),
		newLoadCmd(a),
		newListCmd(a),
		newRmCmd(a),
		newExportCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = a.dataDir
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = a.port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := a.newLogger(cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.log = log
	return nil
}

func (a *app) close() error {
	if a.log == nil {
		return nil
	}
	// Syncing stderr fails on some platforms; nothing useful can be done about it.
	_ = a.log.Sync()
	return nil
}

func (a *app) openService(ctx context.Context) (*csvapi.Service, error) {
	return csvapi.Open(ctx, a.dataFS, a.cfg, a.log)
}
