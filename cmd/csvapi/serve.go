package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/csvapi/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

// serve runs the server until ctx is done or the server fails.
func (a *app) serve(ctx context.Context) error {
	svc, err := a.openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := server.NewServer(a.cfg.Host, a.cfg.Port, svc, a.log)
	srv.MaxUploadBytes = a.cfg.MaxUploadBytes

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		closeCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Close(closeCtx); err != nil {
			a.log.Errorw("failed to close server", "error", err)
			return err
		}
		return nil
	})
	return g.Wait()
}
