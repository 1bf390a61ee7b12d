package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/imageboard/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server (default command).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
}

// serve blocks until the server is shut down (Ctrl+C or SIGTERM).
func (a *app) serve() error {
	srv, err := server.New(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := srv.Start(); err != nil {
		a.logger.Error("server error", slog.String("error", err.Error()))
		return err
	}
	return nil
}
