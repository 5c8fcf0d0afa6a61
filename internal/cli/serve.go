package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/famtree/internal/server"
)

// serveCommand starts the browser viewer.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		showZeroAge bool
		noCache     bool
		allowURL    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive family tree viewer",
		Long: `Serve the interactive family tree viewer over HTTP.

Each browser gets its own viewer: upload a .json tree, pick a root from the
dropdown and click members to see their details. Trees are kept in memory
only and are forgotten when a session expires or the server stops.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("show-zero-age") {
				cfg.Render.ShowZeroAge = showZeroAge
			}

			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			sc := server.Config{
				Addr:            cfg.Server.Addr,
				Canvas:          cfg.LayoutCanvas(),
				ShowZeroAge:     cfg.Render.ShowZeroAge,
				SessionTTL:      cfg.Server.SessionTTL,
				MaxSessions:     cfg.Server.MaxSessions,
				CleanupInterval: cfg.Server.CleanupInterval,
				Runner:          runner,
				Logger:          c.Logger,
			}
			if allowURL {
				sc.Fetcher = newFetcher(noCache)
			}
			return runServer(cmd.Context(), server.New(sc))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&showZeroAge, "show-zero-age", false, "show an age of 0 instead of hiding it")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the export cache")
	cmd.Flags().BoolVar(&allowURL, "allow-url", false, "let the upload form load trees from http(s) URLs")

	return cmd
}

// runServer serves until ctx is cancelled; an interrupt is a clean exit.
func runServer(ctx context.Context, srv *server.Server) error {
	err := srv.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
