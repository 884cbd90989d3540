package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/damacus/bucket-listing/internal/config"
	"github.com/damacus/bucket-listing/internal/handlers"
	"github.com/damacus/bucket-listing/internal/listing"
	"github.com/damacus/bucket-listing/internal/logging"
	"github.com/damacus/bucket-listing/internal/renderer"
	"github.com/damacus/bucket-listing/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "bucket-listing",
		Short: "Browsable directory listings for public object storage buckets",
		Long: `Render a directory listing for a bucket by paging through its XML
listing endpoint.

Examples:
  bucket-listing serve --config config.yaml
  bucket-listing render --path /photos/2020/ > index.html
  bucket-listing render --query "prefix=photos/" --fragment`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/bucket-listing/config.yaml)")
	root.AddCommand(newServeCmd(&configPath), newRenderCmd(&configPath))

	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve bucket listings over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides server.addr)")
	return cmd
}

func newRenderCmd(configPath *string) *cobra.Command {
	var (
		path     string
		query    string
		fragment bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one listing to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			location := &url.URL{Path: path, RawQuery: query}
			client := services.NewListingClient(cfg.Fetch.Timeout)
			return render(cmd.Context(), cmd.OutOrStdout(), cfg, client, location, fragment, logger)
		},
	}

	cmd.Flags().StringVar(&path, "path", "/", "request path to list, as a browser would send it")
	cmd.Flags().StringVar(&query, "query", "", "raw query string, e.g. prefix=photos/")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "write only the <pre> table instead of a full page")
	return cmd
}

func loadRuntime(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	client := services.NewListingClient(cfg.Fetch.Timeout)
	e := newServer(cfg, listing.NewLister(cfg, client, logger), logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving bucket listing",
			zap.String("addr", cfg.Server.Addr),
			zap.String("endpoint", cfg.Bucket.ListingEndpoint()),
		)
		errCh <- e.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("Shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	return e.Shutdown(shutdownCtx)
}

func render(ctx context.Context, w io.Writer, cfg *config.Config, fetcher listing.Fetcher, location *url.URL, fragment bool, logger *zap.Logger) error {
	result, err := listing.NewLister(cfg, fetcher, logger).List(ctx, location)
	if err != nil {
		return err
	}

	r := renderer.New()
	if fragment {
		return r.Render(w, "listing_table", result, nil)
	}
	return r.Render(w, "listing", handlers.PageData(cfg.Bucket, location, "", result, nil), nil)
}
