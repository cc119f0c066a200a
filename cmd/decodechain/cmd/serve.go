package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/decodechain/internal/http"
	"github.com/jmylchreest/decodechain/internal/http/handlers"
	"github.com/jmylchreest/decodechain/internal/observability"
	"github.com/jmylchreest/decodechain/internal/version"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the diagnostics HTTP server",
	Long: `Start the HTTP server exposing decoder catalogs, resolutions, fallback
chains, health and Prometheus metrics.

The OpenAPI document is served at /openapi.json and interactive docs at /docs.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "address to bind to (overrides server.host)")
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides server.port)")
	serveCmd.Flags().Bool("warm", false, "populate decoder availability before serving (overrides server.warm_on_start)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("warm") {
		cfg.Server.WarmOnStart, _ = cmd.Flags().GetBool("warm")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, cfg.Metrics.Enabled)
	if err != nil {
		return err
	}

	if cfg.Server.WarmOnStart {
		done := observability.TimedOperation(ctx, a.logger, "warm_availability")
		if err := a.cache.Warm(ctx); err != nil {
			return fmt.Errorf("warming decoder availability: %w", err)
		}
		done()
	}

	quiet := []string{"/livez", "/health"}
	if a.metrics != nil {
		quiet = append(quiet, cfg.Metrics.Path)
	}
	srv := http.NewServer(cfg.Server, observability.WithComponent(a.logger, "http"), version.Version, quiet...)

	handlers.NewHealthHandler(version.Version, a.backend, a.cache).Register(srv.API())
	handlers.NewDecoderHandler(a.cache, a.resolver).Register(srv.API())
	handlers.NewInsightsHandler(a.insights).Register(srv.API())
	if a.metrics != nil {
		srv.Mount(cfg.Metrics.Path, a.metrics.HTTPHandler())
	}

	a.logger.Info("decodechain diagnostics server starting",
		slog.String("address", cfg.Server.Address()),
		slog.String("backend", a.backend),
		slog.Bool("metrics", a.metrics != nil),
	)

	return srv.ListenAndServe(ctx)
}
