package cmd

import (
	"fmt"
	"log/slog"

	"github.com/jmylchreest/decodechain/internal/config"
	"github.com/jmylchreest/decodechain/internal/decoder"
	"github.com/jmylchreest/decodechain/internal/insights"
	"github.com/jmylchreest/decodechain/internal/observability"
	"github.com/jmylchreest/decodechain/internal/registry"
)

// app is the decoder stack shared by every command: one registry, one
// availability cache, one resolver and one insights service per process.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *registry.Counting
	backend  string
	cache    *decoder.AvailabilityCache
	resolver *decoder.Resolver
	insights *insights.Service
	metrics  *observability.Metrics
}

// newApp builds the registry from configuration. When withMetrics is set a
// prometheus registry observes the cache and every resolution.
func newApp(cfg *config.Config, withMetrics bool) (*app, error) {
	logger := slog.Default()

	reg, backend, err := registry.New(cfg.Registry, observability.WithComponent(logger, "registry"))
	if err != nil {
		return nil, fmt.Errorf("creating element registry: %w", err)
	}
	counting := registry.NewCounting(reg)

	cache := decoder.NewAvailabilityCache(counting, decoder.DefaultCatalogs(),
		observability.WithComponent(logger, "availability"))

	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: counting,
		backend:  backend,
		cache:    cache,
	}

	var opts []decoder.ResolverOption
	if withMetrics {
		m, err := observability.NewMetrics(cache)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		a.metrics = m
		opts = append(opts, decoder.WithObserver(m))
	}
	a.resolver = decoder.NewResolver(cache, observability.WithComponent(logger, "resolver"), opts...)
	a.insights = insights.NewService(decoder.NewChainBuilder(cache), observability.WithComponent(logger, "insights"))

	logger.Debug("decoder stack ready", slog.String("backend", backend))
	return a, nil
}
