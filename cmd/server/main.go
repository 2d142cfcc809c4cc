// Command server runs the literature search HTTP service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/helixir/literature-search-service/internal/aggregate"
	"github.com/helixir/literature-search-service/internal/compare"
	"github.com/helixir/literature-search-service/internal/config"
	"github.com/helixir/literature-search-service/internal/observability"
	"github.com/helixir/literature-search-service/internal/papersources"
	"github.com/helixir/literature-search-service/internal/papersources/arxiv"
	"github.com/helixir/literature-search-service/internal/papersources/openalex"
	httpserver "github.com/helixir/literature-search-service/internal/server/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})

	metrics := observability.NewMetrics(cfg.Metrics.Namespace)

	arxivClient := arxiv.New(arxiv.Config{
		BaseURL:    cfg.PaperSources.ArXiv.BaseURL,
		Timeout:    cfg.PaperSources.ArXiv.Timeout,
		RateLimit:  cfg.PaperSources.ArXiv.RateLimit,
		BurstSize:  cfg.PaperSources.ArXiv.BurstSize,
		MaxResults: cfg.PaperSources.ArXiv.MaxResults,
		MaxRetries: cfg.PaperSources.ArXiv.MaxRetries,
		RetryDelay: cfg.PaperSources.ArXiv.RetryDelay,
		Enabled:    cfg.PaperSources.ArXiv.Enabled,
	})
	openalexClient := openalex.New(openalex.Config{
		BaseURL:    cfg.PaperSources.OpenAlex.BaseURL,
		Email:      cfg.PaperSources.OpenAlex.Email,
		Timeout:    cfg.PaperSources.OpenAlex.Timeout,
		RateLimit:  cfg.PaperSources.OpenAlex.RateLimit,
		BurstSize:  cfg.PaperSources.OpenAlex.BurstSize,
		MaxResults: cfg.PaperSources.OpenAlex.MaxResults,
		Enabled:    cfg.PaperSources.OpenAlex.Enabled,
	})

	registry := papersources.NewRegistry(arxivClient, openalexClient)

	aggregator := aggregate.New(arxivClient, openalexClient, logger, metrics, aggregate.Config{
		CoreCount:          cfg.Search.CoreCount,
		RelatedCount:       cfg.Search.RelatedCount,
		BackgroundCount:    cfg.Search.BackgroundCount,
		MaxParallel:        cfg.Search.MaxParallel,
		MinCoreThreshold:   cfg.Search.MinCoreThreshold,
		SecondaryFromYear:  cfg.Search.SecondaryFromYear,
		BackgroundFromYear: cfg.Search.BackgroundFromYear,
	})

	server := httpserver.NewServer(httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsPath:     cfg.Metrics.Path,
	}, aggregator, compare.NewComparator(), registry, logger, metrics)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		logger.Fatal().Err(err).Msg("HTTP server failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
