// Package main provides the entry point for the citation contact service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helixir/citation-contact-service/internal/config"
	"github.com/helixir/citation-contact-service/internal/discovery"
	"github.com/helixir/citation-contact-service/internal/metasources"
	"github.com/helixir/citation-contact-service/internal/metasources/crossref"
	"github.com/helixir/citation-contact-service/internal/metasources/pubmed"
	"github.com/helixir/citation-contact-service/internal/observability"
	"github.com/helixir/citation-contact-service/internal/pacer"
	"github.com/helixir/citation-contact-service/internal/pipeline"
	httpserver "github.com/helixir/citation-contact-service/internal/server/http"
	"github.com/helixir/citation-contact-service/internal/storage"
)

const metricsNamespace = "citationcontact"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load a local .env if present, then configuration.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("citation-contact-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(metricsNamespace, prometheus.DefaultRegisterer)

	// Report file storage.
	files, err := storage.NewFileStore(cfg.Storage.OutputDir, logger)
	if err != nil {
		return fmt.Errorf("create file store: %w", err)
	}

	// Metadata sources, tried in order.
	var sources []metasources.AuthorSource
	if cfg.Sources.Crossref.Enabled {
		sources = append(sources, crossref.New(crossref.Config{
			BaseURL:   cfg.Sources.Crossref.BaseURL,
			Timeout:   cfg.Sources.Crossref.Timeout,
			RateLimit: cfg.Sources.Crossref.RateLimit,
			Email:     cfg.Sources.Crossref.ContactEmail,
		}))
	}
	if cfg.Sources.PubMed.Enabled {
		sources = append(sources, pubmed.New(pubmed.Config{
			BaseURL:   cfg.Sources.PubMed.BaseURL,
			Timeout:   cfg.Sources.PubMed.Timeout,
			RateLimit: cfg.Sources.PubMed.RateLimit,
			APIKey:    cfg.Sources.PubMed.APIKey,
		}))
	}
	resolver := metasources.NewResolver(logger, metrics, sources...)

	// Email discovery: cache, budget, web search, page scraping.
	store := discovery.NewStore(cfg.Storage.CachePath, cfg.Search.MaxQueries, logger)
	search := discovery.NewSearchClient(discovery.SearchClientConfig{
		BaseURL:  cfg.Search.BaseURL,
		APIKey:   cfg.Search.APIKey,
		EngineID: cfg.Search.EngineID,
		Timeout:  cfg.Search.Timeout,
	})
	engine := discovery.NewEngine(discovery.EngineConfig{
		Provider:        search,
		Store:           store,
		Fetcher:         discovery.NewHTTPPageFetcher(cfg.Search.Timeout),
		Pacer:           pacer.NewInterval(cfg.Search.Pause),
		Metrics:         metrics,
		ResultsPerQuery: cfg.Search.ResultsPerQuery,
	}, logger)
	if !search.Configured() {
		logger.Warn().Msg("search API not configured, email discovery disabled")
	}

	batch := pipeline.NewBatch(resolver, engine, pacer.NewInterval(cfg.Pipeline.CitationPause), metrics, logger)

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = promhttp.Handler()
	}

	srv := httpserver.NewServer(httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		MetricsPath:     cfg.Metrics.Path,
	}, batch, files, metrics, metricsHandler, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
