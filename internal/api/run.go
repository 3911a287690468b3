package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/config"
	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/orchestrator"
	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/search"
)

const shutdownTimeout = 30 * time.Second

type closer interface {
	Close() error
}

// NewFromConfig wires the adapters, search service and orchestrator from
// cfg. The returned cleanup releases the search cache.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Server, func(), error) {
	cache, err := search.CreateCache(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create search cache: %w", err)
	}
	cleanup := func() {
		if c, ok := cache.(closer); ok {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close search cache")
			}
		}
	}

	searcher := search.NewService(cfg.Search.URL, cache, cfg.Search.CacheTTL)
	registry := llm.NewRegistry(cfg)

	srv, err := NewServer(cfg, registry, orchestrator.New(searcher))
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return srv, cleanup, nil
}

// Serve runs the API server until ctx is cancelled, then drains in-flight
// requests. There is no write timeout; chat calls can be slow.
func Serve(ctx context.Context, cfg *config.Config) error {
	srv, cleanup, err := NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Port).
			Str("env", cfg.Env).
			Str("local_inference", cfg.LLM.LocalInferenceURL).
			Str("search_cache", cfg.Search.CacheType).
			Msg("starting API server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("could not listen on port %d: %w", cfg.Port, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("server is shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not gracefully shutdown the server: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
