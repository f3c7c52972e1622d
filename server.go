package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"photoshare/app/clients"
	"photoshare/app/config"
	"photoshare/app/controllers"
	"photoshare/app/logging"
	"photoshare/app/repositories"
	"photoshare/app/routes"
	"photoshare/app/search"
	"photoshare/app/services"
)

// application owns both stores and the HTTP handler built over them.
type application struct {
	cfg     *config.Config
	repo    *repositories.Repository
	docs    *search.BleveDocumentStore
	sync    *services.IndexSyncService
	handler http.Handler
}

func newApplication(cfg *config.Config) (*application, error) {
	repo, err := repositories.Open(cfg.Database.Path, cfg.Database.InMemory)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}

	docs, err := openSearchStore(cfg.Search)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}

	paging := controllers.Paging{
		DefaultSize: cfg.API.DefaultPageSize,
		MaxSize:     cfg.API.MaxPageSize,
	}
	deps := routes.NewDependencies(repo, docs, newAssociationClient(cfg.Association), paging)

	return &application{
		cfg:     cfg,
		repo:    repo,
		docs:    docs,
		sync:    services.NewIndexSyncService(repo.Posts(), docs),
		handler: routes.SetupRoutes(deps),
	}, nil
}

func openSearchStore(cfg config.SearchConfig) (*search.BleveDocumentStore, error) {
	opt := search.WithMinShouldMatch(cfg.MinShouldMatch)
	if cfg.InMemory {
		return search.NewMemOnly(opt)
	}
	return search.Open(cfg.IndexPath, opt)
}

func newAssociationClient(cfg config.AssociationConfig) clients.TagAssociationClient {
	if cfg.Mock {
		logging.Info().Msg("using mock tag association client")
		return clients.NewMockAssociationClient()
	}
	return clients.NewCircuitBreakerClient(
		clients.NewHTTPAssociationClient(cfg.URL, cfg.Timeout),
		clients.BreakerSettings{
			MaxRequests:  cfg.BreakerMaxRequests,
			Interval:     cfg.BreakerInterval,
			Timeout:      cfg.BreakerTimeout,
			MinRequests:  cfg.BreakerMinRequests,
			FailureRatio: cfg.BreakerFailureRatio,
		},
	)
}

// SyncIndex populates an empty search index from the record store.
func (a *application) SyncIndex(ctx context.Context) error {
	n, err := a.sync.SyncPosts(ctx)
	if err != nil {
		return fmt.Errorf("search index bootstrap failed: %w", err)
	}
	logging.Info().Int("documents", n).Msg("search index bootstrap complete")
	return nil
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully within the configured timeout.
func (a *application) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      a.handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// Close releases both stores.
func (a *application) Close() error {
	return errors.Join(a.docs.Close(), a.repo.Close())
}
