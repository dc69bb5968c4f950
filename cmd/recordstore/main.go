package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"recordsync/internal/platform/config"
	"recordsync/internal/platform/httpserver"
	"recordsync/internal/platform/logger"
	"recordsync/internal/platform/metrics"
	"recordsync/internal/platform/postgres"
	platformredis "recordsync/internal/platform/redis"
	"recordsync/internal/recordstore"
	"recordsync/internal/recordstore/store"
)

// main wires the reference record store: config, backend, router, and the
// server lifecycle.
func main() {
	cfg := config.StoreFromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("recordstore exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Store, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	m := metrics.New(prometheus.DefaultRegisterer)
	handler, err := recordstore.New(b.store, recordstore.WithLogger(log), recordstore.WithMetrics(m))
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	handler.Register(r, cfg.BasePath)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := b.health(req.Context()); err != nil {
			log.WarnContext(req.Context(), "health check failed", "backend", cfg.Backend, "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting recordstore", "addr", cfg.Addr, "base_path", cfg.BasePath, "backend", cfg.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down recordstore")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// backend is an opened record store with its health probe and release func.
type backend struct {
	store  store.Store
	health func(context.Context) error
	close  func()
}

func openStore(ctx context.Context, cfg config.Store, log *slog.Logger) (backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return backend{
			store:  store.NewInMemory(),
			health: func(context.Context) error { return nil },
			close:  func() {},
		}, nil

	case config.BackendRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return backend{}, err
		}
		return backend{
			store:  store.NewRedis(client.Client),
			health: client.Health,
			close: func() {
				if err := client.Close(); err != nil {
					log.Warn("failed to close redis client", "error", err)
				}
			},
		}, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return backend{}, err
		}
		pg := store.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return backend{}, err
		}
		return backend{
			store:  pg,
			health: db.PingContext,
			close: func() {
				if err := db.Close(); err != nil {
					log.Warn("failed to close postgres pool", "error", err)
				}
			},
		}, nil

	default:
		return backend{}, fmt.Errorf("unknown RECORDSTORE_BACKEND %q", cfg.Backend)
	}
}
