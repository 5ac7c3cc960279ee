package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/golazo/internal/adapters/http/api"
	"github.com/okian/golazo/internal/adapters/http/swagger"
	"github.com/okian/golazo/internal/adapters/repository"
	service "github.com/okian/golazo/internal/app"
	"github.com/okian/golazo/internal/config"
	"github.com/okian/golazo/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "golazo exited with error", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// defaults -> optional file -> env
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if cfg.LogFormat != "" {
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	}
	log := logger.Named("golazo")
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "close store", logger.Error(err))
		}
	}()

	svc := service.New(
		service.WithStore(store),
		service.WithLogger(logger.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithRankingOptions(cfg.RankingOptions()...),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	srv := newHTTPServer(cfg.Addr, newRouter(svc))

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info(ctx, "shutting down server...")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service stop failed", logger.Error(err))
	}
	if err := archiveStore(shutdownCtx, store); err != nil {
		log.Error(ctx, "archive failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return runErr
}

// openStore returns the store selected by cfg.StoreBackend. A memory store
// with an archive path is restored from that archive.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		store, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case config.BackendMemory, "":
		store := repository.NewMemoryStore(repository.WithArchivePath(cfg.ArchivePath))
		if cfg.ArchivePath == "" {
			return store, nil
		}
		if err := store.Unarchive(ctx); err != nil {
			return nil, fmt.Errorf("restore archive: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidConfig, cfg.StoreBackend)
	}
}

// archiveStore writes the memory store to its archive, if it has one.
func archiveStore(ctx context.Context, store repository.Store) error {
	mem, ok := store.(*repository.MemoryStore)
	if !ok {
		return nil
	}
	if err := mem.Archive(ctx); err != nil && !errors.Is(err, repository.ErrNoArchivePath) {
		return err
	}
	return nil
}

// newRouter registers the documentation and business API routes.
func newRouter(svc *service.Service) *mux.Router {
	router := mux.NewRouter()
	swagger.Register(router)
	api.NewServer(svc, svc).Register(router)
	return router
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
