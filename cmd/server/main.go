package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/baseplate/persons/config"
	"github.com/baseplate/persons/internal/api"
	"github.com/baseplate/persons/internal/api/handlers"
	"github.com/baseplate/persons/internal/core/auth"
	"github.com/baseplate/persons/internal/core/person"
	"github.com/baseplate/persons/internal/platform/logger"
	"github.com/baseplate/persons/internal/platform/metrics"
	"github.com/baseplate/persons/internal/storage/postgres"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log, os.Stdout)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	authService := auth.NewService(&cfg.JWT, &cfg.Operator)
	personService := person.NewService(repo,
		person.WithLogger(log),
		person.WithMetrics(metrics.New(reg)),
	)

	router := api.NewRouter(
		log,
		reg,
		authService,
		handlers.NewAuthHandler(authService),
		handlers.NewPersonHandler(personService),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.Setup(cfg.Server.Mode),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openRepository(ctx context.Context, cfg *config.Config, log *slog.Logger) (person.Repository, func(), error) {
	if cfg.Storage.Driver != config.StoragePostgres {
		return person.NewMemoryRepository(), func() {}, nil
	}

	db, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	log.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.Name)

	return person.NewPostgresRepository(db), func() { db.Close() }, nil
}
