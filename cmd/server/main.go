// Command server runs the registration service: public submission endpoints,
// the admin moderation surface, and the operational endpoints.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"regdesk/internal/approval"
	approvalhandler "regdesk/internal/approval/handler"
	"regdesk/internal/audit"
	"regdesk/internal/eventconfig"
	eventhandler "regdesk/internal/eventconfig/handler"
	"regdesk/internal/identity"
	"regdesk/internal/notify"
	"regdesk/internal/platform/config"
	"regdesk/internal/platform/httpserver"
	"regdesk/internal/platform/metrics"
	platformredis "regdesk/internal/platform/redis"
	"regdesk/internal/registration"
	reghandler "regdesk/internal/registration/handler"
	"regdesk/internal/registration/store/memory"
	"regdesk/internal/registration/store/postgres"
	httptransport "regdesk/internal/transport/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// Best effort; production sets real environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, health, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	source, cleanupSource, err := buildConfigSource(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanupSource()

	var sink audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := notify.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return err
		}
		defer kafkaSink.Close(context.Background())
		sink = kafkaSink
		logger.Info("audit sink enabled", "topic", cfg.Kafka.Topic)
	}

	resolver := eventconfig.NewResolver(source, logger)
	auditor := audit.NewPublisher(audit.NewInMemoryStore(), sink, logger)
	m := metrics.New()
	verifier := identity.NewTokenVerifier(cfg.Identity.SigningKey, cfg.Identity.Issuer, cfg.Identity.Audience)

	regService := registration.NewService(store, resolver, auditor, m, logger)
	approvalService := approval.NewService(store, resolver, auditor, m, logger)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       logger,
		Verifier:     verifier,
		Event:        eventhandler.New(resolver, logger),
		Registration: reghandler.New(regService, logger),
		Approval:     approvalhandler.New(approvalService, logger),
		Health:       health,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting regdesk", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildStore selects the registration store: postgres when DATABASE_URL is
// set, the in-memory store otherwise.
func buildStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (registration.Store, func() error, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("no DATABASE_URL set, using in-memory store")
		return memory.New(), nil, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	store := postgres.New(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	health := func() error { return store.Ping(context.Background()) }
	return store, health, func() { db.Close() }, nil
}

// buildConfigSource selects the event configuration source: redis when
// configured, the local file otherwise.
func buildConfigSource(cfg config.Config, logger *slog.Logger) (eventconfig.Source, func(), error) {
	client, err := platformredis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		logger.Warn("no REDIS_URL set, reading event configuration from file", "path", cfg.EventConfigFile)
		return eventconfig.NewFileSource(cfg.EventConfigFile), func() {}, nil
	}
	return eventconfig.NewRedisSource(client.Client, cfg.Redis.Key), func() { _ = client.Close() }, nil
}
