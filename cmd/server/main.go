package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sync/errgroup"

	cooldownmetrics "ballot/internal/cooldown/metrics"
	cooldownservice "ballot/internal/cooldown/service"
	cooldownstore "ballot/internal/cooldown/store"
	"ballot/internal/identity"
	"ballot/internal/platform/config"
	"ballot/internal/platform/httpserver"
	"ballot/internal/platform/logger"
	"ballot/internal/platform/metrics"
	profilehandler "ballot/internal/profile/handler"
	profileservice "ballot/internal/profile/service"
	"ballot/internal/realtime"
	realtimehandler "ballot/internal/realtime/handler"
	httptransport "ballot/internal/transport/http"
	votinghandler "ballot/internal/voting/handler"
	votingmetrics "ballot/internal/voting/metrics"
	votingservice "ballot/internal/voting/service"
)

const (
	shutdownGrace   = 10 * time.Second
	auditQueueSize  = 1024
	auditPartitions = 3
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Server.LogLevel, cfg.Server.LogFormat)
	slog.SetDefault(log)

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Info(fmt.Sprintf(format, args...))
	})); err != nil {
		log.Warn("failed to set GOMAXPROCS", "error", err)
	}
	if missing := config.MissingVars(config.RequiredVars, nil); len(missing) > 0 {
		log.Warn("required variables unset, using development defaults", "missing", missing)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("ballot server stopped", "error", err)
		os.Exit(1)
	}
}

// run wires the stores, services and background workers, then serves until
// ctx is cancelled.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := metrics.NewRegistry()

	stores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	g, gctx := errgroup.WithContext(ctx)

	cdMetrics := cooldownmetrics.New(reg)
	cdStore, err := buildCooldownStore(cfg, stores, log, cdMetrics)
	if err != nil {
		return err
	}
	gate := cooldownservice.New(cdStore,
		cooldownservice.WithWindow(cfg.Voting.Cooldown),
		cooldownservice.WithLogger(log),
		cooldownservice.WithMetrics(cdMetrics),
	)
	g.Go(func() error {
		return ignoreCanceled(cooldownstore.StartCleanup(gctx, cdStore, cfg.Voting.CooldownCleanup, log, cdMetrics))
	})

	publisher, closeAudit, err := buildAuditPublisher(ctx, cfg, reg, log)
	if err != nil {
		return err
	}
	defer closeAudit()
	if worker := publisher.Worker(); worker != nil {
		g.Go(func() error { return ignoreCanceled(worker.Run(gctx)) })
	}

	bus := realtime.NewBus(reg, log)
	defer bus.Close()
	notifier := realtime.NewNotifier(bus, stores.db, log)
	if stores.db != nil {
		listener := realtime.NewListener(cfg.Database.URL, bus, log)
		g.Go(func() error { return ignoreCanceled(listener.Run(gctx)) })
	}

	voting := votingservice.New(stores.votes, identity.NewCollector(identity.WithLogger(log)),
		votingservice.WithCooldown(gate),
		votingservice.WithNotifier(notifier),
		votingservice.WithAuditPublisher(publisher),
		votingservice.WithLogger(log),
		votingservice.WithMetrics(votingmetrics.New(reg)),
	)
	g.Go(func() error {
		return ignoreCanceled(votingservice.StartSnapshots(gctx, voting, cfg.Voting.StatsSnapshotSchedule, log))
	})

	profiles := profileservice.New(stores.profiles,
		profileservice.WithAuditPublisher(publisher),
		profileservice.WithLogger(log),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Voting:         votinghandler.New(voting, log),
		Profiles:       profilehandler.New(profiles, log),
		Realtime:       realtimehandler.New(bus, log, realtimehandler.DefaultHeartbeat),
		Logger:         log,
		Metrics:        metrics.New(reg),
		Registry:       reg,
		Health:         stores.health(),
		AnonAPIKey:     cfg.Server.AnonAPIKey,
		AdminToken:     cfg.Server.AdminToken,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	srv := httpserver.New(cfg.Server.Addr, router)
	g.Go(func() error { return httpserver.Run(gctx, srv, shutdownGrace, log) })

	log.Info("ballot server started",
		"addr", cfg.Server.Addr,
		"in_memory", cfg.Database.InMemory(),
		"cooldown_backend", cfg.Voting.CooldownBackend,
	)
	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
