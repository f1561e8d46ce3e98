package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"ballot/internal/audit"
	cooldownmetrics "ballot/internal/cooldown/metrics"
	cooldownstore "ballot/internal/cooldown/store"
	"ballot/internal/platform/config"
	"ballot/internal/platform/postgres"
	"ballot/internal/platform/redis"
	profileservice "ballot/internal/profile/service"
	profilestore "ballot/internal/profile/store"
	httptransport "ballot/internal/transport/http"
	"ballot/internal/voting/models"
	votingservice "ballot/internal/voting/service"
	votingstore "ballot/internal/voting/store"
	"ballot/pkg/platform/circuit"
)

type votingLedger interface {
	votingservice.Store
	Seed(ctx context.Context, categories []models.Category, candidates []models.Candidate) error
}

// stores holds the opened backends. db and redis are nil when unused.
type stores struct {
	db       *sql.DB
	redis    *redis.Client
	votes    votingLedger
	profiles profileservice.Store
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, error) {
	s := &stores{}
	if cfg.Database.InMemory() {
		log.Warn("running with in-memory stores; state is lost on restart")
		s.votes = votingstore.NewInMemory()
		s.profiles = profilestore.NewInMemory()
	} else {
		db, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		s.db = db
		if err := postgres.CreateSchema(ctx, db); err != nil {
			s.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
		s.votes = votingstore.NewPostgres(db).WithTxTimeout(cfg.Database.TxTimeout)
		s.profiles = profilestore.NewPostgres(db)
	}

	if err := s.votes.Seed(ctx, models.SeedCategories, models.SeedCandidates); err != nil {
		s.Close()
		return nil, fmt.Errorf("seed candidates: %w", err)
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		if cfg.Voting.CooldownBackend == config.CooldownBackendRedis {
			s.Close()
			return nil, err
		}
		log.Warn("redis unavailable, continuing without it", "error", err)
	}
	s.redis = client
	return s, nil
}

func (s *stores) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *stores) health() map[string]httptransport.HealthCheck {
	checks := map[string]httptransport.HealthCheck{}
	if s.db != nil {
		checks["postgres"] = s.db.PingContext
	}
	if s.redis != nil {
		checks["redis"] = s.redis.Health
	}
	return checks
}

// buildCooldownStore resolves COOLDOWN_BACKEND. Redis runs behind a circuit
// breaker that falls back to process memory.
func buildCooldownStore(cfg config.Config, s *stores, log *slog.Logger, m *cooldownmetrics.Metrics) (cooldownstore.Store, error) {
	backend := cfg.Voting.CooldownBackend
	if backend == config.CooldownBackendAuto {
		switch {
		case s.redis != nil:
			backend = config.CooldownBackendRedis
		case s.db != nil:
			backend = config.CooldownBackendPostgres
		default:
			backend = config.CooldownBackendMemory
		}
	}

	switch backend {
	case config.CooldownBackendRedis:
		if s.redis == nil {
			return nil, fmt.Errorf("cooldown backend redis: redis not connected")
		}
		return cooldownstore.NewFallback(
			cooldownstore.NewRedis(s.redis.Client),
			cooldownstore.NewInMemory(),
			circuit.New("cooldown-redis"),
			cooldownstore.WithFallbackLogger(log),
			cooldownstore.WithFallbackMetrics(m),
		), nil
	case config.CooldownBackendPostgres:
		if s.db == nil {
			return nil, fmt.Errorf("cooldown backend postgres: database not connected")
		}
		return cooldownstore.NewPostgres(s.db), nil
	default:
		log.Warn("cooldown entries kept in process memory")
		return cooldownstore.NewInMemory(), nil
	}
}

// buildAuditPublisher always keeps an in-memory trail and adds the
// Kafka topic when brokers are configured.
func buildAuditPublisher(ctx context.Context, cfg config.Config, reg prometheus.Registerer, log *slog.Logger) (*audit.Publisher, func(), error) {
	sink := audit.MultiStore{audit.NewInMemoryStore()}
	closeFn := func() {}

	if len(cfg.Audit.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaStore(ctx, cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			return nil, nil, fmt.Errorf("audit kafka: %w", err)
		}
		if err := kafka.EnsureTopic(ctx, auditPartitions, 1); err != nil {
			log.Warn("audit topic not ensured", "topic", cfg.Audit.KafkaTopic, "error", err)
		}
		sink = append(sink, kafka)
		closeFn = kafka.Close
	}

	publisher := audit.NewPublisher(sink,
		audit.WithQueue(auditQueueSize),
		audit.WithLogger(log),
		audit.WithMetrics(audit.NewMetrics(reg)),
	)
	return publisher, closeFn, nil
}
