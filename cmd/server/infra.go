package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"custody/internal/auth/store/revocation"
	"custody/internal/custody/store"
	"custody/internal/platform/config"
	"custody/internal/platform/postgres"
	redisclient "custody/internal/platform/redis"
	ratelimitmetrics "custody/internal/ratelimit/metrics"
	ratelimit "custody/internal/ratelimit/middleware"
	"custody/internal/ratelimit/models"
	"custody/internal/ratelimit/store/bucket"
	audit "custody/pkg/platform/audit"
	"custody/pkg/platform/audit/outbox"
	auditmemory "custody/pkg/platform/audit/store/memory"
	auditpostgres "custody/pkg/platform/audit/store/postgres"
)

const revocationPurgeInterval = time.Hour

// infra holds the backends selected by configuration. Without
// CUSTODY_DATABASE_URL everything lives in process memory.
type infra struct {
	db    *sql.DB
	redis *redisclient.Client
	pool  *pgxpool.Pool
	kafka *kgo.Client

	txRunner   store.TxRunner
	auditStore audit.Store
	trl        revocation.TokenRevocationList
	pgTRL      *revocation.PostgresTRL
}

func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (_ *infra, err error) {
	i := &infra{}
	defer func() {
		if err != nil {
			i.Close()
		}
	}()

	if cfg.Database.URL != "" {
		i.db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err = postgres.Migrate(ctx, i.db); err != nil {
			return nil, err
		}
		i.txRunner = store.NewPostgresStore(i.db)
		i.auditStore = auditpostgres.New(i.db)
		log.Info("using postgres custody store")
	} else {
		i.txRunner = store.NewMemoryStore()
		i.auditStore = auditmemory.NewInMemoryStore()
		log.Warn("CUSTODY_DATABASE_URL not set; custody state is kept in memory")
	}

	i.redis, err = redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	switch {
	case i.redis != nil:
		i.trl = revocation.NewRedisTRL(i.redis.Client)
	case i.db != nil:
		i.pgTRL = revocation.NewPostgresTRL(i.db)
		i.trl = i.pgTRL
	default:
		i.trl = revocation.NewInMemoryTRL()
	}

	if cfg.RelayEnabled() {
		i.pool, err = pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("open outbox pool: %w", err)
		}
		i.kafka, err = outbox.NewKafkaClient(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		if err = outbox.EnsureTopic(ctx, i.kafka, cfg.Kafka.Topic, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// startBackground runs the outbox relay and revocation purge until ctx ends.
func (i *infra) startBackground(ctx context.Context, g *errgroup.Group, cfg config.Server, log *slog.Logger) {
	if i.pool != nil && i.kafka != nil {
		relay := outbox.NewRelay(
			outbox.NewPostgresSource(i.pool),
			outbox.NewKafkaSink(i.kafka, cfg.Kafka.Topic),
			outbox.WithBatchSize(cfg.Outbox.BatchSize),
			outbox.WithPollInterval(cfg.Outbox.PollInterval),
			outbox.WithLogger(log),
			outbox.WithMetrics(outbox.NewMetrics()),
		)
		g.Go(func() error {
			return relay.Run(ctx)
		})
	}
	if i.pgTRL != nil {
		g.Go(func() error {
			ticker := time.NewTicker(revocationPurgeInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					n, err := i.pgTRL.PurgeExpired(ctx)
					if err != nil {
						log.ErrorContext(ctx, "failed to purge token revocations", "error", err)
						continue
					}
					log.DebugContext(ctx, "purged token revocations", "count", n)
				}
			}
		})
	}
}

// rateLimiter keeps counters in Redis when available, falling back to
// process memory while Redis fails.
func (i *infra) rateLimiter(cfg config.Server, log *slog.Logger, reg prometheus.Registerer) *ratelimit.Middleware {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	limits := map[models.Class]models.Limit{
		models.ClassRead:  {RequestsPerWindow: cfg.RateLimit.ReadRequests, Window: cfg.RateLimit.Window},
		models.ClassWrite: {RequestsPerWindow: cfg.RateLimit.WriteRequests, Window: cfg.RateLimit.Window},
	}
	opts := []ratelimit.Option{ratelimit.WithMetrics(ratelimitmetrics.New(reg))}
	if i.redis == nil {
		return ratelimit.New(bucket.New(), limits, log, opts...)
	}
	opts = append(opts, ratelimit.WithFallback(bucket.New()))
	return ratelimit.New(bucket.NewRedis(i.redis.Client), limits, log, opts...)
}

func (i *infra) healthChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if i.db != nil {
		checks["postgres"] = i.db.PingContext
	}
	if i.redis != nil {
		checks["redis"] = i.redis.Health
	}
	if i.kafka != nil {
		checks["kafka"] = i.kafka.Ping
	}
	return checks
}

func (i *infra) Close() {
	var errs []error
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.pool != nil {
		i.pool.Close()
	}
	if i.redis != nil {
		errs = append(errs, i.redis.Close())
	}
	if i.db != nil {
		errs = append(errs, i.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		slog.Error("failed to close backends", "error", err)
	}
}
