//go:build integration

package outbox_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "custody/pkg/platform/audit"
	"custody/pkg/platform/audit/outbox"
	auditpostgres "custody/pkg/platform/audit/store/postgres"
	"custody/pkg/testutil/containers"
)

type RelaySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	redpanda *containers.RedpandaContainer
	pool     *pgxpool.Pool
}

func TestRelaySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.redpanda = mgr.GetRedpanda(s.T())

	pool, err := pgxpool.New(context.Background(), s.postgres.DSN)
	s.Require().NoError(err)
	s.pool = pool
}

func (s *RelaySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *RelaySuite) SetupTest() {
	s.Require().NoError(s.postgres.ResetCustody(context.Background()))
}

func (s *RelaySuite) TestRelayPublishesOutboxToKafka() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "custody.audit." + uuid.NewString()[:8]
	producer, err := outbox.NewKafkaClient(s.redpanda.Brokers, topic)
	s.Require().NoError(err)
	defer producer.Close()
	s.Require().NoError(outbox.EnsureTopic(ctx, producer, topic, 1, 1))
	s.Require().NoError(outbox.EnsureTopic(ctx, producer, topic, 1, 1), "existing topic is not an error")

	store := auditpostgres.New(s.postgres.DB)
	for i := uint64(1); i <= 3; i++ {
		s.Require().NoError(store.Append(ctx, audit.Event{
			Action:  string(audit.EventAssetRegistered),
			Caller:  "0x00000000000000000000000000000000000000b1",
			AssetID: i,
		}))
	}
	pending, err := store.CountPending(ctx)
	s.Require().NoError(err)
	s.Equal(3, pending)

	relay := outbox.NewRelay(outbox.NewPostgresSource(s.pool), outbox.NewKafkaSink(producer, topic), outbox.WithBatchSize(10))
	n, err := relay.RunOnce(ctx)
	s.Require().NoError(err)
	s.Equal(3, n)

	pending, err = store.CountPending(ctx)
	s.Require().NoError(err)
	s.Zero(pending)

	n, err = relay.RunOnce(ctx)
	s.Require().NoError(err)
	s.Zero(n, "published rows are not relayed twice")

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var records []*kgo.Record
	for len(records) < 3 && ctx.Err() == nil {
		fetches := consumer.PollFetches(ctx)
		s.Require().Empty(fetches.Errors())
		records = append(records, fetches.Records()...)
	}
	s.Require().Len(records, 3)

	var payload struct {
		ID       string `json:"id"`
		Action   string `json:"action"`
		Category string `json:"category"`
		AssetID  uint64 `json:"asset_id"`
	}
	s.Require().NoError(json.Unmarshal(records[0].Value, &payload))
	s.NotEmpty(payload.ID)
	s.Equal(string(audit.EventAssetRegistered), payload.Action)
	s.Equal(string(audit.CategoryCompliance), payload.Category)
	s.Equal("asset:1", string(records[0].Key))
}
