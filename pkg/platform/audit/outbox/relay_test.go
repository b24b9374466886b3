package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeSource struct {
	mu        sync.Mutex
	pending   []Entry
	published []Entry
}

func (f *fakeSource) Process(ctx context.Context, limit int, fn func(context.Context, []Entry) error) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := min(limit, len(f.pending))
	batch := append([]Entry(nil), f.pending[:n]...)
	if err := fn(ctx, batch); err != nil {
		return 0, err
	}
	f.pending = f.pending[n:]
	f.published = append(f.published, batch...)
	return n, nil
}

type fakeSink struct {
	mu    sync.Mutex
	err   error
	calls [][]Entry
}

func (f *fakeSink) Publish(_ context.Context, entries []Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, entries)
	return f.err
}

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	out := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		out = append(out, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return out
}

type RelaySuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func entries(n int) []Entry {
	out := make([]Entry, n)
	for i := range out {
		out[i] = Entry{ID: string(rune('a' + i)), AggregateType: "asset", AggregateID: "1", EventType: "asset_transfered"}
	}
	return out
}

func (s *RelaySuite) TestRunOnce() {
	s.Run("publishes one batch and marks it", func() {
		src := &fakeSource{pending: entries(3)}
		sink := &fakeSink{}
		relay := NewRelay(src, sink, WithBatchSize(2), WithLogger(s.logger))

		n, err := relay.RunOnce(context.Background())
		s.Require().NoError(err)
		s.Equal(2, n)
		s.Len(src.published, 2)
		s.Len(src.pending, 1)
		s.Len(sink.calls, 1)
	})

	s.Run("sink failure leaves entries pending", func() {
		src := &fakeSource{pending: entries(2)}
		sink := &fakeSink{err: errors.New("broker down")}
		relay := NewRelay(src, sink, WithLogger(s.logger))

		n, err := relay.RunOnce(context.Background())
		s.Require().Error(err)
		s.Zero(n)
		s.Len(src.pending, 2)
		s.Empty(src.published)
	})

	s.Run("empty outbox does not call the sink", func() {
		src := &fakeSource{}
		sink := &fakeSink{}
		relay := NewRelay(src, sink, WithLogger(s.logger))

		n, err := relay.RunOnce(context.Background())
		s.Require().NoError(err)
		s.Zero(n)
		s.Empty(sink.calls)
	})
}

func (s *RelaySuite) TestRunDrainsUntilCancelled() {
	src := &fakeSource{pending: entries(5)}
	sink := &fakeSink{}
	relay := NewRelay(src, sink,
		WithBatchSize(2),
		WithPollInterval(10*time.Millisecond),
		WithLogger(s.logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	s.Eventually(func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return len(src.published) == 5
	}, time.Second, 5*time.Millisecond)

	cancel()
	s.NoError(<-done)
}

func (s *RelaySuite) TestKafkaSink() {
	s.Run("records are keyed by aggregate and carry the event type", func() {
		p := &fakeProducer{}
		sink := &KafkaSink{client: p, topic: "custody.audit"}
		created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		err := sink.Publish(context.Background(), []Entry{{
			ID:            "e-1",
			AggregateType: "asset",
			AggregateID:   "7",
			EventType:     "asset_registered",
			Payload:       []byte(`{"asset_id":7}`),
			CreatedAt:     created,
		}})
		s.Require().NoError(err)
		s.Require().Len(p.records, 1)

		rec := p.records[0]
		s.Equal("custody.audit", rec.Topic)
		s.Equal("asset:7", string(rec.Key))
		s.JSONEq(`{"asset_id":7}`, string(rec.Value))
		s.Equal(created, rec.Timestamp)
		s.Equal(HeaderEventType, rec.Headers[0].Key)
		s.Equal("asset_registered", string(rec.Headers[0].Value))
	})

	s.Run("produce errors are returned", func() {
		p := &fakeProducer{err: errors.New("not leader")}
		sink := &KafkaSink{client: p, topic: "custody.audit"}

		err := sink.Publish(context.Background(), entries(1))
		s.Require().Error(err)
		s.Contains(err.Error(), "not leader")
	})
}
