// Package outbox moves audit events from the Postgres outbox table to Kafka.
//
// The relay claims a batch of unpublished rows, publishes them, and marks them
// published in the same database transaction. A crash between publish and
// commit republishes the batch, so consumers must dedupe on the event id.
package outbox

import (
	"context"
	"log/slog"
	"time"
)

// Entry is one outbox row.
type Entry struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// Source hands out batches of unpublished entries. Entries passed to fn are
// marked published only when fn returns nil.
type Source interface {
	Process(ctx context.Context, limit int, fn func(ctx context.Context, entries []Entry) error) (int, error)
}

// Sink publishes entries downstream.
type Sink interface {
	Publish(ctx context.Context, entries []Entry) error
}

const (
	defaultBatchSize    = 100
	defaultPollInterval = time.Second
)

// Relay polls a Source and forwards entries to a Sink.
type Relay struct {
	source   Source
	sink     Sink
	batch    int
	interval time.Duration
	logger   *slog.Logger
	metrics  *Metrics
}

// Option configures the Relay.
type Option func(*Relay)

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batch = n
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Relay) {
		r.metrics = m
	}
}

func NewRelay(source Source, sink Sink, opts ...Option) *Relay {
	r := &Relay{
		source:   source,
		sink:     sink,
		batch:    defaultBatchSize,
		interval: defaultPollInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce relays at most one batch and returns how many entries were published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	n, err := r.source.Process(ctx, r.batch, func(ctx context.Context, entries []Entry) error {
		if len(entries) == 0 {
			return nil
		}
		return r.sink.Publish(ctx, entries)
	})
	if err != nil {
		r.metrics.IncFailed()
		return 0, err
	}
	if n > 0 {
		r.metrics.AddPublished(n)
		r.metrics.ObserveBatchDuration(time.Since(start).Seconds())
	}
	return n, nil
}

// Run relays until ctx is cancelled. A full batch is followed immediately by
// the next poll; otherwise the relay waits for the poll interval.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "outbox relay started",
		"batch_size", r.batch,
		"poll_interval", r.interval,
	)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "outbox relay stopped")
			return nil
		case <-timer.C:
		}

		n, err := r.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			r.logger.ErrorContext(ctx, "outbox relay batch failed", "error", err)
		}

		next := r.interval
		if err == nil && n == r.batch {
			next = 0
		}
		timer.Reset(next)
	}
}
