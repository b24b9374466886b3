// Package service implements the custody ledger: the administrator gate, the
// actor registry, the asset registry and the custody state machine.
//
// Every exported operation runs as one store transaction. A call either
// applies all of its writes and audit events or none of them.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"custody/internal/custody/metrics"
	"custody/internal/custody/models"
	"custody/internal/custody/store"
	dErrors "custody/pkg/domain-errors"
	audit "custody/pkg/platform/audit"
	"custody/pkg/requestcontext"
)

const tracerName = "custody/internal/custody/service"

// AuditPublisher records custody events. It is called inside the store
// transaction; an error aborts the call.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the custody ledger.
type Service struct {
	tx             store.TxRunner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service over a transaction runner.
func New(tx store.TxRunner, opts ...Option) *Service {
	s := &Service{tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// run executes fn as one traced, timed transaction.
func (s *Service) run(ctx context.Context, op string, fn func(ctx context.Context, st store.Store) error, attrs ...attribute.KeyValue) error {
	ctx, span := s.tracer.Start(ctx, "custody."+op, trace.WithAttributes(attrs...))
	defer span.End()
	defer s.metrics.ObserveOperation(op, time.Now())

	err := s.tx.RunInTx(ctx, fn)
	if err != nil {
		s.recordFailure(ctx, span, op, err)
	}
	return err
}

func (s *Service) recordFailure(ctx context.Context, span trace.Span, op string, err error) {
	requestID := requestcontext.RequestID(ctx)
	if kind := RejectionKind(err); kind != "" {
		s.metrics.IncrementRejection(op, kind)
		span.SetStatus(codes.Error, kind)
		s.logger.InfoContext(ctx, "custody call rejected",
			"operation", op,
			"kind", kind,
			"request_id", requestID,
		)
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "internal")
	s.logger.ErrorContext(ctx, "custody call failed",
		"operation", op,
		"request_id", requestID,
		"error", err,
	)
}

// RejectionKind names the access or validation rule err reports, or "" when
// err is not a domain rejection.
func RejectionKind(err error) string {
	var accessErr *models.AccessError
	if errors.As(err, &accessErr) {
		return string(accessErr.Kind)
	}
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return string(validationErr.Kind)
	}
	if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
		return string(dErrors.CodeInvalidInput)
	}
	return ""
}

// emit publishes an event within the caller's transaction.
func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.auditPublisher == nil {
		return nil
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}

func storeErr(err error, msg string) error {
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
