// Package service implements token lifecycle operations for authenticated
// callers.
package service

import (
	"context"
	"log/slog"
	"time"

	"custody/internal/auth/store/revocation"
	id "custody/pkg/domain"
	dErrors "custody/pkg/domain-errors"
	audit "custody/pkg/platform/audit"
	"custody/pkg/requestcontext"
)

// AuditPublisher records security events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	trl            revocation.TokenRevocationList
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

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

func New(trl revocation.TokenRevocationList, opts ...Option) *Service {
	s := &Service{trl: trl}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RevokeToken adds the caller's token to the revocation list until it
// expires. Revoking an already expired token is a no-op.
func (s *Service) RevokeToken(ctx context.Context, caller id.Address, jti string, expiresAt time.Time) error {
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller required")
	}
	if jti == "" {
		return dErrors.New(dErrors.CodeBadRequest, "token id required")
	}

	ttl := expiresAt.Sub(requestcontext.Now(ctx))
	if ttl <= 0 {
		return nil
	}
	if err := s.trl.RevokeToken(ctx, jti, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add token to revocation list")
	}

	s.logger.InfoContext(ctx, "token revoked",
		"caller", caller,
		"jti", jti,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.auditPublisher != nil {
		err := s.auditPublisher.Emit(ctx, audit.Event{
			Action:  string(audit.EventTokenRevoked),
			Caller:  caller.String(),
			Subject: caller.String(),
		})
		if err != nil {
			// the token is already revoked; a lost event must not undo that
			s.logger.ErrorContext(ctx, "failed to record token revocation",
				"jti", jti,
				"error", err,
			)
		}
	}
	return nil
}
