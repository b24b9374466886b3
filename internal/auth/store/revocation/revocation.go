// Package revocation holds the token revocation list consulted by the auth
// middleware. Entries live until the revoked token would have expired.
package revocation

import (
	"context"
	"fmt"
	"time"

	"custody/pkg/platform/sentinel"
)

// TokenRevocationList records revoked token ids.
type TokenRevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Clock returns the current time.
type Clock func() time.Time

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
