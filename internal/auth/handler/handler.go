package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "custody/pkg/domain"
	dErrors "custody/pkg/domain-errors"
	"custody/pkg/platform/httputil"
	"custody/pkg/requestcontext"
)

// Service defines the token operations exposed over HTTP.
type Service interface {
	RevokeToken(ctx context.Context, caller id.Address, jti string, expiresAt time.Time) error
}

// Handler handles auth endpoints for already authenticated callers.
type Handler struct {
	auth   Service
	logger *slog.Logger
}

func New(auth Service, logger *slog.Logger) *Handler {
	return &Handler{
		auth:   auth,
		logger: logger,
	}
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/revoke", h.HandleRevoke)
}

// HandleRevoke revokes the bearer token presented with the request.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	err := h.auth.RevokeToken(ctx,
		requestcontext.Caller(ctx),
		requestcontext.TokenID(ctx),
		requestcontext.TokenExpiry(ctx),
	)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "failed to revoke token",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
