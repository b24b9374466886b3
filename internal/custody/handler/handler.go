package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"custody/internal/custody/models"
	id "custody/pkg/domain"
	dErrors "custody/pkg/domain-errors"
	"custody/pkg/platform/httputil"
	"custody/pkg/requestcontext"
)

// Service defines the custody operations exposed over HTTP.
type Service interface {
	Administrator(ctx context.Context) (id.Address, error)
	TransferAdministration(ctx context.Context, caller, next id.Address) error
	RegisterActor(ctx context.Context, caller, target id.Address, role models.Role) error
	DisableActor(ctx context.Context, caller, target id.Address) error
	GetActor(ctx context.Context, caller, target id.Address) (models.ActorView, error)
	RegisterAsset(ctx context.Context, caller id.Address, details models.AssetDetails) (id.AssetID, error)
	GetTotalAssetNumber(ctx context.Context) (uint64, error)
	GetAsset(ctx context.Context, assetID id.AssetID) (models.AssetView, error)
	GetAssetCurrentHolder(ctx context.Context, assetID id.AssetID) (id.Address, error)
	GetAssetHolderHistory(ctx context.Context, assetID id.AssetID) ([]id.Address, error)
	TransferAsset(ctx context.Context, caller id.Address, assetID id.AssetID, next id.Address) error
}

// Handler serves the custody ledger endpoints. Routes expect RequireAuth to
// have placed the caller in the request context.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register registers the custody routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/administrator", h.HandleGetAdministrator)
	r.Post("/administrator/transfer", h.HandleTransferAdministration)

	r.Post("/actors", h.HandleRegisterActor)
	r.Get("/actors/{address}", h.HandleGetActor)
	r.Post("/actors/{address}/disable", h.HandleDisableActor)

	r.Post("/assets", h.HandleRegisterAsset)
	r.Get("/assets/count", h.HandleGetTotalAssetNumber)
	r.Get("/assets/{id}", h.HandleGetAsset)
	r.Get("/assets/{id}/holder", h.HandleGetAssetCurrentHolder)
	r.Get("/assets/{id}/history", h.HandleGetAssetHolderHistory)
	r.Post("/assets/{id}/transfer", h.HandleTransferAsset)
}

func (h *Handler) HandleGetAdministrator(w http.ResponseWriter, r *http.Request) {
	admin, err := h.service.Administrator(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "get administrator", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AdministratorResponse{Administrator: admin})
}

func (h *Handler) HandleTransferAdministration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransferAdministrationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.TransferAdministration(ctx, caller, req.newAdministrator); err != nil {
		h.writeServiceError(w, r, "transfer administration", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRegisterActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RegisterActorRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.RegisterActor(ctx, caller, req.address, req.role); err != nil {
		h.writeServiceError(w, r, "register actor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleDisableActor(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	target, ok := h.addressParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DisableActor(r.Context(), caller, target); err != nil {
		h.writeServiceError(w, r, "disable actor", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetActor(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	target, ok := h.addressParam(w, r)
	if !ok {
		return
	}
	view, err := h.service.GetActor(r.Context(), caller, target)
	if err != nil {
		h.writeServiceError(w, r, "get actor", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toActorResponse(view))
}

func (h *Handler) HandleRegisterAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RegisterAssetRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	assetID, err := h.service.RegisterAsset(ctx, caller, req.details())
	if err != nil {
		h.writeServiceError(w, r, "register asset", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, RegisterAssetResponse{AssetID: uint64(assetID)})
}

func (h *Handler) HandleGetTotalAssetNumber(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.GetTotalAssetNumber(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "count assets", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AssetCountResponse{Total: total})
}

func (h *Handler) HandleGetAsset(w http.ResponseWriter, r *http.Request) {
	assetID, ok := h.assetIDParam(w, r)
	if !ok {
		return
	}
	view, err := h.service.GetAsset(r.Context(), assetID)
	if err != nil {
		h.writeServiceError(w, r, "get asset", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAssetResponse(view))
}

func (h *Handler) HandleGetAssetCurrentHolder(w http.ResponseWriter, r *http.Request) {
	assetID, ok := h.assetIDParam(w, r)
	if !ok {
		return
	}
	holder, err := h.service.GetAssetCurrentHolder(r.Context(), assetID)
	if err != nil {
		h.writeServiceError(w, r, "get asset holder", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HolderResponse{AssetID: uint64(assetID), Holder: holder})
}

func (h *Handler) HandleGetAssetHolderHistory(w http.ResponseWriter, r *http.Request) {
	assetID, ok := h.assetIDParam(w, r)
	if !ok {
		return
	}
	history, err := h.service.GetAssetHolderHistory(r.Context(), assetID)
	if err != nil {
		h.writeServiceError(w, r, "get asset history", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HistoryResponse{AssetID: uint64(assetID), HolderHistory: history})
}

func (h *Handler) HandleTransferAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	assetID, ok := h.assetIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[TransferAssetRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.TransferAsset(ctx, caller, assetID, req.nextHolder); err != nil {
		h.writeServiceError(w, r, "transfer asset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireCaller(w http.ResponseWriter, r *http.Request) (id.Address, bool) {
	ctx := r.Context()
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		// RequireAuth must run before these routes
		h.logger.ErrorContext(ctx, "caller missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return caller, true
}

func (h *Handler) addressParam(w http.ResponseWriter, r *http.Request) (id.Address, bool) {
	addr, err := id.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return addr, true
}

func (h *Handler) assetIDParam(w http.ResponseWriter, r *http.Request) (id.AssetID, bool) {
	assetID, err := id.ParseAssetID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return assetID, true
}

// writeServiceError maps access failures to 403, InvalidAssetId to 404 and
// other validation failures to 422. Anything else goes through httputil.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, action string, err error) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var accessErr *models.AccessError
	if errors.As(err, &accessErr) {
		h.logger.WarnContext(ctx, action+" forbidden",
			"request_id", requestID,
			"kind", accessErr.Kind,
			"account", accessErr.Account,
		)
		httputil.WriteJSON(w, http.StatusForbidden, CustodyErrorResponse{
			Error:            string(accessErr.Kind),
			ErrorDescription: accessErr.Error(),
			Account:          accessErr.Account,
		})
		return
	}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		status := http.StatusUnprocessableEntity
		if validationErr.Kind == models.KindInvalidAssetID {
			status = http.StatusNotFound
		}
		h.logger.InfoContext(ctx, action+" rejected",
			"request_id", requestID,
			"kind", validationErr.Kind,
		)
		httputil.WriteJSON(w, status, CustodyErrorResponse{
			Error:            string(validationErr.Kind),
			ErrorDescription: validationErr.Message,
		})
		return
	}

	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "failed to "+action,
			"request_id", requestID,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
