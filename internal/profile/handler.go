package profile

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/minrisk/risk-management/internal/transport"
	"github.com/minrisk/risk-management/pkg/logger"
)

type ServiceAPI interface {
	GetByID(id string) (*Profile, error)
	Enrich(caller *Profile, profileIDs []string) (map[string]EnrichedProfile, error)
	ListPending(caller *Profile) ([]*Profile, error)
	Approve(ctx context.Context, caller *Profile, targetID string) (*Profile, error)
	Reject(ctx context.Context, caller *Profile, targetID, reason string) (*Profile, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// GetMe returns the caller's own profile.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.WriteJSON(w, http.StatusOK, caller)
}

// Enrich resolves profile IDs to display names within the caller's
// organization. Missing or foreign IDs are omitted from the result.
func (h *Handler) Enrich(w http.ResponseWriter, r *http.Request) {
	caller, ok := FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto EnrichDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Enrich: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	enriched, err := h.Service.Enrich(caller, dto.ProfileIDs)
	if err != nil {
		h.Logger.Error("Enrich: service error", "error", err, "caller_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": enriched})
}

// ListPending returns profiles awaiting an approval decision.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	caller, ok := FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	pending, err := h.Service.ListPending(caller)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": pending})
}

// Approve moves a pending profile to approved.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	caller, ok := FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	targetID := chi.URLParam(r, "id")
	if targetID == "" {
		h.WriteError(w, http.StatusBadRequest, "profile id is required")
		return
	}

	updated, err := h.Service.Approve(r.Context(), caller, targetID)
	if err != nil {
		h.Logger.Error("Approve: service error", "error", err, "target_id", targetID, "caller_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Approve: profile approved", "target_id", targetID, "caller_id", caller.ID)
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": updated})
}

// Reject moves a pending profile to rejected.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	caller, ok := FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	targetID := chi.URLParam(r, "id")
	if targetID == "" {
		h.WriteError(w, http.StatusBadRequest, "profile id is required")
		return
	}

	var dto RejectDTO
	if r.Body != nil {
		// reason is optional; decode errors on an empty body are fine
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	updated, err := h.Service.Reject(r.Context(), caller, targetID, dto.Reason)
	if err != nil {
		h.Logger.Error("Reject: service error", "error", err, "target_id", targetID, "caller_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Reject: profile rejected", "target_id", targetID, "caller_id", caller.ID)
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": updated})
}
