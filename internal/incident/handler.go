package incident

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/minrisk/risk-management/internal/profile"
	"github.com/minrisk/risk-management/internal/transport"
	"github.com/minrisk/risk-management/pkg/logger"
)

type ServiceAPI interface {
	List(caller *profile.Profile, orgID string) ([]*Incident, error)
	Get(caller *profile.Profile, id string) (*Incident, error)
	Create(caller *profile.Profile, orgID string, dto CreateIncidentDTO) (*Incident, error)
	Update(caller *profile.Profile, id string, dto UpdateIncidentDTO) (*Incident, error)
	Delete(caller *profile.Profile, id string) error
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := h.Service.List(caller, r.URL.Query().Get("organization_id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": rows})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	row, err := h.Service.Get(caller, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": row})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateIncidentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Create: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	created, err := h.Service.Create(caller, r.URL.Query().Get("organization_id"), dto)
	if err != nil {
		h.Logger.Error("Create: service error", "error", err, "caller_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{"data": created})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdateIncidentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Update: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	updated, err := h.Service.Update(caller, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": updated})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Service.Delete(caller, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
