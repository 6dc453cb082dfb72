package organization

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
	GetByID(caller *profile.Profile, id string) (*Organization, error)
	List(caller *profile.Profile) ([]*Organization, error)
	Create(caller *profile.Profile, dto CreateOrganizationDTO) (*Organization, error)
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

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	org, err := h.Service.GetByID(caller, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": org})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orgs, err := h.Service.List(caller)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": orgs})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateOrganizationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	org, err := h.Service.Create(caller, dto)
	if err != nil {
		h.Logger.Error("Create: service error", "error", err, "caller_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{"data": org})
}
