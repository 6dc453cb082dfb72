package invitation

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/minrisk/risk-management/internal/profile"
	"github.com/minrisk/risk-management/internal/transport"
	"github.com/minrisk/risk-management/pkg/logger"
)

type ServiceAPI interface {
	InviteUser(ctx context.Context, caller *profile.Profile, dto InviteUserDTO) (*InviteResult, error)
	InvitePrimaryAdmin(ctx context.Context, caller *profile.Profile, dto InvitePrimaryAdminDTO) (*InviteResult, error)
	InviteRegulator(ctx context.Context, caller *profile.Profile, dto InviteRegulatorDTO) (*InviteResult, error)
	Accept(ctx context.Context, dto AcceptDTO) (*Invitation, error)
	List(caller *profile.Profile, orgID string) ([]*Invitation, error)
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

// InviteUser provisions a member inside an organization.
func (h *Handler) InviteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto InviteUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("InviteUser: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.InviteUser(r.Context(), caller, dto)
	if err != nil {
		h.Logger.Error("InviteUser: service error", "error", err, "caller_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("InviteUser: user invited", "user_id", result.UserID, "caller_id", caller.ID)
	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{"data": result})
}

// InvitePrimaryAdmin provisions an organization's primary admin.
func (h *Handler) InvitePrimaryAdmin(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto InvitePrimaryAdminDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("InvitePrimaryAdmin: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.InvitePrimaryAdmin(r.Context(), caller, dto)
	if err != nil {
		h.Logger.Error("InvitePrimaryAdmin: service error", "error", err, "caller_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("InvitePrimaryAdmin: primary admin invited", "user_id", result.UserID, "caller_id", caller.ID)
	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{"data": result})
}

// InviteRegulator provisions a regulator account with access grants.
func (h *Handler) InviteRegulator(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto InviteRegulatorDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("InviteRegulator: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := h.Service.InviteRegulator(r.Context(), caller, dto)
	if err != nil {
		h.Logger.Error("InviteRegulator: service error", "error", err, "caller_id", caller.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("InviteRegulator: regulator invited", "user_id", result.UserID, "caller_id", caller.ID)
	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{"data": result})
}

// Accept consumes an invitation token. Unauthenticated: the invited user has
// no session yet when they follow the link.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	var dto AcceptDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Accept: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	inv, err := h.Service.Accept(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Accept: invitation accepted", "invitation_id", inv.ID)
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": inv})
}

// List returns invitations for an organization the caller administers.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orgID := r.URL.Query().Get("organization_id")
	if orgID == "" {
		if caller.OrganizationID == nil {
			h.WriteError(w, http.StatusBadRequest, "organization_id is required")
			return
		}
		orgID = *caller.OrganizationID
	}

	rows, err := h.Service.List(caller, orgID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": rows})
}
