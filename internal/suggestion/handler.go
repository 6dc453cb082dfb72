package suggestion

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/profile"
	"github.com/minrisk/risk-management/internal/transport"
	"github.com/minrisk/risk-management/pkg/logger"
)

type ServiceAPI interface {
	Analyze(ctx context.Context, caller *profile.Profile, incidentID string) (*AnalysisResult, error)
	ListForIncident(caller *profile.Profile, incidentID string) ([]*RiskSuggestion, error)
	Decide(caller *profile.Profile, suggestionID string, decision Status) (*RiskSuggestion, error)
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

// analyzeResponse is the fixed envelope of the analysis endpoint. The
// endpoint always answers 200; callers inspect Success instead of the HTTP
// status, so a flaky AI provider never breaks the incident page.
type analyzeResponse struct {
	Success          bool            `json:"success"`
	Data             *AnalysisResult `json:"data,omitempty"`
	Error            string          `json:"error,omitempty"`
	TechnicalDetails string          `json:"technical_details,omitempty"`
}

// Analyze runs the AI matching pipeline for an incident.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteJSON(w, http.StatusOK, analyzeResponse{
			Success: false,
			Error:   "authentication required",
		})
		return
	}

	incidentID := chi.URLParam(r, "id")
	if incidentID == "" {
		h.WriteJSON(w, http.StatusOK, analyzeResponse{
			Success: false,
			Error:   "incident id is required",
		})
		return
	}

	result, err := h.Service.Analyze(r.Context(), caller, incidentID)
	if err != nil {
		h.Logger.Error("Analyze: service error", "error", err, "incident_id", incidentID)
		h.WriteJSON(w, http.StatusOK, failureEnvelope(err))
		return
	}

	h.WriteJSON(w, http.StatusOK, analyzeResponse{
		Success: true,
		Data:    result,
	})
}

// failureEnvelope maps a service error to the user-facing message plus the
// technical detail string surfaced in the UI's expandable section.
func failureEnvelope(err error) analyzeResponse {
	resp := analyzeResponse{Success: false}

	appErr, ok := internal.IsAppError(err)
	if !ok {
		resp.Error = "analysis failed"
		resp.TechnicalDetails = err.Error()
		return resp
	}

	switch appErr.Code {
	case internal.ErrCodeUpstreamTimeout:
		resp.Error = "the AI service took too long to respond; try again"
	case internal.ErrCodeAIParseFailed:
		resp.Error = "the AI service returned an unreadable answer; try again"
	case internal.ErrCodeUpstreamFailed:
		resp.Error = "the AI service is currently unavailable"
	case internal.ErrCodeIncidentNotFound:
		resp.Error = "incident not found"
	case internal.ErrCodeOrganizationScope, internal.ErrCodeRoleNotAllowed:
		resp.Error = "you do not have access to this incident"
	default:
		resp.Error = "analysis failed"
	}
	resp.TechnicalDetails = appErr.Error()
	return resp
}

// List returns stored suggestions for an incident.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rows, err := h.Service.ListForIncident(caller, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": rows})
}

type decideDTO struct {
	Status Status `json:"status"`
}

// Decide accepts or rejects a pending suggestion.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	caller, ok := profile.FromContext(r.Context())
	if !ok || caller == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto decideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Decide: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	row, err := h.Service.Decide(caller, chi.URLParam(r, "id"), dto.Status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": row})
}
