package risk

import (
	"strings"

	"github.com/minrisk/risk-management/internal"
)

type CreateRiskDTO struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	OwnerID     *string  `json:"owner_id,omitempty"`
}

func (d *CreateRiskDTO) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return internal.NewValidationError("title is required", internal.ErrCodeValidationFailed)
	}
	if d.Severity == "" {
		d.Severity = SeverityMedium
	}
	if !d.Severity.Valid() {
		return internal.NewValidationError("severity must be low, medium, high or critical", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateRiskDTO carries a partial update; nil fields are left untouched.
type UpdateRiskDTO struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Severity    *Severity `json:"severity,omitempty"`
	OwnerID     *string   `json:"owner_id,omitempty"`
}

func (d *UpdateRiskDTO) Validate() error {
	if d.Title != nil && strings.TrimSpace(*d.Title) == "" {
		return internal.NewValidationError("title must not be empty", internal.ErrCodeValidationFailed)
	}
	if d.Status != nil && !d.Status.Valid() {
		return internal.NewValidationError("status must be open, monitoring, mitigated or closed", internal.ErrCodeInvalidStatus)
	}
	if d.Severity != nil && !d.Severity.Valid() {
		return internal.NewValidationError("severity must be low, medium, high or critical", internal.ErrCodeValidationFailed)
	}
	return nil
}
