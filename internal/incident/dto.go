package incident

import (
	"strings"
	"time"

	"github.com/minrisk/risk-management/internal"
)

type CreateIncidentDTO struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Severity    Severity   `json:"severity"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

func (d *CreateIncidentDTO) Validate() error {
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

// UpdateIncidentDTO carries a partial update; nil fields are left untouched.
type UpdateIncidentDTO struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Severity    *Severity  `json:"severity,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

func (d *UpdateIncidentDTO) Validate() error {
	if d.Title != nil && strings.TrimSpace(*d.Title) == "" {
		return internal.NewValidationError("title must not be empty", internal.ErrCodeValidationFailed)
	}
	if d.Status != nil && !d.Status.Valid() {
		return internal.NewValidationError("status must be open, investigating, resolved or closed", internal.ErrCodeInvalidStatus)
	}
	if d.Severity != nil && !d.Severity.Valid() {
		return internal.NewValidationError("severity must be low, medium, high or critical", internal.ErrCodeValidationFailed)
	}
	return nil
}
