package invitation

import (
	"strings"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/profile"
)

// InviteUserDTO is the payload for inviting a member into an organization.
// Role is limited to the org-scoped roles an admin can hand out.
type InviteUserDTO struct {
	Email          string       `json:"email"`
	FullName       string       `json:"full_name"`
	OrganizationID string       `json:"organization_id"`
	Role           profile.Role `json:"role"`
	Notes          string       `json:"notes,omitempty"`
}

func (d *InviteUserDTO) Validate() error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return internal.NewValidationError("a valid email is required", internal.ErrCodeInvalidEmail)
	}
	if strings.TrimSpace(d.FullName) == "" {
		return internal.NewValidationError("full_name is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.OrganizationID) == "" {
		return internal.NewValidationError("organization_id is required", internal.ErrCodeValidationFailed)
	}
	if d.Role == "" {
		d.Role = profile.RoleUser
	}
	if d.Role != profile.RoleUser && d.Role != profile.RoleSecondaryAdmin {
		return internal.NewValidationError("role must be user or secondary_admin", internal.ErrCodeInvalidRole)
	}
	return nil
}

// InvitePrimaryAdminDTO is the payload for provisioning an organization's
// primary admin.
type InvitePrimaryAdminDTO struct {
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	OrganizationID string `json:"organization_id"`
	Notes          string `json:"notes,omitempty"`
}

func (d *InvitePrimaryAdminDTO) Validate() error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return internal.NewValidationError("a valid email is required", internal.ErrCodeInvalidEmail)
	}
	if strings.TrimSpace(d.FullName) == "" {
		return internal.NewValidationError("full_name is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.OrganizationID) == "" {
		return internal.NewValidationError("organization_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// InviteRegulatorDTO is the payload for provisioning a regulator account.
// Regulator users carry no organization; instead they are linked to one or
// more regulator entities, all of which must exist before anything is created.
type InviteRegulatorDTO struct {
	Email        string   `json:"email"`
	FullName     string   `json:"full_name"`
	RegulatorIDs []string `json:"regulator_ids"`
	Notes        string   `json:"notes,omitempty"`
}

func (d *InviteRegulatorDTO) Validate() error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return internal.NewValidationError("a valid email is required", internal.ErrCodeInvalidEmail)
	}
	if strings.TrimSpace(d.FullName) == "" {
		return internal.NewValidationError("full_name is required", internal.ErrCodeValidationFailed)
	}
	if len(d.RegulatorIDs) == 0 {
		return internal.NewValidationError("at least one regulator_id is required", internal.ErrCodeValidationFailed)
	}
	seen := make(map[string]struct{}, len(d.RegulatorIDs))
	for _, id := range d.RegulatorIDs {
		if strings.TrimSpace(id) == "" {
			return internal.NewValidationError("regulator_ids must not contain empty entries", internal.ErrCodeValidationFailed)
		}
		if _, dup := seen[id]; dup {
			return internal.NewValidationError("regulator_ids must not contain duplicates", internal.ErrCodeValidationFailed)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// AcceptDTO carries the opaque token from the invitation link.
type AcceptDTO struct {
	Token string `json:"token"`
}

func (d *AcceptDTO) Validate() error {
	if strings.TrimSpace(d.Token) == "" {
		return internal.NewValidationError("token is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// InviteResult is the success payload for all invite operations. Warning is
// set when the account was provisioned but a best-effort step (invitation
// record or magic link) failed.
type InviteResult struct {
	UserID         string         `json:"user_id"`
	Email          string         `json:"email"`
	Role           profile.Role   `json:"role"`
	Status         profile.Status `json:"status"`
	InvitationID   string         `json:"invitation_id,omitempty"`
	OrganizationID *string        `json:"organization_id,omitempty"`
	MagicLink      string         `json:"magic_link,omitempty"`
	Warning        string         `json:"warning,omitempty"`
}
