package profile

import "errors"

// EnrichDTO is the request shape for the owner/profile enrichment endpoint.
type EnrichDTO struct {
	ProfileIDs []string `json:"profile_ids"`
}

func (d EnrichDTO) Validate() error {
	if len(d.ProfileIDs) == 0 {
		return errors.New("profile_ids is required")
	}
	if len(d.ProfileIDs) > 200 {
		return errors.New("profile_ids must contain at most 200 entries")
	}
	return nil
}

// RejectDTO carries the optional note recorded when rejecting a profile.
type RejectDTO struct {
	Reason string `json:"reason,omitempty"`
}
