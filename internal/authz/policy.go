// Package authz is the single authorization policy consumed by every
// handler, replacing per-endpoint role string checks.
//
// The policy implementation lives in the profile package, next to the Role
// and Profile types it is written in terms of, so that profile's own service
// can apply it without an import cycle. This package forwards to it under the
// names the handlers consume.
package authz

import (
	"github.com/minrisk/risk-management/internal/profile"
)

// CanInvite enforces the invitation authorization matrix. targetOrgID is nil
// for regulator invites, which are not bound to an organization.
func CanInvite(caller *profile.Profile, targetRole profile.Role, targetOrgID *string) error {
	return profile.CanInvite(caller, targetRole, targetOrgID)
}

// CanManageProfiles authorizes approve/reject and pending-profile listing.
// Primary admins manage their own organization; super admins manage any.
func CanManageProfiles(caller *profile.Profile, targetOrgID *string) error {
	return profile.CanManageProfiles(caller, targetOrgID)
}

// CanAccessOrganization gates reads/writes of organization-scoped records
// (risks, incidents, suggestions).
func CanAccessOrganization(caller *profile.Profile, orgID string) error {
	return profile.CanAccessOrganization(caller, orgID)
}
