package profile

import (
	"github.com/minrisk/risk-management/internal"
)

// invitationMatrix maps a caller role to the set of roles it may invite.
//
//	super_admin     -> primary_admin, regulator, secondary_admin, user (any organization)
//	primary_admin   -> secondary_admin, user (own organization only)
//	secondary_admin -> user (own organization only)
//	anything else   -> nothing
var invitationMatrix = map[Role][]Role{
	RoleSuperAdmin: {
		RolePrimaryAdmin,
		RoleRegulator,
		RoleSecondaryAdmin,
		RoleUser,
	},
	RolePrimaryAdmin: {
		RoleSecondaryAdmin,
		RoleUser,
	},
	RoleSecondaryAdmin: {
		RoleUser,
	},
}

// crossOrganization reports whether the caller role may target organizations
// other than its own. Only super admins may.
func crossOrganization(role Role) bool {
	return role == RoleSuperAdmin
}

// CanInvite enforces the invitation authorization matrix. targetOrgID is nil
// for regulator invites, which are not bound to an organization.
func CanInvite(caller *Profile, targetRole Role, targetOrgID *string) error {
	allowed, ok := invitationMatrix[caller.Role]
	if !ok {
		return internal.ErrRoleNotAllowed
	}

	roleAllowed := false
	for _, r := range allowed {
		if r == targetRole {
			roleAllowed = true
			break
		}
	}
	if !roleAllowed {
		return internal.ErrRoleNotAllowed
	}

	if crossOrganization(caller.Role) {
		return nil
	}

	// Non-super-admins may only invite into their own organization.
	if targetOrgID == nil || !caller.SameOrganization(targetOrgID) {
		return internal.ErrOrganizationScope
	}

	return nil
}

// CanManageProfiles authorizes approve/reject and pending-profile listing.
// Primary admins manage their own organization; super admins manage any.
func CanManageProfiles(caller *Profile, targetOrgID *string) error {
	switch caller.Role {
	case RoleSuperAdmin:
		return nil
	case RolePrimaryAdmin:
		if targetOrgID == nil || !caller.SameOrganization(targetOrgID) {
			return internal.ErrOrganizationScope
		}
		return nil
	default:
		return internal.ErrRoleNotAllowed
	}
}

// CanAccessOrganization gates reads/writes of organization-scoped records
// (risks, incidents, suggestions).
func CanAccessOrganization(caller *Profile, orgID string) error {
	if caller.Role == RoleSuperAdmin {
		return nil
	}
	if caller.SameOrganization(&orgID) {
		return nil
	}
	return internal.ErrOrganizationScope
}
