package authz_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/authz"
	"github.com/minrisk/risk-management/internal/profile"
)

func TestAuthz(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Authz Suite")
}

func strPtr(s string) *string { return &s }

func caller(role profile.Role, orgID *string) *profile.Profile {
	return &profile.Profile{
		ID:             "caller-id",
		Role:           role,
		Status:         profile.StatusApproved,
		OrganizationID: orgID,
	}
}

var _ = Describe("CanInvite", func() {
	orgA := strPtr("org-a")
	orgB := strPtr("org-b")

	Context("super admin", func() {
		It("may invite every role into any organization", func() {
			super := caller(profile.RoleSuperAdmin, nil)

			for _, target := range []profile.Role{
				profile.RolePrimaryAdmin,
				profile.RoleRegulator,
				profile.RoleSecondaryAdmin,
				profile.RoleUser,
			} {
				Expect(authz.CanInvite(super, target, orgA)).To(Succeed())
				Expect(authz.CanInvite(super, target, orgB)).To(Succeed())
			}
		})

		It("may invite regulators without an organization", func() {
			super := caller(profile.RoleSuperAdmin, nil)
			Expect(authz.CanInvite(super, profile.RoleRegulator, nil)).To(Succeed())
		})
	})

	Context("primary admin", func() {
		It("may invite secondary admins and users into its own organization", func() {
			primary := caller(profile.RolePrimaryAdmin, orgA)

			Expect(authz.CanInvite(primary, profile.RoleSecondaryAdmin, orgA)).To(Succeed())
			Expect(authz.CanInvite(primary, profile.RoleUser, orgA)).To(Succeed())
		})

		It("may not invite primary admins or regulators", func() {
			primary := caller(profile.RolePrimaryAdmin, orgA)

			err := authz.CanInvite(primary, profile.RolePrimaryAdmin, orgA)
			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))

			err = authz.CanInvite(primary, profile.RoleRegulator, nil)
			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
		})

		It("may not invite into another organization", func() {
			primary := caller(profile.RolePrimaryAdmin, orgA)

			err := authz.CanInvite(primary, profile.RoleUser, orgB)
			Expect(err).To(MatchError(internal.ErrOrganizationScope))
		})
	})

	Context("secondary admin", func() {
		It("may only invite users, in its own organization", func() {
			secondary := caller(profile.RoleSecondaryAdmin, orgA)

			Expect(authz.CanInvite(secondary, profile.RoleUser, orgA)).To(Succeed())

			err := authz.CanInvite(secondary, profile.RoleSecondaryAdmin, orgA)
			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))

			err = authz.CanInvite(secondary, profile.RoleUser, orgB)
			Expect(err).To(MatchError(internal.ErrOrganizationScope))
		})
	})

	Context("regular users and regulators", func() {
		It("may invite nobody", func() {
			for _, role := range []profile.Role{profile.RoleUser, profile.RoleRegulator} {
				c := caller(role, orgA)
				err := authz.CanInvite(c, profile.RoleUser, orgA)
				Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
			}
		})
	})
})

var _ = Describe("CanManageProfiles", func() {
	orgA := strPtr("org-a")
	orgB := strPtr("org-b")

	It("allows super admins for any organization", func() {
		super := caller(profile.RoleSuperAdmin, nil)
		Expect(authz.CanManageProfiles(super, orgA)).To(Succeed())
		Expect(authz.CanManageProfiles(super, nil)).To(Succeed())
	})

	It("restricts primary admins to their own organization", func() {
		primary := caller(profile.RolePrimaryAdmin, orgA)

		Expect(authz.CanManageProfiles(primary, orgA)).To(Succeed())
		Expect(authz.CanManageProfiles(primary, orgB)).To(MatchError(internal.ErrOrganizationScope))
		Expect(authz.CanManageProfiles(primary, nil)).To(MatchError(internal.ErrOrganizationScope))
	})

	It("denies everyone else", func() {
		for _, role := range []profile.Role{profile.RoleSecondaryAdmin, profile.RoleUser, profile.RoleRegulator} {
			c := caller(role, orgA)
			Expect(authz.CanManageProfiles(c, orgA)).To(MatchError(internal.ErrRoleNotAllowed))
		}
	})
})

var _ = Describe("CanAccessOrganization", func() {
	It("allows members of the organization and super admins", func() {
		member := caller(profile.RoleUser, strPtr("org-a"))
		super := caller(profile.RoleSuperAdmin, nil)

		Expect(authz.CanAccessOrganization(member, "org-a")).To(Succeed())
		Expect(authz.CanAccessOrganization(super, "org-a")).To(Succeed())
	})

	It("denies outsiders and org-less callers", func() {
		member := caller(profile.RoleUser, strPtr("org-a"))
		regulator := caller(profile.RoleRegulator, nil)

		Expect(authz.CanAccessOrganization(member, "org-b")).To(MatchError(internal.ErrOrganizationScope))
		Expect(authz.CanAccessOrganization(regulator, "org-a")).To(MatchError(internal.ErrOrganizationScope))
	})
})
