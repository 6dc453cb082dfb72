package profile_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/core/events"
	"github.com/minrisk/risk-management/internal/profile"
)

func TestProfileService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ProfileService Suite")
}

// Mock repository for testing
type mockProfileRepository struct {
	profiles          map[string]*profile.Profile
	changeStatusError error
	getError          error
	statusChanges     []statusChange
}

type statusChange struct {
	ID      string
	Status  profile.Status
	ActorID string
}

func newMockProfileRepository() *mockProfileRepository {
	return &mockProfileRepository{profiles: make(map[string]*profile.Profile)}
}

func (m *mockProfileRepository) GetByID(id string) (*profile.Profile, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p, nil
}

func (m *mockProfileRepository) GetByEmail(email string) (*profile.Profile, error) {
	for _, p := range m.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, profile.ErrNotFound
}

func (m *mockProfileRepository) GetByIDsInOrganization(ids []string, orgID string) ([]*profile.Profile, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	var result []*profile.Profile
	for _, id := range ids {
		p, ok := m.profiles[id]
		if !ok {
			continue
		}
		if p.OrganizationID != nil && *p.OrganizationID == orgID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockProfileRepository) ListPending(orgID *string) ([]*profile.Profile, error) {
	var result []*profile.Profile
	for _, p := range m.profiles {
		if p.Status != profile.StatusPending && p.Status != profile.StatusPendingInvite {
			continue
		}
		if orgID != nil && (p.OrganizationID == nil || *p.OrganizationID != *orgID) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (m *mockProfileRepository) CreateOrReconcile(p *profile.Profile) error {
	m.profiles[p.ID] = p
	return nil
}

func (m *mockProfileRepository) ChangeStatus(id string, status profile.Status, actorID string) error {
	if m.changeStatusError != nil {
		return m.changeStatusError
	}
	p, ok := m.profiles[id]
	if !ok {
		return profile.ErrNotFound
	}
	p.Status = status
	m.statusChanges = append(m.statusChanges, statusChange{ID: id, Status: status, ActorID: actorID})
	return nil
}

var _ = Describe("ProfileService", func() {
	var (
		service *profile.Service
		repo    *mockProfileRepository
		bus     *events.EventBus
		logger  *slog.Logger
	)

	orgA := "org-a"
	orgB := "org-b"

	BeforeEach(func() {
		repo = newMockProfileRepository()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		service = profile.NewService(repo, bus, logger)
	})

	Describe("Enrich", func() {
		BeforeEach(func() {
			repo.profiles["p1"] = &profile.Profile{ID: "p1", OrganizationID: &orgA, Email: "a@x.com", FullName: "Alice"}
			repo.profiles["p2"] = &profile.Profile{ID: "p2", OrganizationID: &orgA, Email: "b@x.com", FullName: "Bob"}
			repo.profiles["p3"] = &profile.Profile{ID: "p3", OrganizationID: &orgB, Email: "c@y.com", FullName: "Carol"}
		})

		It("resolves IDs inside the caller's organization", func() {
			member := &profile.Profile{ID: "p1", OrganizationID: &orgA, Role: profile.RoleUser}

			result, err := service.Enrich(member, []string{"p1", "p2"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(2))
			Expect(result["p1"].FullName).To(Equal("Alice"))
			Expect(result["p2"].Email).To(Equal("b@x.com"))
		})

		It("silently omits profiles from other organizations", func() {
			member := &profile.Profile{ID: "p1", OrganizationID: &orgA, Role: profile.RoleUser}

			result, err := service.Enrich(member, []string{"p1", "p3"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveKey("p1"))
			Expect(result).ToNot(HaveKey("p3"))
		})

		It("silently omits unknown IDs", func() {
			member := &profile.Profile{ID: "p1", OrganizationID: &orgA, Role: profile.RoleUser}

			result, err := service.Enrich(member, []string{"p1", "ghost"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(1))
		})

		It("returns an empty map for org-less callers", func() {
			regulator := &profile.Profile{ID: "reg", Role: profile.RoleRegulator}

			result, err := service.Enrich(regulator, []string{"p1"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(BeEmpty())
		})
	})

	Describe("ListPending", func() {
		BeforeEach(func() {
			repo.profiles["p1"] = &profile.Profile{ID: "p1", OrganizationID: &orgA, Status: profile.StatusPending}
			repo.profiles["p2"] = &profile.Profile{ID: "p2", OrganizationID: &orgB, Status: profile.StatusPending}
			repo.profiles["p3"] = &profile.Profile{ID: "p3", OrganizationID: &orgA, Status: profile.StatusApproved}
		})

		It("scopes primary admins to their organization", func() {
			primary := &profile.Profile{ID: "adm", Role: profile.RolePrimaryAdmin, OrganizationID: &orgA}

			pending, err := service.ListPending(primary)

			Expect(err).ToNot(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].ID).To(Equal("p1"))
		})

		It("gives super admins every organization", func() {
			super := &profile.Profile{ID: "sup", Role: profile.RoleSuperAdmin}

			pending, err := service.ListPending(super)

			Expect(err).ToNot(HaveOccurred())
			Expect(pending).To(HaveLen(2))
		})

		It("denies regular users", func() {
			user := &profile.Profile{ID: "u", Role: profile.RoleUser, OrganizationID: &orgA}

			_, err := service.ListPending(user)

			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
		})
	})

	Describe("Approve", func() {
		BeforeEach(func() {
			repo.profiles["target"] = &profile.Profile{
				ID:             "target",
				OrganizationID: &orgA,
				Role:           profile.RoleUser,
				Status:         profile.StatusPending,
			}
		})

		It("transitions a pending profile through the sanctioned path", func() {
			primary := &profile.Profile{ID: "adm", Role: profile.RolePrimaryAdmin, OrganizationID: &orgA}

			updated, err := service.Approve(context.Background(), primary, "target")

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(profile.StatusApproved))
			Expect(repo.statusChanges).To(HaveLen(1))
			Expect(repo.statusChanges[0].ActorID).To(Equal("adm"))
		})

		It("denies admins of another organization", func() {
			other := &profile.Profile{ID: "adm", Role: profile.RolePrimaryAdmin, OrganizationID: &orgB}

			_, err := service.Approve(context.Background(), other, "target")

			Expect(err).To(MatchError(internal.ErrOrganizationScope))
			Expect(repo.statusChanges).To(BeEmpty())
		})

		It("refuses profiles that are not awaiting a decision", func() {
			repo.profiles["target"].Status = profile.StatusApproved
			primary := &profile.Profile{ID: "adm", Role: profile.RolePrimaryAdmin, OrganizationID: &orgA}

			_, err := service.Approve(context.Background(), primary, "target")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidStatus))
		})

		It("surfaces transition failures as internal errors", func() {
			repo.changeStatusError = errors.New("db down")
			primary := &profile.Profile{ID: "adm", Role: profile.RolePrimaryAdmin, OrganizationID: &orgA}

			_, err := service.Approve(context.Background(), primary, "target")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})
	})

	Describe("Reject", func() {
		It("moves a pending_invite profile to rejected", func() {
			repo.profiles["target"] = &profile.Profile{
				ID:             "target",
				OrganizationID: &orgA,
				Status:         profile.StatusPendingInvite,
			}
			super := &profile.Profile{ID: "sup", Role: profile.RoleSuperAdmin}

			updated, err := service.Reject(context.Background(), super, "target", "incomplete application")

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Status).To(Equal(profile.StatusRejected))
		})
	})
})
