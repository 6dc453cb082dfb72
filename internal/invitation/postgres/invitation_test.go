package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minrisk/risk-management/internal/invitation"
)

func TestInvitationRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "InvitationRepository Suite")
}

type SQLiteInvitation struct {
	ID             string     `gorm:"primaryKey"`
	Email          string     `gorm:"column:email;not null"`
	OrganizationID *string    `gorm:"column:organization_id"`
	Role           string     `gorm:"column:role;not null"`
	Status         string     `gorm:"column:status;default:'pending'"`
	CreatedBy      string     `gorm:"column:created_by"`
	ExpiresAt      time.Time  `gorm:"column:expires_at"`
	AcceptedAt     *time.Time `gorm:"column:accepted_at"`
	Notes          string     `gorm:"column:notes"`
	InviteCode     string     `gorm:"column:invite_code"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (SQLiteInvitation) TableName() string {
	return "invitations"
}

var _ = Describe("InvitationRepository", func() {
	var (
		db   *gorm.DB
		repo *InvitationRepository
	)

	orgA := "org-a"

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteInvitation{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewInvitationRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	newInvitation := func(id string, status invitation.Status, expiresAt time.Time) *invitation.Invitation {
		return &invitation.Invitation{
			ID:             id,
			Email:          id + "@x.com",
			OrganizationID: &orgA,
			Role:           "user",
			Status:         status,
			CreatedBy:      "admin-1",
			ExpiresAt:      expiresAt,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
	}

	Describe("MarkAccepted", func() {
		It("accepts a pending invitation exactly once", func() {
			inv := newInvitation("inv-1", invitation.StatusPending, time.Now().Add(time.Hour))
			Expect(repo.Create(inv)).To(Succeed())

			now := time.Now()
			Expect(repo.MarkAccepted("inv-1", now)).To(Succeed())

			got, err := repo.GetByID("inv-1")
			Expect(err).ToNot(HaveOccurred())
			Expect(got.Status).To(Equal(invitation.StatusAccepted))
			Expect(got.AcceptedAt).ToNot(BeNil())

			// second accept hits zero rows
			Expect(repo.MarkAccepted("inv-1", now)).To(MatchError(invitation.ErrNotFound))
		})
	})

	Describe("ExpirePending", func() {
		It("expires only stale pending rows", func() {
			Expect(repo.Create(newInvitation("fresh", invitation.StatusPending, time.Now().Add(time.Hour)))).To(Succeed())
			Expect(repo.Create(newInvitation("stale", invitation.StatusPending, time.Now().Add(-time.Hour)))).To(Succeed())
			Expect(repo.Create(newInvitation("done", invitation.StatusAccepted, time.Now().Add(-time.Hour)))).To(Succeed())

			n, err := repo.ExpirePending(time.Now())

			Expect(err).ToNot(HaveOccurred())
			Expect(n).To(Equal(int64(1)))

			stale, err := repo.GetByID("stale")
			Expect(err).ToNot(HaveOccurred())
			Expect(stale.Status).To(Equal(invitation.StatusExpired))

			fresh, err := repo.GetByID("fresh")
			Expect(err).ToNot(HaveOccurred())
			Expect(fresh.Status).To(Equal(invitation.StatusPending))
		})
	})

	Describe("ListByOrganization", func() {
		It("returns only the organization's invitations", func() {
			orgB := "org-b"
			Expect(repo.Create(newInvitation("a", invitation.StatusPending, time.Now().Add(time.Hour)))).To(Succeed())

			other := newInvitation("b", invitation.StatusPending, time.Now().Add(time.Hour))
			other.OrganizationID = &orgB
			Expect(repo.Create(other)).To(Succeed())

			rows, err := repo.ListByOrganization(orgA)

			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].ID).To(Equal("a"))
		})
	})
})
