package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/minrisk/risk-management/internal/invitation"
)

// InvitationRepository implements invitation.Repository using GORM
type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Create(inv *invitation.Invitation) error {
	return r.db.Create(inv).Error
}

func (r *InvitationRepository) GetByID(id string) (*invitation.Invitation, error) {
	var inv invitation.Invitation
	err := r.db.Where("id = ?", id).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invitation.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepository) ListByOrganization(orgID string) ([]*invitation.Invitation, error) {
	var rows []*invitation.Invitation
	err := r.db.
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *InvitationRepository) MarkAccepted(id string, at time.Time) error {
	result := r.db.Model(&invitation.Invitation{}).
		Where("id = ? AND status = ?", id, invitation.StatusPending).
		Updates(map[string]interface{}{
			"status":      invitation.StatusAccepted,
			"accepted_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return invitation.ErrNotFound
	}
	return nil
}

// ExpirePending flips every pending invitation past its deadline to expired
// and reports how many rows changed.
func (r *InvitationRepository) ExpirePending(cutoff time.Time) (int64, error) {
	result := r.db.Model(&invitation.Invitation{}).
		Where("status = ? AND expires_at < ?", invitation.StatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":     invitation.StatusExpired,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
