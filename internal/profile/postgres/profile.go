package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/minrisk/risk-management/internal/profile"
)

// ProfileRepository implements the profile.Repository interface using GORM
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(id string) (*profile.Profile, error) {
	var p profile.Profile
	err := r.db.Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, profile.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByEmail(email string) (*profile.Profile, error) {
	var p profile.Profile
	err := r.db.Where("email = ?", email).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, profile.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByIDsInOrganization fetches only the requested profiles that belong to
// the given organization. The organization predicate lives in SQL so a
// foreign ID can never leak into the result set.
func (r *ProfileRepository) GetByIDsInOrganization(ids []string, orgID string) ([]*profile.Profile, error) {
	if len(ids) == 0 {
		return []*profile.Profile{}, nil
	}

	var profiles []*profile.Profile
	err := r.db.Where("id IN ? AND organization_id = ?", ids, orgID).
		Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) ListPending(orgID *string) ([]*profile.Profile, error) {
	query := r.db.Where("status IN ?", []profile.Status{profile.StatusPending, profile.StatusPendingInvite})
	if orgID != nil {
		query = query.Where("organization_id = ?", *orgID)
	}

	var profiles []*profile.Profile
	err := query.Order("created_at ASC").Find(&profiles).Error
	return profiles, err
}

// CreateOrReconcile inserts the profile, or updates the existing row when
// one is already present for the identity ID. Must never INSERT over an
// existing row.
func (r *ProfileRepository) CreateOrReconcile(p *profile.Profile) error {
	var existing profile.Profile
	err := r.db.Where("id = ?", p.ID).First(&existing).Error

	switch {
	case err == nil:
		return r.db.Model(&profile.Profile{}).
			Where("id = ?", p.ID).
			Updates(map[string]interface{}{
				"organization_id": p.OrganizationID,
				"role":            p.Role,
				"status":          p.Status,
				"email":           p.Email,
				"full_name":       p.FullName,
				"updated_at":      time.Now(),
			}).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.Create(p).Error
	default:
		return err
	}
}

// ChangeStatus runs the sanctioned change_user_status procedure, which also
// stamps approved_by/approved_at and writes the audit trail row. Non-postgres
// dialects (in-memory test databases) apply the procedure's effect inline.
func (r *ProfileRepository) ChangeStatus(id string, status profile.Status, actorID string) error {
	if r.db.Dialector.Name() == "postgres" {
		return r.db.Exec("SELECT change_user_status(?::uuid, ?::text, ?::uuid)", id, string(status), actorID).Error
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == profile.StatusApproved {
		updates["approved_by"] = actorID
		updates["approved_at"] = time.Now()
	}

	return r.db.Model(&profile.Profile{}).Where("id = ?", id).Updates(updates).Error
}
