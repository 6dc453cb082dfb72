package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/minrisk/risk-management/internal/regulator"
)

// RegulatorRepository implements regulator storage using GORM
type RegulatorRepository struct {
	db *gorm.DB
}

func NewRegulatorRepository(db *gorm.DB) *RegulatorRepository {
	return &RegulatorRepository{db: db}
}

func (r *RegulatorRepository) GetByIDs(ids []string) ([]*regulator.Regulator, error) {
	if len(ids) == 0 {
		return []*regulator.Regulator{}, nil
	}

	var regulators []*regulator.Regulator
	err := r.db.Where("id IN ?", ids).Find(&regulators).Error
	return regulators, err
}

// GrantAccess creates one access row per regulator ID, all attributed to the
// granting admin.
func (r *RegulatorRepository) GrantAccess(userID string, regulatorIDs []string, grantedBy string) error {
	rows := make([]*regulator.Access, 0, len(regulatorIDs))
	for _, regID := range regulatorIDs {
		rows = append(rows, &regulator.Access{
			UserID:      userID,
			RegulatorID: regID,
			GrantedBy:   grantedBy,
			CreatedAt:   time.Now(),
		})
	}
	return r.db.Create(&rows).Error
}

func (r *RegulatorRepository) ListAccessForUser(userID string) ([]*regulator.Access, error) {
	var rows []*regulator.Access
	err := r.db.Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}
