package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/minrisk/risk-management/internal/risk"
)

// RiskRepository implements risk.Repository using GORM
type RiskRepository struct {
	db *gorm.DB
}

func NewRiskRepository(db *gorm.DB) *RiskRepository {
	return &RiskRepository{db: db}
}

func (r *RiskRepository) GetByID(id string) (*risk.Risk, error) {
	var row risk.Risk
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, risk.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *RiskRepository) ListByOrganization(orgID string) ([]*risk.Risk, error) {
	var rows []*risk.Risk
	err := r.db.
		Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListActiveByOrganization returns the open and monitoring risks, the set
// the suggestion analysis matches incidents against.
func (r *RiskRepository) ListActiveByOrganization(orgID string) ([]*risk.Risk, error) {
	var rows []*risk.Risk
	err := r.db.
		Where("organization_id = ? AND status IN ?", orgID, risk.ActiveStatuses).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *RiskRepository) Create(row *risk.Risk) error {
	return r.db.Create(row).Error
}

func (r *RiskRepository) Update(row *risk.Risk) error {
	return r.db.Save(row).Error
}

func (r *RiskRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&risk.Risk{}).Error
}
