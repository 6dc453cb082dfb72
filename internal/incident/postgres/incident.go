package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/minrisk/risk-management/internal/incident"
)

// IncidentRepository implements incident.Repository using GORM
type IncidentRepository struct {
	db *gorm.DB
}

func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

func (r *IncidentRepository) GetByID(id string) (*incident.Incident, error) {
	var row incident.Incident
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, incident.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *IncidentRepository) ListByOrganization(orgID string) ([]*incident.Incident, error) {
	var rows []*incident.Incident
	err := r.db.
		Where("organization_id = ?", orgID).
		Order("occurred_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *IncidentRepository) Create(row *incident.Incident) error {
	return r.db.Create(row).Error
}

func (r *IncidentRepository) Update(row *incident.Incident) error {
	return r.db.Save(row).Error
}

func (r *IncidentRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&incident.Incident{}).Error
}
