package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/minrisk/risk-management/internal/organization"
)

// OrganizationRepository implements organization.Repository using GORM
type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) GetByID(id string) (*organization.Organization, error) {
	var org organization.Organization
	err := r.db.Where("id = ?", id).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, organization.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) List() ([]*organization.Organization, error) {
	var orgs []*organization.Organization
	err := r.db.Order("name ASC").Find(&orgs).Error
	return orgs, err
}

func (r *OrganizationRepository) Create(org *organization.Organization) error {
	return r.db.Create(org).Error
}
