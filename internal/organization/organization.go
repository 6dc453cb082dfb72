package organization

import (
	"errors"
	"time"
)

// Organization is read-only from the invitation workflow's perspective;
// only super admins create them.
type Organization struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	LogoURL   *string   `json:"logo_url,omitempty" gorm:"column:logo_url"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Organization) TableName() string {
	return "organizations"
}

// CreateOrganizationDTO is the request payload for creating an organization
type CreateOrganizationDTO struct {
	Name    string  `json:"name"`
	LogoURL *string `json:"logo_url,omitempty"`
}

func (dto CreateOrganizationDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 200 {
		return errors.New("name must be less than 200 characters")
	}
	return nil
}

var ErrNotFound = errors.New("organization not found")
