package organization

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/profile"
)

type Repository interface {
	GetByID(id string) (*Organization, error)
	List() ([]*Organization, error)
	Create(org *Organization) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByID(caller *profile.Profile, id string) (*Organization, error) {
	if caller.Role != profile.RoleSuperAdmin && caller.Role != profile.RoleRegulator {
		if !caller.SameOrganization(&id) {
			return nil, internal.ErrOrganizationScope
		}
	}

	org, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("organization not found", internal.ErrCodeOrganizationNotFound).WithCause(err)
	}
	return org, nil
}

// List returns every organization. Super admins and regulators only.
func (s *Service) List(caller *profile.Profile) ([]*Organization, error) {
	if caller.Role != profile.RoleSuperAdmin && caller.Role != profile.RoleRegulator {
		s.logger.Warn("organization list denied", "caller_id", caller.ID, "role", caller.Role)
		return nil, internal.ErrRoleNotAllowed
	}

	orgs, err := s.repo.List()
	if err != nil {
		return nil, internal.NewInternalError("failed to list organizations", err)
	}
	return orgs, nil
}

func (s *Service) Create(caller *profile.Profile, dto CreateOrganizationDTO) (*Organization, error) {
	if caller.Role != profile.RoleSuperAdmin {
		s.logger.Warn("organization create denied", "caller_id", caller.ID, "role", caller.Role)
		return nil, internal.ErrRoleNotAllowed
	}

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	org := &Organization{
		ID:        uuid.NewString(),
		Name:      dto.Name,
		LogoURL:   dto.LogoURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.repo.Create(org); err != nil {
		s.logger.Error("failed to create organization", "error", err, "name", dto.Name)
		return nil, internal.NewInternalError("failed to create organization", err)
	}

	s.logger.Info("organization created", "organization_id", org.ID, "name", org.Name, "created_by", caller.ID)
	return org, nil
}
