package risk

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/authz"
	"github.com/minrisk/risk-management/internal/profile"
)

// Repository defines the data access methods for risks
type Repository interface {
	GetByID(id string) (*Risk, error)
	ListByOrganization(orgID string) ([]*Risk, error)
	ListActiveByOrganization(orgID string) ([]*Risk, error)
	Create(r *Risk) error
	Update(r *Risk) error
	Delete(id string) error
}

// Service handles risk register business logic. Every operation is gated to
// the caller's organization; super admins may touch any organization.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// callerOrg resolves the organization an org-scoped call runs against.
// Super admins must name an organization explicitly; everyone else is pinned
// to their own.
func callerOrg(caller *profile.Profile, requested string) (string, error) {
	if requested == "" {
		if caller.OrganizationID == nil {
			return "", internal.NewValidationError("organization_id is required", internal.ErrCodeValidationFailed)
		}
		requested = *caller.OrganizationID
	}
	if err := authz.CanAccessOrganization(caller, requested); err != nil {
		return "", err
	}
	return requested, nil
}

func (s *Service) List(caller *profile.Profile, orgID string) ([]*Risk, error) {
	org, err := callerOrg(caller, orgID)
	if err != nil {
		return nil, err
	}
	risks, err := s.repo.ListByOrganization(org)
	if err != nil {
		return nil, internal.NewInternalError("failed to list risks", err)
	}
	return risks, nil
}

func (s *Service) Get(caller *profile.Profile, id string) (*Risk, error) {
	r, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("risk not found", internal.ErrCodeRiskNotFound)
		}
		return nil, internal.NewInternalError("failed to load risk", err)
	}
	if err := authz.CanAccessOrganization(caller, r.OrganizationID); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Create(caller *profile.Profile, orgID string, dto CreateRiskDTO) (*Risk, error) {
	org, err := callerOrg(caller, orgID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	r := &Risk{
		ID:             uuid.NewString(),
		OrganizationID: org,
		Title:          dto.Title,
		Description:    dto.Description,
		Category:       dto.Category,
		Status:         StatusOpen,
		Severity:       dto.Severity,
		OwnerID:        dto.OwnerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(r); err != nil {
		s.logger.Error("risk create failed", "error", err, "organization_id", org)
		return nil, internal.NewInternalError("failed to create risk", err)
	}

	s.logger.Info("risk created", "risk_id", r.ID, "organization_id", org, "actor_id", caller.ID)
	return r, nil
}

func (s *Service) Update(caller *profile.Profile, id string, dto UpdateRiskDTO) (*Risk, error) {
	r, err := s.Get(caller, id)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		r.Title = *dto.Title
	}
	if dto.Description != nil {
		r.Description = *dto.Description
	}
	if dto.Category != nil {
		r.Category = *dto.Category
	}
	if dto.Status != nil {
		r.Status = *dto.Status
	}
	if dto.Severity != nil {
		r.Severity = *dto.Severity
	}
	if dto.OwnerID != nil {
		r.OwnerID = dto.OwnerID
	}
	r.UpdatedAt = time.Now()

	if err := s.repo.Update(r); err != nil {
		s.logger.Error("risk update failed", "error", err, "risk_id", id)
		return nil, internal.NewInternalError("failed to update risk", err)
	}
	return r, nil
}

func (s *Service) Delete(caller *profile.Profile, id string) error {
	if _, err := s.Get(caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("risk delete failed", "error", err, "risk_id", id)
		return internal.NewInternalError("failed to delete risk", err)
	}
	s.logger.Info("risk deleted", "risk_id", id, "actor_id", caller.ID)
	return nil
}
