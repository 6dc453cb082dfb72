package incident

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/authz"
	"github.com/minrisk/risk-management/internal/profile"
)

// Repository defines the data access methods for incidents
type Repository interface {
	GetByID(id string) (*Incident, error)
	ListByOrganization(orgID string) ([]*Incident, error)
	Create(i *Incident) error
	Update(i *Incident) error
	Delete(id string) error
}

// Service handles incident business logic with the same organization gating
// as the risk register.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(caller *profile.Profile, orgID string) ([]*Incident, error) {
	if orgID == "" {
		if caller.OrganizationID == nil {
			return nil, internal.NewValidationError("organization_id is required", internal.ErrCodeValidationFailed)
		}
		orgID = *caller.OrganizationID
	}
	if err := authz.CanAccessOrganization(caller, orgID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByOrganization(orgID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list incidents", err)
	}
	return rows, nil
}

func (s *Service) Get(caller *profile.Profile, id string) (*Incident, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("incident not found", internal.ErrCodeIncidentNotFound)
		}
		return nil, internal.NewInternalError("failed to load incident", err)
	}
	if err := authz.CanAccessOrganization(caller, row.OrganizationID); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service) Create(caller *profile.Profile, orgID string, dto CreateIncidentDTO) (*Incident, error) {
	if orgID == "" {
		if caller.OrganizationID == nil {
			return nil, internal.NewValidationError("organization_id is required", internal.ErrCodeValidationFailed)
		}
		orgID = *caller.OrganizationID
	}
	if err := authz.CanAccessOrganization(caller, orgID); err != nil {
		return nil, err
	}

	now := time.Now()
	occurred := now
	if dto.OccurredAt != nil {
		occurred = *dto.OccurredAt
	}

	row := &Incident{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Title:          dto.Title,
		Description:    dto.Description,
		Severity:       dto.Severity,
		Status:         StatusOpen,
		OccurredAt:     occurred,
		ReportedBy:     caller.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("incident create failed", "error", err, "organization_id", orgID)
		return nil, internal.NewInternalError("failed to create incident", err)
	}

	s.logger.Info("incident created", "incident_id", row.ID, "organization_id", orgID, "actor_id", caller.ID)
	return row, nil
}

func (s *Service) Update(caller *profile.Profile, id string, dto UpdateIncidentDTO) (*Incident, error) {
	row, err := s.Get(caller, id)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		row.Title = *dto.Title
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.Severity != nil {
		row.Severity = *dto.Severity
	}
	if dto.Status != nil {
		row.Status = *dto.Status
	}
	if dto.OccurredAt != nil {
		row.OccurredAt = *dto.OccurredAt
	}
	row.UpdatedAt = time.Now()

	if err := s.repo.Update(row); err != nil {
		s.logger.Error("incident update failed", "error", err, "incident_id", id)
		return nil, internal.NewInternalError("failed to update incident", err)
	}
	return row, nil
}

func (s *Service) Delete(caller *profile.Profile, id string) error {
	if _, err := s.Get(caller, id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("incident delete failed", "error", err, "incident_id", id)
		return internal.NewInternalError("failed to delete incident", err)
	}
	s.logger.Info("incident deleted", "incident_id", id, "actor_id", caller.ID)
	return nil
}
