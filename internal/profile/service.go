package profile

import (
	"context"
	"log/slog"
	"time"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/core/events"
)

// Repository defines the data access methods for profiles
type Repository interface {
	GetByID(id string) (*Profile, error)
	GetByEmail(email string) (*Profile, error)
	GetByIDsInOrganization(ids []string, orgID string) ([]*Profile, error)
	ListPending(orgID *string) ([]*Profile, error)
	CreateOrReconcile(p *Profile) error
	ChangeStatus(id string, status Status, actorID string) error
}

// EventPublisher receives domain events for best-effort audit logging.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service handles profile business logic
type Service struct {
	repo   Repository
	bus    EventPublisher
	logger *slog.Logger
}

func NewService(repo Repository, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) GetByID(id string) (*Profile, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("profile not found", internal.ErrCodeProfileNotFound).WithCause(err)
	}
	return p, nil
}

// Enrich resolves profile IDs to {id, full_name, email} views. Lookups are
// confined to the caller's organization; IDs outside it, or unknown IDs, are
// silently omitted. This is the privileged bypass for row-level-security
// blocked cross-user reads, so the organization check is the security
// boundary here.
func (s *Service) Enrich(caller *Profile, profileIDs []string) (map[string]EnrichedProfile, error) {
	result := make(map[string]EnrichedProfile)

	// Regulators and other org-less callers get nothing, not an error.
	if caller.OrganizationID == nil {
		return result, nil
	}

	profiles, err := s.repo.GetByIDsInOrganization(profileIDs, *caller.OrganizationID)
	if err != nil {
		s.logger.Error("enrichment lookup failed", "error", err, "caller_id", caller.ID)
		return nil, internal.NewInternalError("failed to enrich profiles", err)
	}

	for _, p := range profiles {
		result[p.ID] = EnrichedProfile{
			ID:       p.ID,
			FullName: p.FullName,
			Email:    p.Email,
		}
	}

	s.logger.Info("profiles enriched",
		"caller_id", caller.ID,
		"requested", len(profileIDs),
		"resolved", len(result))

	return result, nil
}

// ListPending returns profiles awaiting an approval decision. Super admins
// see every organization, primary admins only their own.
func (s *Service) ListPending(caller *Profile) ([]*Profile, error) {
	if err := CanManageProfiles(caller, caller.OrganizationID); err != nil {
		s.logger.Warn("list pending denied", "caller_id", caller.ID, "role", caller.Role)
		return nil, err
	}

	var orgScope *string
	if caller.Role != RoleSuperAdmin {
		orgScope = caller.OrganizationID
	}

	pending, err := s.repo.ListPending(orgScope)
	if err != nil {
		s.logger.Error("failed to list pending profiles", "error", err)
		return nil, internal.NewInternalError("failed to list pending profiles", err)
	}
	return pending, nil
}

// Approve moves a pending profile to approved through the sanctioned status
// transition procedure.
func (s *Service) Approve(ctx context.Context, caller *Profile, targetID string) (*Profile, error) {
	return s.decide(ctx, caller, targetID, StatusApproved, "")
}

// Reject moves a pending profile to rejected.
func (s *Service) Reject(ctx context.Context, caller *Profile, targetID, reason string) (*Profile, error) {
	return s.decide(ctx, caller, targetID, StatusRejected, reason)
}

func (s *Service) decide(ctx context.Context, caller *Profile, targetID string, decision Status, reason string) (*Profile, error) {
	target, err := s.repo.GetByID(targetID)
	if err != nil {
		return nil, internal.NewNotFoundError("profile not found", internal.ErrCodeProfileNotFound).WithCause(err)
	}

	if err := CanManageProfiles(caller, target.OrganizationID); err != nil {
		s.logger.Warn("profile decision denied",
			"caller_id", caller.ID,
			"caller_role", caller.Role,
			"target_id", targetID)
		return nil, err
	}

	if target.Status != StatusPending && target.Status != StatusPendingInvite {
		s.logger.Warn("cannot decide profile in current status",
			"target_id", targetID,
			"current_status", target.Status)
		return nil, internal.NewValidationError("profile is not awaiting a decision", internal.ErrCodeInvalidStatus)
	}

	if err := s.repo.ChangeStatus(targetID, decision, caller.ID); err != nil {
		s.logger.Error("status transition failed", "error", err, "target_id", targetID, "decision", decision)
		return nil, internal.NewInternalError("failed to change profile status", err)
	}

	s.logger.Info("profile status changed",
		"target_id", targetID,
		"decision", decision,
		"actor_id", caller.ID)

	s.publishDecision(ctx, caller, target, decision, reason)

	updated, err := s.repo.GetByID(targetID)
	if err != nil {
		// Transition already landed; return the stale row rather than failing.
		target.Status = decision
		return target, nil
	}
	return updated, nil
}

func (s *Service) publishDecision(ctx context.Context, caller, target *Profile, decision Status, reason string) {
	if s.bus == nil {
		return
	}

	data := map[string]interface{}{
		"actor_id":  caller.ID,
		"target_id": target.ID,
		"email":     target.Email,
		"decision":  string(decision),
	}
	if reason != "" {
		data["reason"] = reason
	}

	event := events.NewBaseEvent("profile.status_changed", data)
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish profile decision event", "error", err)
	}
}

// CreateOrReconcile inserts the profile or, when a row for the identity ID
// already exists, updates it in place. The update branch is a hard
// invariant: inserting over an existing row would be a duplicate-key failure.
func (s *Service) CreateOrReconcile(p *Profile) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if err := s.repo.CreateOrReconcile(p); err != nil {
		s.logger.Error("profile reconciliation failed", "error", err, "profile_id", p.ID)
		return internal.NewInternalError("failed to reconcile profile", err)
	}
	return nil
}
