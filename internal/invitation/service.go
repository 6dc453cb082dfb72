package invitation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/authz"
	"github.com/minrisk/risk-management/internal/core/events"
	"github.com/minrisk/risk-management/internal/identity"
	"github.com/minrisk/risk-management/internal/organization"
	"github.com/minrisk/risk-management/internal/profile"
	"github.com/minrisk/risk-management/internal/regulator"
)

// Repository defines the data access methods for invitations
type Repository interface {
	Create(inv *Invitation) error
	GetByID(id string) (*Invitation, error)
	ListByOrganization(orgID string) ([]*Invitation, error)
	MarkAccepted(id string, at time.Time) error
	ExpirePending(cutoff time.Time) (int64, error)
}

// ProfileStore is the slice of profile storage the invitation workflow needs.
type ProfileStore interface {
	GetByEmail(email string) (*profile.Profile, error)
	CreateOrReconcile(p *profile.Profile) error
	ChangeStatus(id string, status profile.Status, actorID string) error
}

// OrganizationStore resolves organizations referenced by invites.
type OrganizationStore interface {
	GetByID(id string) (*organization.Organization, error)
}

// RegulatorStore validates regulator IDs and records access grants.
type RegulatorStore interface {
	GetByIDs(ids []string) ([]*regulator.Regulator, error)
	GrantAccess(userID string, regulatorIDs []string, grantedBy string) error
}

// EventPublisher receives domain events for best-effort audit logging.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service orchestrates the invitation workflow: authorization, conflict
// checks, identity account creation, profile reconciliation, and the
// best-effort tail (invitation record, magic link, events).
type Service struct {
	repo       Repository
	profiles   ProfileStore
	orgs       OrganizationStore
	regulators RegulatorStore
	identity   identity.AdminAPI
	bus        EventPublisher
	appBaseURL string
	bcryptCost int
	logger     *slog.Logger
}

func NewService(
	repo Repository,
	profiles ProfileStore,
	orgs OrganizationStore,
	regulators RegulatorStore,
	identityAPI identity.AdminAPI,
	bus EventPublisher,
	appBaseURL string,
	bcryptCost int,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		profiles:   profiles,
		orgs:       orgs,
		regulators: regulators,
		identity:   identityAPI,
		bus:        bus,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// InviteUser provisions a member (user or secondary_admin) inside an
// organization. Authorization and validation happen before any side effect;
// the identity account and the approved profile are the primary effects, and
// everything after them degrades to a warning instead of failing the call.
func (s *Service) InviteUser(ctx context.Context, caller *profile.Profile, dto InviteUserDTO) (*InviteResult, error) {
	if err := authz.CanInvite(caller, dto.Role, &dto.OrganizationID); err != nil {
		s.logger.Warn("invite denied",
			"caller_id", caller.ID,
			"caller_role", caller.Role,
			"target_role", dto.Role)
		return nil, err
	}

	if _, err := s.orgs.GetByID(dto.OrganizationID); err != nil {
		if errors.Is(err, organization.ErrNotFound) {
			return nil, internal.NewNotFoundError("organization not found", internal.ErrCodeOrganizationNotFound)
		}
		return nil, internal.NewInternalError("failed to resolve organization", err)
	}

	orgID := dto.OrganizationID
	return s.provision(ctx, caller, provisionRequest{
		Email:          dto.Email,
		FullName:       dto.FullName,
		Role:           dto.Role,
		OrganizationID: &orgID,
		Notes:          dto.Notes,
	})
}

// InvitePrimaryAdmin provisions the primary admin for an organization. Only
// super admins pass the authorization matrix for this role.
func (s *Service) InvitePrimaryAdmin(ctx context.Context, caller *profile.Profile, dto InvitePrimaryAdminDTO) (*InviteResult, error) {
	if err := authz.CanInvite(caller, profile.RolePrimaryAdmin, &dto.OrganizationID); err != nil {
		s.logger.Warn("primary admin invite denied", "caller_id", caller.ID, "caller_role", caller.Role)
		return nil, err
	}

	if _, err := s.orgs.GetByID(dto.OrganizationID); err != nil {
		if errors.Is(err, organization.ErrNotFound) {
			return nil, internal.NewNotFoundError("organization not found", internal.ErrCodeOrganizationNotFound)
		}
		return nil, internal.NewInternalError("failed to resolve organization", err)
	}

	orgID := dto.OrganizationID
	return s.provision(ctx, caller, provisionRequest{
		Email:          dto.Email,
		FullName:       dto.FullName,
		Role:           profile.RolePrimaryAdmin,
		OrganizationID: &orgID,
		Notes:          dto.Notes,
	})
}

// InviteRegulator provisions a regulator account. Every referenced regulator
// ID is validated before any account or access row is created; access grants
// are written only after the profile landed.
func (s *Service) InviteRegulator(ctx context.Context, caller *profile.Profile, dto InviteRegulatorDTO) (*InviteResult, error) {
	if err := authz.CanInvite(caller, profile.RoleRegulator, nil); err != nil {
		s.logger.Warn("regulator invite denied", "caller_id", caller.ID, "caller_role", caller.Role)
		return nil, err
	}

	found, err := s.regulators.GetByIDs(dto.RegulatorIDs)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve regulators", err)
	}
	if len(found) != len(dto.RegulatorIDs) {
		missing := missingIDs(dto.RegulatorIDs, found)
		s.logger.Warn("regulator invite references unknown regulators", "missing", missing)
		return nil, internal.NewNotFoundError("one or more regulators do not exist", internal.ErrCodeRegulatorNotFound).
			WithDetails(map[string]any{"missing_regulator_ids": missing})
	}

	result, err := s.provision(ctx, caller, provisionRequest{
		Email:    dto.Email,
		FullName: dto.FullName,
		Role:     profile.RoleRegulator,
		Notes:    dto.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.regulators.GrantAccess(result.UserID, dto.RegulatorIDs, caller.ID); err != nil {
		// The account exists and is approved; without access rows it is
		// useless, so surface the failure rather than a warning.
		s.logger.Error("regulator access grant failed",
			"user_id", result.UserID,
			"regulator_ids", dto.RegulatorIDs,
			"error", err)
		return nil, internal.NewInternalError("failed to grant regulator access", err)
	}

	s.publish(ctx, "regulator.access_granted", map[string]interface{}{
		"actor_id":      caller.ID,
		"user_id":       result.UserID,
		"regulator_ids": dto.RegulatorIDs,
	})

	return result, nil
}

type provisionRequest struct {
	Email          string
	FullName       string
	Role           profile.Role
	OrganizationID *string
	Notes          string
}

func (s *Service) provision(ctx context.Context, caller *profile.Profile, req provisionRequest) (*InviteResult, error) {
	if existing, err := s.profiles.GetByEmail(req.Email); err == nil && existing != nil {
		s.logger.Warn("invite conflicts with existing profile", "email", req.Email)
		return nil, internal.NewConflictError("email is already registered", internal.ErrCodeEmailAlreadyRegistered)
	}

	existingUser, err := s.identity.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, identity.ErrUserNotFound) {
		// Client already wraps transport failures as upstream errors.
		return nil, err
	}
	if existingUser != nil {
		s.logger.Warn("invite conflicts with existing identity account", "email", req.Email)
		return nil, internal.NewConflictError("email is already registered", internal.ErrCodeEmailAlreadyRegistered)
	}

	metadata := map[string]any{
		"full_name":  req.FullName,
		"role":       string(req.Role),
		"invited_by": caller.ID,
	}
	if req.OrganizationID != nil {
		metadata["organization_id"] = *req.OrganizationID
	}

	user, err := s.identity.CreateUser(ctx, req.Email, metadata)
	if err != nil {
		return nil, err
	}

	s.logger.Info("identity account created",
		"user_id", user.ID,
		"email", req.Email,
		"role", req.Role,
		"actor_id", caller.ID)

	if err := s.reconcileApproved(user.ID, caller.ID, req); err != nil {
		// The identity account must not outlive a failed profile; roll it
		// back best-effort so the email can be invited again.
		if delErr := s.identity.DeleteUser(ctx, user.ID); delErr != nil {
			s.logger.Error("identity rollback failed, account orphaned",
				"user_id", user.ID,
				"email", req.Email,
				"error", delErr)
		} else {
			s.logger.Info("identity account rolled back", "user_id", user.ID, "email", req.Email)
		}
		return nil, internal.NewInternalError("failed to provision user profile", err)
	}

	result := &InviteResult{
		UserID:         user.ID,
		Email:          req.Email,
		Role:           req.Role,
		Status:         profile.StatusApproved,
		OrganizationID: req.OrganizationID,
	}

	var warnings []string

	inv, token, err := s.recordInvitation(caller, req)
	if err != nil {
		s.logger.Warn("invitation record failed", "email", req.Email, "error", err)
		warnings = append(warnings, "invitation record could not be stored")
	} else {
		result.InvitationID = inv.ID
		s.publish(ctx, "invitation.created", map[string]interface{}{
			"invitation_id": inv.ID,
			"actor_id":      caller.ID,
			"email":         req.Email,
			"role":          string(req.Role),
		})
	}

	link, err := s.identity.GenerateMagicLink(ctx, req.Email, s.acceptURL(token))
	if err != nil {
		s.logger.Warn("magic link generation failed", "email", req.Email, "error", err)
		warnings = append(warnings, "magic link could not be generated; user must sign in manually")
	} else {
		result.MagicLink = link
	}

	if len(warnings) > 0 {
		result.Warning = strings.Join(warnings, "; ")
	}

	return result, nil
}

// reconcileApproved lands the profile row and runs it through the sanctioned
// status transition so approved_by and approved_at are attributed to the
// inviting admin.
func (s *Service) reconcileApproved(userID, actorID string, req provisionRequest) error {
	now := time.Now()
	p := &profile.Profile{
		ID:             userID,
		OrganizationID: req.OrganizationID,
		Role:           req.Role,
		Status:         profile.StatusPendingInvite,
		Email:          req.Email,
		FullName:       req.FullName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.profiles.CreateOrReconcile(p); err != nil {
		return err
	}
	return s.profiles.ChangeStatus(userID, profile.StatusApproved, actorID)
}

func (s *Service) recordInvitation(caller *profile.Profile, req provisionRequest) (*Invitation, string, error) {
	id := uuid.NewString()
	token, codeHash, err := NewToken(id, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	inv := &Invitation{
		ID:             id,
		Email:          req.Email,
		OrganizationID: req.OrganizationID,
		Role:           req.Role,
		Status:         StatusPending,
		CreatedBy:      caller.ID,
		ExpiresAt:      now.Add(DefaultTTL),
		Notes:          req.Notes,
		InviteCode:     codeHash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(inv); err != nil {
		return nil, "", err
	}
	return inv, token, nil
}

func (s *Service) acceptURL(token string) string {
	if token == "" {
		return s.appBaseURL
	}
	return s.appBaseURL + "/invitations/accept?token=" + token
}

// Accept marks an invitation accepted after verifying the token against the
// stored invite code. Expired invitations are refused and flipped to expired
// so the sweep does not have to catch them.
func (s *Service) Accept(ctx context.Context, dto AcceptDTO) (*Invitation, error) {
	invID, secret, err := ParseToken(dto.Token)
	if err != nil {
		return nil, internal.NewValidationError("invitation token is malformed", internal.ErrCodeInvalidToken)
	}

	inv, err := s.repo.GetByID(invID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("invitation not found", internal.ErrCodeInvitationNotFound)
		}
		return nil, internal.NewInternalError("failed to load invitation", err)
	}

	if !inv.VerifyToken(secret) {
		s.logger.Warn("invitation token mismatch", "invitation_id", invID)
		return nil, internal.NewUnauthorizedError("invitation token is invalid", internal.ErrCodeInvalidToken)
	}

	if inv.Status == StatusAccepted {
		// Accepting twice is harmless; return the row as-is.
		return inv, nil
	}

	if !inv.IsAcceptable() {
		if inv.IsExpired() && inv.Status == StatusPending {
			if _, err := s.repo.ExpirePending(time.Now()); err != nil {
				s.logger.Warn("failed to expire stale invitations", "error", err)
			}
		}
		return nil, internal.NewConflictError("invitation has expired", internal.ErrCodeInvitationExpired)
	}

	now := time.Now()
	if err := s.repo.MarkAccepted(inv.ID, now); err != nil {
		return nil, internal.NewInternalError("failed to accept invitation", err)
	}
	inv.Status = StatusAccepted
	inv.AcceptedAt = &now

	s.publish(ctx, "invitation.accepted", map[string]interface{}{
		"invitation_id": inv.ID,
		"email":         inv.Email,
	})

	return inv, nil
}

// List returns invitations for an organization the caller administers.
func (s *Service) List(caller *profile.Profile, orgID string) ([]*Invitation, error) {
	if err := authz.CanManageProfiles(caller, &orgID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByOrganization(orgID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list invitations", err)
	}
	return rows, nil
}

// SweepExpired flips pending invitations past their deadline to expired.
// Run from the sweep command, not the request path.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpirePending(time.Now())
	if err != nil {
		return 0, internal.NewInternalError("failed to expire invitations", err)
	}
	if n > 0 {
		s.logger.Info("expired stale invitations", "count", n)
	}
	return n, nil
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.bus == nil {
		return
	}
	event := events.NewBaseEvent(eventType, data)
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", eventType, "error", err)
	}
}

func missingIDs(requested []string, found []*regulator.Regulator) []string {
	present := make(map[string]struct{}, len(found))
	for _, r := range found {
		present[r.ID] = struct{}{}
	}
	var missing []string
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
