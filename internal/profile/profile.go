package profile

import (
	"context"
	"errors"
	"time"
)

// Role determines which invitation and administration operations a profile
// may perform. Regulators have no organization of their own.
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RolePrimaryAdmin   Role = "primary_admin"
	RoleSecondaryAdmin Role = "secondary_admin"
	RoleUser           Role = "user"
	RoleRegulator      Role = "regulator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RolePrimaryAdmin, RoleSecondaryAdmin, RoleUser, RoleRegulator:
		return true
	}
	return false
}

// Status is the lifecycle state of a profile. Transitions happen through the
// change_user_status stored procedure, never through raw column updates.
type Status string

const (
	StatusPending       Status = "pending"
	StatusPendingInvite Status = "pending_invite"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPendingInvite, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Profile is a user profile row. Profiles are soft state: they are created
// pending, approved or rejected by an admin, and never hard-deleted.
type Profile struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	OrganizationID *string    `json:"organization_id,omitempty" gorm:"column:organization_id"`
	Role           Role       `json:"role" gorm:"column:role;not null"`
	Status         Status     `json:"status" gorm:"column:status;default:pending"`
	Email          string     `json:"email" gorm:"column:email;not null"`
	FullName       string     `json:"full_name" gorm:"column:full_name"`
	ApprovedBy     *string    `json:"approved_by,omitempty" gorm:"column:approved_by"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty" gorm:"column:approved_at"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Profile) TableName() string {
	return "user_profiles"
}

func (p *Profile) IsApproved() bool {
	return p.Status == StatusApproved
}

// SameOrganization reports whether the profile belongs to the given
// organization. Profiles without an organization (regulators) never match.
func (p *Profile) SameOrganization(orgID *string) bool {
	if p.OrganizationID == nil || orgID == nil {
		return false
	}
	return *p.OrganizationID == *orgID
}

// EnrichedProfile is the reduced view returned by the enrichment endpoint.
type EnrichedProfile struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

var (
	ErrNotFound = errors.New("profile not found")
)

type profileCtxKey string

const contextProfileKey profileCtxKey = "callerProfile"

// NewContext stores the authenticated caller's profile in the context.
func NewContext(ctx context.Context, p *Profile) context.Context {
	return context.WithValue(ctx, contextProfileKey, p)
}

// FromContext returns the caller profile placed by the auth middleware.
func FromContext(ctx context.Context) (*Profile, bool) {
	p, ok := ctx.Value(contextProfileKey).(*Profile)
	return p, ok
}
