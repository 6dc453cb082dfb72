package invitation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/minrisk/risk-management/internal/profile"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
)

// DefaultTTL is how long an invitation stays acceptable.
const DefaultTTL = 7 * 24 * time.Hour

// Invitation tracks an issued invite. At most one active (pending,
// non-expired) invitation per email within an organization is intended;
// enforced by convention, not a uniqueness constraint.
type Invitation struct {
	ID             string       `json:"id" gorm:"primaryKey"`
	Email          string       `json:"email" gorm:"column:email;not null"`
	OrganizationID *string      `json:"organization_id,omitempty" gorm:"column:organization_id"`
	Role           profile.Role `json:"role" gorm:"column:role;not null"`
	Status         Status       `json:"status" gorm:"column:status;default:pending"`
	CreatedBy      string       `json:"created_by" gorm:"column:created_by;not null"`
	ExpiresAt      time.Time    `json:"expires_at" gorm:"column:expires_at;not null"`
	AcceptedAt     *time.Time   `json:"accepted_at,omitempty" gorm:"column:accepted_at"`
	Notes          string       `json:"notes,omitempty" gorm:"column:notes"`
	InviteCode     string       `json:"-" gorm:"column:invite_code"`
	CreatedAt      time.Time    `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time    `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Invitation) TableName() string {
	return "invitations"
}

func (i *Invitation) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

func (i *Invitation) IsAcceptable() bool {
	return i.Status == StatusPending && !i.IsExpired()
}

// NewToken mints an opaque acceptance token and the bcrypt hash stored as
// the invite code. The token embeds the invitation ID so acceptance can look
// the row up without a hash index.
func NewToken(invitationID string, cost int) (token string, codeHash string, err error) {
	secret := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", "", err
	}
	return invitationID + "." + secret, string(hash), nil
}

// ParseToken splits an acceptance token into invitation ID and secret.
func ParseToken(token string) (invitationID, secret string, err error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed invitation token")
	}
	return parts[0], parts[1], nil
}

// VerifyToken compares the token secret against the stored invite code.
func (i *Invitation) VerifyToken(secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(i.InviteCode), []byte(secret)) == nil
}

var (
	ErrNotFound = errors.New("invitation not found")
)
