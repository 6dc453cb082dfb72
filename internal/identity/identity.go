package identity

import (
	"context"
	"errors"
	"time"
)

// User is an account held by the external identity provider. Profiles
// reference users by this ID.
type User struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	EmailConfirmed bool           `json:"email_confirmed"`
	UserMetadata   map[string]any `json:"user_metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// AdminAPI is the subset of the identity provider's admin surface the
// invitation workflow depends on.
type AdminAPI interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, email string, metadata map[string]any) (*User, error)
	DeleteUser(ctx context.Context, userID string) error
	GenerateMagicLink(ctx context.Context, email, redirectTo string) (string, error)
}

// Claims are the verified contents of a bearer credential.
type Claims struct {
	UserID string
	Email  string
}

// TokenVerifier validates bearer credentials issued by the identity provider.
type TokenVerifier interface {
	Verify(tokenString string) (*Claims, error)
}

var (
	ErrUserNotFound = errors.New("identity user not found")
)
