package identity

import (
	"log/slog"
	"net/http"

	"github.com/minrisk/risk-management/internal/profile"
	"github.com/minrisk/risk-management/internal/transport"
)

// ProfileStore resolves the caller's profile once the token is verified.
type ProfileStore interface {
	GetByID(id string) (*profile.Profile, error)
}

// Authenticator verifies bearer credentials and loads the caller's profile
// into the request context. Handlers behind it can assume an approved caller.
type Authenticator struct {
	*transport.BaseHandler
	verifier TokenVerifier
	profiles ProfileStore
}

func NewAuthenticator(verifier TokenVerifier, profiles ProfileStore, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		BaseHandler: transport.NewBaseHandler(logger),
		verifier:    verifier,
		profiles:    profiles,
	}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.ExtractTokenFromHeader(r)
		if token == "" {
			a.Logger.Warn("auth middleware: missing authorization token", "path", r.URL.Path)
			a.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := a.verifier.Verify(token)
		if err != nil {
			a.Logger.Warn("auth middleware: token validation failed", "error", err)
			a.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		caller, err := a.profiles.GetByID(claims.UserID)
		if err != nil {
			a.Logger.Warn("auth middleware: no profile for token subject", "user_id", claims.UserID, "error", err)
			a.WriteError(w, http.StatusUnauthorized, "profile not found")
			return
		}

		if !caller.IsApproved() {
			a.Logger.Warn("auth middleware: profile not approved", "user_id", caller.ID, "status", caller.Status)
			a.WriteError(w, http.StatusForbidden, "user profile is not approved")
			return
		}

		ctx := profile.NewContext(r.Context(), caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
