package identity_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/minrisk/risk-management/internal"
	"github.com/minrisk/risk-management/internal/identity"
)

func TestIdentity(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Identity Suite")
}

var _ = Describe("JWTVerifier", func() {
	secret := "test-secret-at-least-32-characters-long"

	var verifier *identity.JWTVerifier

	sign := func(secret string, claims jwt.MapClaims) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(secret))
		Expect(err).ToNot(HaveOccurred())
		return signed
	}

	BeforeEach(func() {
		verifier = identity.NewJWTVerifier(secret)
	})

	It("returns the subject and email of a valid token", func() {
		tokenString := sign(secret, jwt.MapClaims{
			"sub":   "user-123",
			"email": "user@x.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})

		claims, err := verifier.Verify(tokenString)

		Expect(err).ToNot(HaveOccurred())
		Expect(claims.UserID).To(Equal("user-123"))
		Expect(claims.Email).To(Equal("user@x.com"))
	})

	It("reports expired tokens distinctly", func() {
		tokenString := sign(secret, jwt.MapClaims{
			"sub": "user-123",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		_, err := verifier.Verify(tokenString)

		Expect(err).To(MatchError(internal.ErrTokenExpired))
	})

	It("rejects tokens signed with a different secret", func() {
		tokenString := sign("another-secret-that-is-also-32-chars!", jwt.MapClaims{
			"sub": "user-123",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := verifier.Verify(tokenString)

		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("rejects tokens without a subject", func() {
		tokenString := sign(secret, jwt.MapClaims{
			"email": "user@x.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})

		_, err := verifier.Verify(tokenString)

		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("rejects garbage", func() {
		_, err := verifier.Verify("not.a.token")

		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})
})
