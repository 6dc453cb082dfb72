package identity

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minrisk/risk-management/internal"
)

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 tokens signed with the identity provider's
// shared secret. The provider owns issuance; this side only verifies.
type JWTVerifier struct {
	Secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{Secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, internal.ErrInvalidToken
	}

	return &Claims{
		UserID: claims.Subject,
		Email:  claims.Email,
	}, nil
}
