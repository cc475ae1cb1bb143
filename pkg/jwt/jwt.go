package jwt

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

// Claims carried by tokens issued by the external auth service. Actor is the
// identity threaded into every mutating command for the audit trail.
type Claims struct {
	Actor      string   `json:"actor"`
	Privileges []string `json:"privileges"`
	jwt.RegisteredClaims
}

// GetSecretKey returns the JWT secret from environment or a default
func GetSecretKey() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "change-me-in-production"
	}
	return []byte(secret)
}

// GenerateToken signs a token for the given actor. The gateway owns token
// issuance in production; this exists for tooling and tests.
func GenerateToken(actor string, privileges []string) (string, error) {
	claims := &Claims{
		Actor:      actor,
		Privileges: privileges,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "go-wms",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(GetSecretKey())
}

// ValidateToken parses and validates a bearer token.
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return GetSecretKey(), nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.Actor == "" {
			claims.Actor = claims.Subject
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
