package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// AdminRole is the role claim every console token must carry.
const AdminRole = "admin"

var (
	ErrNoSecret       = errors.New("jwt secret is not configured")
	ErrNotAdminToken  = errors.New("token does not carry the admin role")
	errSigningMethod  = errors.New("unexpected signing method")
	errInvalidSubject = errors.New("token does not contain a valid 'sub' claim")
)

// GenerateAdminToken creates a signed HS256 admin token for subject that
// expires after duration.
func GenerateAdminToken(secret, subject string, duration time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": AdminRole,
		"iat":  now.Unix(),
		"exp":  now.Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(secret, tokenString string) (*jwt.Token, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errSigningMethod
		}
		return []byte(secret), nil
	})
}

// ParseAdminToken validates tokenString and returns its subject. Tokens
// without role=admin are rejected.
func ParseAdminToken(secret, tokenString string) (string, error) {
	token, err := ValidateToken(secret, tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	if role, _ := claims["role"].(string); role != AdminRole {
		return "", ErrNotAdminToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errInvalidSubject
	}
	return sub, nil
}
