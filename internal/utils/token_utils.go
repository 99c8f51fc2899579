package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenScope limits what a signed token may be used for.
type TokenScope string

const (
	ScopeSession       TokenScope = "session"
	ScopePasswordReset TokenScope = "password_reset"
)

// Audience returns the JWT audience paired with a scope.
func (s TokenScope) Audience() string {
	switch s {
	case ScopePasswordReset:
		return "password-reset"
	default:
		return "session"
	}
}

// ErrWrongScope is returned when a token was minted for a different purpose.
var ErrWrongScope = errors.New("token scope mismatch")

// TokenClaims is the payload of every token this service signs.
type TokenClaims struct {
	UserID  string     `json:"userId"`
	Email   string     `json:"email,omitempty"`
	Scope   TokenScope `json:"scope"`
	Version int        `json:"ver"`
	jwt.RegisteredClaims
}

// GenerateJWT signs claims for userID with the given scope and lifetime.
func GenerateJWT(claims TokenClaims, secret string, expiryDuration time.Duration, issuer string, now time.Time) (string, error) {
	claims.Issuer = issuer
	claims.Subject = claims.UserID
	claims.Audience = jwt.ClaimStrings{claims.Scope.Audience()}
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(expiryDuration))
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAndValidateJWT parses a token, validates its signature, standard claims and
// that it was issued for scope. Errors from the jwt package are passed through so
// callers can match jwt.ErrTokenExpired and friends.
func ParseAndValidateJWT(tokenString string, secretKey string, issuer string, scope TokenScope) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(scope.Audience()),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenInvalidAudience) {
			return nil, fmt.Errorf("%w: %w", ErrWrongScope, err)
		}
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.Scope != scope {
		return nil, ErrWrongScope
	}
	if claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}
