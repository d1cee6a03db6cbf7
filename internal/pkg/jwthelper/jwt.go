package jwthelper

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// UserClaims is what the identity provider puts in an access token.
type UserClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken issues an access token the way the identity provider does.
// Only used by the dev token command and tests; production tokens come from the provider.
func GenerateToken(key []byte, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := UserClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ParseToken verifies an access token and requires a subject.
func ParseToken(key []byte, token string) (UserClaims, error) {
	var claims UserClaims
	_, err := jwt.ParseWithClaims(token, &claims, hmacKey(key), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return UserClaims{}, classify(err)
	}

	if claims.Subject == "" {
		return UserClaims{}, ErrInvalidClaims
	}

	return claims, nil
}

// AdminLinkClaims binds a short-lived admin console token to one event.
type AdminLinkClaims struct {
	EventCode   string `json:"eventCode"`
	AdminUserID string `json:"adminUserId"`
	jwt.RegisteredClaims
}

func SignAdminLink(secret []byte, eventCode, adminUserID string, expiresAt time.Time) (string, error) {
	claims := AdminLinkClaims{
		EventCode:   eventCode,
		AdminUserID: adminUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAdminLink checks the signature in constant time, then expiry against now, then the payload shape.
func ParseAdminLink(secret []byte, token string, now func() time.Time) (AdminLinkClaims, error) {
	var claims AdminLinkClaims
	_, err := jwt.ParseWithClaims(token, &claims, hmacKey(secret),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return AdminLinkClaims{}, classify(err)
	}

	if claims.EventCode == "" || claims.AdminUserID == "" {
		return AdminLinkClaims{}, ErrInvalidClaims
	}

	return claims, nil
}

func hmacKey(key []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}

		return key, nil
	}
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrInvalidClaims
	default:
		return ErrInvalidToken
	}
}
