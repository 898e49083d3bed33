package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret = errors.New("jwt secret not set")
	ErrInvalidToken  = errors.New("invalid token")
)

const RoleCustomer = "CUSTOMER"

// Claims identify the customer a configurator session belongs to.
type Claims struct {
	CustomerID string `json:"customerID"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues an HS256 customer token. Tokens are minted by the
// storefront; the service only needs this for tooling and tests.
func GenerateToken(secret []byte, customerID string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	if customerID == "" {
		return "", errors.New("empty customerID passed to GenerateToken")
	}

	now := time.Now()
	claims := Claims{
		CustomerID: customerID,
		Role:       RoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken returns the customer id carried by a valid token.
func ValidateToken(secret []byte, tokenString string) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	id := claims.CustomerID
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return "", ErrInvalidToken
	}
	return id, nil
}
