package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

type AccessToken struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims carried by an admin access token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AdminID returns the subject claim as an admin id.
func (c *Claims) AdminID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// NewAccessToken signs an HS256 token for the given admin.
func NewAccessToken(secret string, adminID int64, email string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(adminID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, ExpiresAt: exp}, nil
}

// ParseToken validates signature and expiry. Any failure is reported as
// domain.ErrUnauthorized.
func ParseToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	if _, err := claims.AdminID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", domain.ErrUnauthorized)
	}
	return claims, nil
}
