package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/calendarapp/calendar/internal/utils"
	"github.com/calendarapp/calendar/pkg/user"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Uid  string `json:"uid"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 signed tokens carrying the user uid and name.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  utils.Clock
}

func NewTokenManager(secret, issuer string, ttl time.Duration, clock utils.Clock) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		clock:  clock,
	}
}

func (m *TokenManager) Generate(u user.User) (string, error) {
	now := m.clock.Now()
	claims := Claims{
		Uid:  u.Uid,
		Name: u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   u.Uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses raw and checks signature, issuer and expiry. Every failure is reported as ErrInvalidToken.
func (m *TokenManager) Validate(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Uid == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
