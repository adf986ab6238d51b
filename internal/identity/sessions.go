package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidSession = errors.New("identity: invalid or expired session")

// Claims — полезная нагрузка токена сессии.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Sessions выпускает и проверяет токены (HS256). Отозванные jti хранит Revoker.
type Sessions struct {
	key     []byte
	issuer  string
	ttl     time.Duration
	revoked Revoker
	now     func() time.Time
}

func NewSessions(key, issuer string, ttl time.Duration, revoked Revoker) *Sessions {
	return &Sessions{key: []byte(key), issuer: issuer, ttl: ttl, revoked: revoked, now: time.Now}
}

func (s *Sessions) Issue(accountID, role string) (Token, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return Token{}, fmt.Errorf("sign session: %w", err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

func (s *Sessions) parse(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return Claims{}, ErrInvalidSession
	}
	return claims, nil
}

// Parse — подпись, срок и отзыв.
func (s *Sessions) Parse(ctx context.Context, raw string) (Claims, error) {
	claims, err := s.parse(raw)
	if err != nil {
		return Claims{}, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return Claims{}, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return Claims{}, ErrInvalidSession
	}
	return claims, nil
}

// Revoke — выход: jti живёт в списке отзыва до естественного истечения токена.
func (s *Sessions) Revoke(ctx context.Context, raw string) error {
	claims, err := s.parse(raw)
	if err != nil {
		return err
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, ttl)
}
