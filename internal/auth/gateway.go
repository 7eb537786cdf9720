package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("token invalid or expired")
	ErrRevoked      = errors.New("token has been revoked")
)

// Identity is what a verified credential resolves to. Everything downstream
// (ownership checks, admin gates) trusts this value.
type Identity struct {
	UserID int64
	Role   string
}

func (id Identity) Admin() bool { return id.Role == "admin" }

type claims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Gateway issues and verifies HS256 tokens. Revocation is tracked per jti in a
// RevocationList so a logout on one instance holds on every instance.
type Gateway struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationList
}

func NewGateway(secret string, ttl time.Duration, revoked RevocationList) *Gateway {
	return &Gateway{secret: []byte(secret), ttl: ttl, revoked: revoked}
}

func (g *Gateway) Issue(userID int64, role string) (string, error) {
	now := time.Now()
	c := claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(g.secret)
}

// Verify parses the token and checks it against the revocation list.
func (g *Gateway) Verify(ctx context.Context, token string) (Identity, error) {
	c, err := g.parse(token)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	revoked, err := g.revoked.Contains(ctx, c.ID)
	if err != nil {
		return Identity{}, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return Identity{}, ErrRevoked
	}
	return Identity{UserID: c.UserID, Role: c.Role}, nil
}

// Revoke blacklists the token's jti until the token would have expired anyway.
func (g *Gateway) Revoke(ctx context.Context, token string) error {
	c, err := g.parse(token)
	if err != nil {
		return ErrInvalidToken
	}
	ttl := time.Until(c.ExpiresAt.Time)
	if ttl <= 0 {
		return nil // already expired, nothing to track
	}
	return g.revoked.Add(ctx, c.ID, ttl)
}

func (g *Gateway) parse(token string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if c.ID == "" || c.UserID <= 0 {
		return nil, errors.New("missing claims")
	}
	return &c, nil
}
