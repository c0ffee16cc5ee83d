package auth

import (
	"context"
	"fmt"
	"time"

	"cinema-reservation/pkg/clock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTAuthenticator accepts HS256 tokens whose subject is the user id.
type JWTAuthenticator struct {
	secret []byte
	issuer string
	clock  clock.Clock
}

func NewJWTAuthenticator(secret, issuer string, clk clock.Clock) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret), issuer: issuer, clock: clk}
}

func (a *JWTAuthenticator) Authenticate(_ context.Context, token string) (uuid.UUID, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.clock.Now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", ErrUnauthenticated)
	}
	return userID, nil
}

// IssueToken signs a token for userID. Used by tests and local tooling.
func (a *JWTAuthenticator) IssueToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := a.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
