package auth

import (
	"context"
	"encoding/hex"
	"fmt"

	"cinema-reservation/internal/data/repository"
	"cinema-reservation/pkg/clock"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// HashToken is the form a session token is stored in.
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SessionAuthenticator accepts opaque tokens that have a live row in the
// sessions table.
type SessionAuthenticator struct {
	sessions repository.SessionRepository
	clock    clock.Clock
	log      *zap.Logger
}

func NewSessionAuthenticator(sessions repository.SessionRepository, clk clock.Clock, log *zap.Logger) *SessionAuthenticator {
	return &SessionAuthenticator{
		sessions: sessions,
		clock:    clk,
		log:      log.With(zap.String("authenticator", "session")),
	}
}

func (a *SessionAuthenticator) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthenticated
	}

	session, err := a.sessions.FindValidSession(ctx, HashToken(token), a.clock.Now())
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup session: %w", err)
	}
	if session == nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return session.UserID, nil
}
