package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a bearer session issued by the auth service. Only a hash of
// the token is stored.
type Session struct {
	BaseSimple
	UserID    uuid.UUID  `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}
