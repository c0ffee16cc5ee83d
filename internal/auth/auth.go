// Package auth resolves bearer tokens to user ids. Tokens are issued
// elsewhere; this service only verifies them.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}
