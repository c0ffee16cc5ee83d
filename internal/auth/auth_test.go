package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinema-reservation/internal/auth"
	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/mocks"
	"cinema-reservation/pkg/clock"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var epoch = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func TestHashTokenIsStable(t *testing.T) {
	a := auth.HashToken("token-1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, auth.HashToken("token-1"))
	assert.NotEqual(t, a, auth.HashToken("token-2"))
}

func TestSessionAuthenticator(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	clk := clock.NewFixed(epoch)

	repo := new(mocks.MockSessionRepo)
	repo.On("FindValidSession", mock.Anything, auth.HashToken("good"), epoch).
		Return(&entity.Session{UserID: userID}, nil)
	repo.On("FindValidSession", mock.Anything, auth.HashToken("stale"), epoch).
		Return(nil, nil)
	repo.On("FindValidSession", mock.Anything, auth.HashToken("broken"), epoch).
		Return(nil, errors.New("connection reset"))

	a := auth.NewSessionAuthenticator(repo, clk, zap.NewNop())

	got, err := a.Authenticate(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = a.Authenticate(ctx, "stale")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = a.Authenticate(ctx, "")
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)

	_, err = a.Authenticate(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestJWTAuthenticator(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(epoch)
	a := auth.NewJWTAuthenticator("s3cret", "cinema-auth", clk)
	userID := uuid.New()

	token, err := a.IssueToken(userID, time.Hour)
	require.NoError(t, err)

	got, err := a.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	t.Run("expired", func(t *testing.T) {
		later := auth.NewJWTAuthenticator("s3cret", "cinema-auth", clock.NewFixed(epoch.Add(2*time.Hour)))
		_, err := later.Authenticate(ctx, token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewJWTAuthenticator("other", "cinema-auth", clk)
		_, err := other.Authenticate(ctx, token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := auth.NewJWTAuthenticator("s3cret", "someone-else", clk)
		_, err := other.Authenticate(ctx, token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("subject must be a uuid", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "42",
			Issuer:    "cinema-auth",
			ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour)),
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
		require.NoError(t, err)

		_, err = a.Authenticate(ctx, raw)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		claims := jwt.RegisteredClaims{Subject: userID.String(), ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour))}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = a.Authenticate(ctx, raw)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})
}
