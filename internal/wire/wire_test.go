package wire_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinema-reservation/internal/auth"
	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/event"
	"cinema-reservation/internal/ledger"
	"cinema-reservation/internal/mocks"
	"cinema-reservation/internal/payment"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/internal/wire"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/middleware"
	"cinema-reservation/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *utils.Config {
	return &utils.Config{
		App:     utils.AppConfig{Name: "cinema-reservation", AdminAPIKey: "admin"},
		Ledger:  utils.LedgerConfig{Driver: "memory", HoldTTL: 10 * time.Minute, SweepInterval: time.Minute},
		Payment: utils.PaymentConfig{Provider: "simulated", Currency: "INR", Timeout: time.Second},
		Broker:  utils.BrokerConfig{Driver: "none"},
		Auth:    utils.AuthConfig{Mode: "jwt", JWTSecret: "secret"},
	}
}

func TestInfraBuilders(t *testing.T) {
	config := testConfig()
	clk := clock.NewSystem()

	l, err := wire.NewLedger(config.Ledger, nil, nil, clk, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &ledger.Memory{}, l)

	_, err = wire.NewLedger(utils.LedgerConfig{Driver: "redis"}, nil, nil, clk, zap.NewNop())
	assert.Error(t, err)

	p, err := wire.NewPayment(config.Payment, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &payment.Simulated{}, p)

	_, err = wire.NewPayment(utils.PaymentConfig{Provider: "simulated", SimulatedDeclineAbove: "lots"}, zap.NewNop())
	assert.Error(t, err)

	pub, err := wire.NewPublisher(config.Broker, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, event.Nop{}, pub)

	authn, err := wire.NewAuthenticator(config.Auth, nil, clk, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &auth.JWTAuthenticator{}, authn)

	assert.False(t, wire.NeedsRedis(config))
	config.RateLimit.Enabled = true
	assert.True(t, wire.NeedsRedis(config))
}

func TestRouter(t *testing.T) {
	config := testConfig()
	clk := clock.NewSystem()

	showtimes := new(mocks.MockShowtimeRepo)
	showtimes.On("FindByID", mock.Anything, mock.Anything).Return(nil, nil)

	deps := usecase.Dependencies{
		Repo:    &repository.Repository{Booking: new(mocks.MockBookingRepo), Showtime: showtimes},
		Catalog: catalog.NewDefault(),
		Ledger:  ledger.NewMemory(),
		Payment: new(mocks.MockPaymentAdapter),
		Clock:   clk,
	}
	authn := auth.NewJWTAuthenticator("secret", "", clk)
	app := wire.Wiring(deps, authn, nil, nil, config, zap.NewNop())

	token, err := authn.IssueToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		target     string
		header     map[string]string
		wantStatus int
	}{
		{"health", http.MethodGet, "/health", nil, http.StatusOK},
		{"public seat map", http.MethodGet, "/api/showtimes/" + uuid.NewString() + "/seats", nil, http.StatusNotFound},
		{"bookings need auth", http.MethodGet, "/api/bookings", nil, http.StatusUnauthorized},
		{"admin needs key", http.MethodPost, "/api/admin/showtimes", nil, http.StatusForbidden},
		{"admin with key but empty body", http.MethodPost, "/api/admin/showtimes", map[string]string{middleware.AdminKeyHeader: "admin"}, http.StatusBadRequest},
		{"authenticated bad id", http.MethodGet, "/api/bookings/nope", map[string]string{"Authorization": "Bearer " + token}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
		})
	}
}

type downDB struct{}

func (downDB) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsDatabase(t *testing.T) {
	config := testConfig()
	deps := usecase.Dependencies{
		Repo:    &repository.Repository{Booking: new(mocks.MockBookingRepo), Showtime: new(mocks.MockShowtimeRepo)},
		Catalog: catalog.NewDefault(),
		Ledger:  ledger.NewMemory(),
		Payment: new(mocks.MockPaymentAdapter),
		Clock:   clock.NewSystem(),
	}
	app := wire.Wiring(deps, auth.NewJWTAuthenticator("secret", "", clock.NewSystem()), downDB{}, nil, config, zap.NewNop())

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
