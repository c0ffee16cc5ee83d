package wire

import (
	"cinema-reservation/internal/adaptor"
	"cinema-reservation/internal/auth"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/middleware"
	"cinema-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"
)

type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring builds services, handlers and the router on top of the
// infrastructure in deps.
func Wiring(deps usecase.Dependencies, authn auth.Authenticator, db Pinger, rdb *redis.Client, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(deps, config, logger)
	handler := adaptor.NewHandler(service, logger)

	clk := deps.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}

	router := setupRouter(handler, authn, db, rdb, clk, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	authn auth.Authenticator,
	db Pinger,
	rdb *redis.Client,
	clk clock.Clock,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware(config.App.Name, otelchi.WithChiRoutes(r)))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))

	wireShowtime(r, handler.Showtime, config, logger)
	wireBooking(r, handler.Booking, authn, rdb, clk, config, logger)

	r.Get("/health", healthCheck(db, logger))

	return r
}
