package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"cinema-reservation/cmd"
	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/internal/wire"
	"cinema-reservation/migrations"
	"cinema-reservation/pkg/cache"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/database"
	"cinema-reservation/pkg/telemetry"
	"cinema-reservation/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	if err := run(config, logger); err != nil {
		logger.Fatal("Application stopped", zap.Error(err))
	}
}

func run(config *utils.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("env", config.App.Env),
		zap.String("port", config.App.Port),
		zap.String("ledger", config.Ledger.Driver),
		zap.String("payment", config.Payment.Provider),
		zap.String("broker", config.Broker.Driver),
	)

	shutdownTelemetry, err := telemetry.Init(ctx, config.App, config.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	if config.Database.AutoMigrate {
		if err := database.Migrate(database.DSN(config.Database), migrations.FS); err != nil {
			return err
		}
		logger.Info("Database migrated")
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("Database connected successfully")

	var rdb *redis.Client
	if wire.NeedsRedis(config) {
		rdb, err = cache.InitRedis(config.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	}

	clk := clock.NewSystem()
	repos := repository.NewRepository(db, logger)

	seatLedger, err := wire.NewLedger(config.Ledger, db, rdb, clk, logger)
	if err != nil {
		return err
	}
	gateway, err := wire.NewPayment(config.Payment, logger)
	if err != nil {
		return err
	}
	publisher, err := wire.NewPublisher(config.Broker, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher", zap.Error(err))
		}
	}()
	authn, err := wire.NewAuthenticator(config.Auth, repos.Session, clk, logger)
	if err != nil {
		return err
	}

	app := wire.Wiring(usecase.Dependencies{
		Repo:      repos,
		Catalog:   catalog.NewDefault(),
		Ledger:    seatLedger,
		Payment:   gateway,
		Publisher: publisher,
		Clock:     clk,
	}, authn, db, rdb, config, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Service.Sweeper.Run(ctx)
	}()

	err = cmd.APIServer(ctx, app.Router, config.App.Port, config.App.ShutdownTimeout, logger)
	stop()
	wg.Wait()

	logger.Info("Application stopped")
	return err
}
