package wire

import (
	"fmt"

	"cinema-reservation/internal/auth"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/event"
	"cinema-reservation/internal/ledger"
	"cinema-reservation/internal/payment"
	"cinema-reservation/pkg/clock"
	"cinema-reservation/pkg/database"
	"cinema-reservation/pkg/utils"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const kafkaBuffer = 1024

// NeedsRedis reports whether any configured component talks to Redis.
func NeedsRedis(config *utils.Config) bool {
	return config.Ledger.Driver == "redis" || config.RateLimit.Enabled
}

func NewLedger(config utils.LedgerConfig, db database.PgxIface, rdb *redis.Client, clk clock.Clock, log *zap.Logger) (ledger.Ledger, error) {
	opts := []ledger.Option{ledger.WithHoldTTL(config.HoldTTL), ledger.WithClock(clk)}

	switch config.Driver {
	case "postgres":
		return ledger.NewPostgres(db, log, opts...), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis ledger needs a redis client")
		}
		return ledger.NewRedis(rdb, log, opts...), nil
	case "memory":
		log.Warn("Using in-process seat ledger; holds are lost on restart and not shared between instances")
		return ledger.NewMemory(opts...), nil
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", config.Driver)
	}
}

func NewPayment(config utils.PaymentConfig, log *zap.Logger) (payment.Adapter, error) {
	switch config.Provider {
	case "stripe":
		return payment.NewStripe(config.StripeSecretKey, config.StripePaymentMethod, log), nil
	case "simulated":
		declineAbove := decimal.Zero
		if config.SimulatedDeclineAbove != "" {
			d, err := decimal.NewFromString(config.SimulatedDeclineAbove)
			if err != nil {
				return nil, fmt.Errorf("PAYMENT_SIMULATED_DECLINE_ABOVE: %w", err)
			}
			declineAbove = d
		}
		return payment.NewSimulated(config.SimulatedLatency, declineAbove, log), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", config.Provider)
	}
}

func NewPublisher(config utils.BrokerConfig, log *zap.Logger) (event.Publisher, error) {
	switch config.Driver {
	case "rabbitmq":
		pub, err := event.NewRabbitMQ(config.RabbitMQURL, log)
		if err != nil {
			return nil, err
		}
		return pub, nil
	case "kafka":
		return event.NewKafka(config.KafkaBrokers, config.KafkaTopic, kafkaBuffer, log), nil
	case "none", "":
		return event.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown broker driver %q", config.Driver)
	}
}

func NewAuthenticator(config utils.AuthConfig, sessions repository.SessionRepository, clk clock.Clock, log *zap.Logger) (auth.Authenticator, error) {
	switch config.Mode {
	case "jwt":
		return auth.NewJWTAuthenticator(config.JWTSecret, config.JWTIssuer, clk), nil
	case "session", "":
		return auth.NewSessionAuthenticator(sessions, clk, log), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", config.Mode)
	}
}
