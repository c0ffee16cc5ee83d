package wire

import (
	"context"
	"net/http"
	"time"

	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

// Pinger is satisfied by the database pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

func healthCheck(db Pinger, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				log.Error("Health check: database unreachable", zap.Error(err))
				utils.ResponseServiceUnavailable(w, "Database unreachable")
				return
			}
		}
		utils.ResponseSuccess(w, "OK", nil)
	}
}
