package ledger_test

import (
	"testing"
	"time"

	"cinema-reservation/internal/ledger"
	"cinema-reservation/internal/testutil"
	"cinema-reservation/pkg/clock"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func TestPostgresLedger(t *testing.T) {
	db := testutil.NewPostgres(t)

	runContract(t, func(t *testing.T) harness {
		c := clock.NewFixed(testEpoch)
		return harness{
			ledger: ledger.NewPostgres(db, zap.NewNop(), ledger.WithHoldTTL(testHoldTTL), ledger.WithClock(c)),
			clock:  c,
			newShowtime: func(t *testing.T) uuid.UUID {
				return testutil.InsertShowtime(t, db, testEpoch.Add(72*time.Hour))
			},
		}
	})
}
