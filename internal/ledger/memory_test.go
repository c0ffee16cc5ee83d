package ledger_test

import (
	"testing"
	"time"

	"cinema-reservation/internal/ledger"
	"cinema-reservation/pkg/clock"

	"github.com/google/uuid"
)

var testEpoch = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func TestMemoryLedger(t *testing.T) {
	runContract(t, func(t *testing.T) harness {
		c := clock.NewFixed(testEpoch)
		return harness{
			ledger:      ledger.NewMemory(ledger.WithHoldTTL(testHoldTTL), ledger.WithClock(c)),
			clock:       c,
			newShowtime: func(*testing.T) uuid.UUID { return uuid.New() },
		}
	})
}
