package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinema-reservation/internal/catalog"
	"cinema-reservation/internal/ledger"
	"cinema-reservation/pkg/clock"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHoldTTL = 5 * time.Minute

type harness struct {
	ledger      ledger.Ledger
	clock       *clock.Fixed
	newShowtime func(t *testing.T) uuid.UUID
}

func seats(t *testing.T, raw ...string) []catalog.SeatID {
	t.Helper()
	ids := make([]catalog.SeatID, len(raw))
	for i, r := range raw {
		id, err := catalog.ParseSeatID(r)
		require.NoError(t, err)
		ids[i] = id
	}
	return ids
}

func assertTaken(t *testing.T, l ledger.Ledger, showtimeID uuid.UUID, want ...string) {
	t.Helper()
	got, err := l.Availability(context.Background(), showtimeID)
	require.NoError(t, err)
	if want == nil {
		want = []string{}
	}
	if diff := cmp.Diff(want, catalog.Strings(got)); diff != "" {
		t.Errorf("taken seats mismatch (-want +got):\n%s", diff)
	}
}

// runContract checks the behaviour every ledger driver must share.
func runContract(t *testing.T, setup func(t *testing.T) harness) {
	ctx := context.Background()

	t.Run("reserve is all or nothing", func(t *testing.T) {
		h := setup(t)
		st := h.newShowtime(t)
		x, y, z := uuid.New(), uuid.New(), uuid.New()

		require.NoError(t, h.ledger.TryReserve(ctx, st, seats(t, "A1"), x))

		err := h.ledger.TryReserve(ctx, st, seats(t, "A2", "A1"), y)
		var conflict *ledger.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.ErrorIs(t, err, ledger.ErrConflict)
		assert.Equal(t, []string{"A1"}, catalog.Strings(conflict.Seats))

		assertTaken(t, h.ledger, st, "A1")
		require.NoError(t, h.ledger.TryReserve(ctx, st, seats(t, "A2"), z))
	})

	t.Run("conflict names exactly the taken seats", func(t *testing.T) {
		h := setup(t)
		st := h.newShowtime(t)

		require.NoError(t, h.ledger.TryReserve(ctx, st, seats(t, "C3", "A1"), uuid.New()))

		err := h.ledger.TryReserve(ctx, st, seats(t, "A1", "A2", "C3", "C4"), uuid.New())
		var conflict *ledger.ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, []string{"A1", "C3"}, catalog.Strings(conflict.Seats))
	})

	t.Run("showtimes are independent", func(t *testing.T) {
		h := setup(t)
		first, second := h.newShowtime(t), h.newShowtime(t)

		require.NoError(t, h.ledger.TryReserve(ctx, first, seats(t, "B2"), uuid.New()))
		require.NoError(t, h.ledger.TryReserve(ctx, second, seats(t, "B2"), uuid.New()))
	})

	t.Run("reserve confirm release round trip", func(t *testing.T) {
		h := setup(t)
		st := h.newShowtime(t)
		x := uuid.New()
		ids := seats(t, "A1", "F3")

		require.NoError(t, h.ledger.TryReserve(ctx, st, ids, x))
		require.NoError(t, h.ledger.Confirm(ctx, st, ids, x))
		assertTaken(t, h.ledger, st, "A1", "F3")

		require.NoError(t, h.ledger.Release(ctx, st, ids, x))
		assertTaken(t, h.ledger, st)
	})

	t.Run("release is idempotent and owner scoped", func(t *testing.T) {
		h := setup(t)
		st := h.newShowtime(t)
		x, y := uuid.New(), uuid.New()

		require.NoError(t, h.ledger.TryReserve(ctx, st, seats(t, "D5"), x))

		require.NoError(t, h.ledger.Release(ctx, st, seats(t, "D5"), y))
		assertTaken(t, h.ledger, st, "D5")

		require.NoError(t, h.ledger.Release(ctx, st, seats(t, "D5"), x))
		require.NoError(t, h.ledger.Release(ctx, st, seats(t, "D5"), x))
		require.NoError(t, h.ledger.Release(ctx, st, seats(t, "J12"), x))
		assertTaken(t, h.ledger, st)
	})

	t.Run("confirm requires the holder", func(t *testing.T) {
		h := setup(t)
		st := h.newShowtime(t)
		x := uuid.New()

		require.NoError(t, h.ledger.TryReserve(ctx, st, seats(t, "E1"), x))

		err := h.ledger.Confirm(ctx, st, seats(t, "E1"), uuid.New())
		assert.ErrorIs(t, err, ledger.ErrNotHeld)

		err = h.ledger.Confirm(ctx, st, seats(t, "E1", "E2"), x)
		assert.ErrorIs(t, err, ledger.ErrNotHeld)

		require.NoError(t, h.ledger.Confirm(ctx, st, seats(t, "E1"), x))
		err = h.ledger.Confirm(ctx, st, seats(t, "E1"), x)
		assert.ErrorIs(t, err, ledger.ErrNotHeld)
	})

	t.Run("expired hold reads free and cannot be confirmed", func(t *testing.T) {
		h := setup(t)
		st := h.newShowtime(t)
		x, y := uuid.New(), uuid.New()

		require.NoError(t, h.ledger.TryReserve(ctx, st, seats(t, "B2"), x))
		h.clock.Advance(testHoldTTL + time.Second)

		assertTaken(t, h.ledger, st)
		assert.ErrorIs(t, h.ledger.Confirm(ctx, st, seats(t, "B2"), x), ledger.ErrNotHeld)

		require.NoError(t, h.ledger.TryReserve(ctx, st, seats(t, "B2"), y))
		assertTaken(t, h.ledger, st, "B2")

		// the old holder's release must not free the new hold
		require.NoError(t, h.ledger.Release(ctx, st, seats(t, "B2"), x))
		assertTaken(t, h.ledger, st, "B2")
	})

	t.Run("booked seats do not expire", func(t *testing.T) {
		h := setup(t)
		st := h.newShowtime(t)
		x := uuid.New()

		require.NoError(t, h.ledger.TryReserve(ctx, st, seats(t, "G7"), x))
		require.NoError(t, h.ledger.Confirm(ctx, st, seats(t, "G7"), x))
		h.clock.Advance(3 * testHoldTTL)

		assertTaken(t, h.ledger, st, "G7")
		err := h.ledger.TryReserve(ctx, st, seats(t, "G7"), uuid.New())
		assert.ErrorIs(t, err, ledger.ErrConflict)
	})

	t.Run("sweep frees expired holds per booking", func(t *testing.T) {
		h := setup(t)
		st := h.newShowtime(t)
		x, y := uuid.New(), uuid.New()

		require.NoError(t, h.ledger.TryReserve(ctx, st, seats(t, "C2", "C1"), x))
		h.clock.Advance(testHoldTTL / 2)
		require.NoError(t, h.ledger.TryReserve(ctx, st, seats(t, "H1"), y))
		h.clock.Advance(testHoldTTL/2 + time.Second)

		expired, err := h.ledger.SweepExpired(ctx)
		require.NoError(t, err)

		var mine []ledger.ExpiredHold
		for _, e := range expired {
			if e.ShowtimeID == st {
				mine = append(mine, e)
			}
		}
		require.Len(t, mine, 1)
		assert.Equal(t, x, mine[0].BookingID)
		assert.Equal(t, []string{"C1", "C2"}, catalog.Strings(mine[0].Seats))

		assertTaken(t, h.ledger, st, "H1")
		assert.ErrorIs(t, h.ledger.Confirm(ctx, st, seats(t, "C1", "C2"), x), ledger.ErrNotHeld)
	})

	t.Run("overlapping concurrent reservations grant each seat once", func(t *testing.T) {
		h := setup(t)
		st := h.newShowtime(t)

		const workers = 16
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			winners   []uuid.UUID
			conflicts int
		)
		rows := []string{"F", "G", "H", "I", "J"}
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := uuid.New()
				// every request wants A1 plus one seat of its own
				own := catalog.SeatID{Row: rows[i%len(rows)], Number: i/len(rows) + 1}
				err := h.ledger.TryReserve(ctx, st, []catalog.SeatID{own, {Row: "A", Number: 1}}, id)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					winners = append(winners, id)
				case errors.Is(err, ledger.ErrConflict):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		assert.Len(t, winners, 1)
		assert.Equal(t, workers-1, conflicts)

		taken, err := h.ledger.Availability(ctx, st)
		require.NoError(t, err)
		assert.Len(t, taken, 2)
	})

	t.Run("disjoint concurrent reservations all succeed", func(t *testing.T) {
		h := setup(t)
		st := h.newShowtime(t)

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ids := []catalog.SeatID{{Row: "C", Number: i + 1}, {Row: "D", Number: i + 1}}
				errs[i] = h.ledger.TryReserve(ctx, st, ids, uuid.New())
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
		taken, err := h.ledger.Availability(ctx, st)
		require.NoError(t, err)
		assert.Len(t, taken, 16)
	})

	t.Run("empty seat set is rejected", func(t *testing.T) {
		h := setup(t)
		err := h.ledger.TryReserve(ctx, h.newShowtime(t), nil, uuid.New())
		assert.ErrorIs(t, err, catalog.ErrNoSeats)
	})
}
