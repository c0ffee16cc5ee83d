package ledger

import (
	"context"
	"fmt"
	"strings"

	"cinema-reservation/internal/catalog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Seat state of a showtime lives in one hash, seatmap:{<showtime>}, with
// fields "<seat>" = "held:<booking>:<expiry ms>" | "booked:<booking>".
// Every operation is a single Lua script over that hash, so it is atomic and
// cluster safe. Expired holds read as free; the sweeper deletes them.

const seatMapPattern = "seatmap:{*}"

const luaParse = `
local function parse(v)
    local state, owner, exp = string.match(v, '^(%a+):([^:]+):?(%d*)$')
    return state, owner, tonumber(exp)
end
local function live(v, now)
    local state, owner, exp = parse(v)
    if state == 'held' and exp ~= nil and exp <= now then
        return nil, owner
    end
    return state, owner
end
`

// KEYS[1] seat map. ARGV: booking, now ms, expiry ms, seats...
var reserveSeatsScript = redis.NewScript(luaParse + `
local now = tonumber(ARGV[2])
local conflicts = {}
for i = 4, #ARGV do
    local v = redis.call('HGET', KEYS[1], ARGV[i])
    if v and live(v, now) then
        table.insert(conflicts, ARGV[i])
    end
end
if #conflicts > 0 then
    return conflicts
end
for i = 4, #ARGV do
    redis.call('HSET', KEYS[1], ARGV[i], 'held:' .. ARGV[1] .. ':' .. ARGV[3])
end
return {}
`)

// KEYS[1] seat map. ARGV: booking, now ms, seats...
var confirmSeatsScript = redis.NewScript(luaParse + `
local now = tonumber(ARGV[2])
for i = 3, #ARGV do
    local v = redis.call('HGET', KEYS[1], ARGV[i])
    if not v then
        return {err = 'not held ' .. ARGV[i]}
    end
    local state, owner = live(v, now)
    if state ~= 'held' or owner ~= ARGV[1] then
        return {err = 'not held ' .. ARGV[i]}
    end
end
for i = 3, #ARGV do
    redis.call('HSET', KEYS[1], ARGV[i], 'booked:' .. ARGV[1])
end
return 'OK'
`)

// KEYS[1] seat map. ARGV: booking, seats...
var releaseSeatsScript = redis.NewScript(luaParse + `
for i = 2, #ARGV do
    local v = redis.call('HGET', KEYS[1], ARGV[i])
    if v then
        local _, owner = parse(v)
        if owner == ARGV[1] then
            redis.call('HDEL', KEYS[1], ARGV[i])
        end
    end
end
return 'OK'
`)

// KEYS[1] seat map. ARGV: now ms. Returns taken seats.
var availabilityScript = redis.NewScript(luaParse + `
local now = tonumber(ARGV[1])
local all = redis.call('HGETALL', KEYS[1])
local taken = {}
for i = 1, #all, 2 do
    if live(all[i + 1], now) then
        table.insert(taken, all[i])
    end
end
return taken
`)

// KEYS[1] seat map. ARGV: now ms. Deletes expired holds and returns a flat
// list of seat, booking pairs.
var sweepSeatsScript = redis.NewScript(luaParse + `
local now = tonumber(ARGV[1])
local all = redis.call('HGETALL', KEYS[1])
local out = {}
for i = 1, #all, 2 do
    local state, owner, exp = parse(all[i + 1])
    if state == 'held' and exp ~= nil and exp <= now then
        redis.call('HDEL', KEYS[1], all[i])
        table.insert(out, all[i])
        table.insert(out, owner)
    end
end
return out
`)

type Redis struct {
	rdb  redis.UniversalClient
	log  *zap.Logger
	opts options
}

func NewRedis(rdb redis.UniversalClient, log *zap.Logger, opts ...Option) *Redis {
	return &Redis{
		rdb:  rdb,
		log:  log.With(zap.String("ledger", "redis")),
		opts: buildOptions(opts),
	}
}

func seatMapKey(showtimeID uuid.UUID) string {
	return fmt.Sprintf("seatmap:{%s}", showtimeID)
}

func showtimeFromKey(key string) (uuid.UUID, error) {
	start := strings.IndexByte(key, '{')
	end := strings.LastIndexByte(key, '}')
	if start < 0 || end <= start {
		return uuid.Nil, fmt.Errorf("malformed seat map key %q", key)
	}
	return uuid.Parse(key[start+1 : end])
}

func seatArgs(head []any, ids []catalog.SeatID) []any {
	args := make([]any, 0, len(head)+len(ids))
	args = append(args, head...)
	for _, id := range ids {
		args = append(args, id.String())
	}
	return args
}

func parseSeatList(raw []string) ([]catalog.SeatID, error) {
	ids := make([]catalog.SeatID, 0, len(raw))
	for _, r := range raw {
		id, err := catalog.ParseSeatID(r)
		if err != nil {
			return nil, fmt.Errorf("stored seat id %q: %w", r, err)
		}
		ids = append(ids, id)
	}
	catalog.SortSeatIDs(ids)
	return ids, nil
}

func (l *Redis) Availability(ctx context.Context, showtimeID uuid.UUID) ([]catalog.SeatID, error) {
	now := l.opts.clock.Now().UnixMilli()
	raw, err := availabilityScript.Run(ctx, l.rdb, []string{seatMapKey(showtimeID)}, now).StringSlice()
	if err != nil {
		l.log.Error("Failed to read availability",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
		)
		return nil, fmt.Errorf("availability for showtime %s: %w", showtimeID, err)
	}
	return parseSeatList(raw)
}

func (l *Redis) TryReserve(ctx context.Context, showtimeID uuid.UUID, seats []catalog.SeatID, bookingID uuid.UUID) error {
	ids := sortedUnique(seats)
	if len(ids) == 0 {
		return catalog.ErrNoSeats
	}

	now := l.opts.clock.Now()
	args := seatArgs([]any{bookingID.String(), now.UnixMilli(), now.Add(l.opts.holdTTL).UnixMilli()}, ids)

	raw, err := reserveSeatsScript.Run(ctx, l.rdb, []string{seatMapKey(showtimeID)}, args...).StringSlice()
	if err != nil {
		l.log.Error("Failed to reserve seats",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("reserve seats for booking %s: %w", bookingID, err)
	}
	if len(raw) > 0 {
		conflicts, err := parseSeatList(raw)
		if err != nil {
			return err
		}
		return &ConflictError{Seats: conflicts}
	}
	return nil
}

func (l *Redis) Confirm(ctx context.Context, showtimeID uuid.UUID, seats []catalog.SeatID, bookingID uuid.UUID) error {
	ids := sortedUnique(seats)
	if len(ids) == 0 {
		return catalog.ErrNoSeats
	}

	args := seatArgs([]any{bookingID.String(), l.opts.clock.Now().UnixMilli()}, ids)
	err := confirmSeatsScript.Run(ctx, l.rdb, []string{seatMapKey(showtimeID)}, args...).Err()
	if err != nil {
		if redis.HasErrorPrefix(err, "not held") {
			return fmt.Errorf("%w: %s", ErrNotHeld, strings.TrimPrefix(err.Error(), "not held "))
		}
		l.log.Error("Failed to confirm seats",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("confirm seats for booking %s: %w", bookingID, err)
	}
	return nil
}

func (l *Redis) Release(ctx context.Context, showtimeID uuid.UUID, seats []catalog.SeatID, bookingID uuid.UUID) error {
	ids := sortedUnique(seats)
	if len(ids) == 0 {
		return nil
	}

	args := seatArgs([]any{bookingID.String()}, ids)
	if err := releaseSeatsScript.Run(ctx, l.rdb, []string{seatMapKey(showtimeID)}, args...).Err(); err != nil {
		l.log.Error("Failed to release seats",
			zap.Error(err),
			zap.String("showtime_id", showtimeID.String()),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("release seats for booking %s: %w", bookingID, err)
	}
	return nil
}

func (l *Redis) SweepExpired(ctx context.Context) ([]ExpiredHold, error) {
	now := l.opts.clock.Now().UnixMilli()

	var expired []expiredSeat
	iter := l.rdb.Scan(ctx, 0, seatMapPattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		showtimeID, err := showtimeFromKey(key)
		if err != nil {
			l.log.Warn("Skipping unknown seat map key", zap.String("key", key), zap.Error(err))
			continue
		}

		pairs, err := sweepSeatsScript.Run(ctx, l.rdb, []string{key}, now).StringSlice()
		if err != nil {
			return nil, fmt.Errorf("sweep %s: %w", key, err)
		}
		for i := 0; i+1 < len(pairs); i += 2 {
			seat, err := catalog.ParseSeatID(pairs[i])
			if err != nil {
				return nil, fmt.Errorf("stored seat id %q: %w", pairs[i], err)
			}
			bookingID, err := uuid.Parse(pairs[i+1])
			if err != nil {
				return nil, fmt.Errorf("stored booking id %q: %w", pairs[i+1], err)
			}
			expired = append(expired, expiredSeat{showtimeID: showtimeID, bookingID: bookingID, seat: seat})
		}
	}
	if err := iter.Err(); err != nil {
		l.log.Error("Failed to scan seat maps", zap.Error(err))
		return nil, fmt.Errorf("scan seat maps: %w", err)
	}

	return groupExpired(expired), nil
}
