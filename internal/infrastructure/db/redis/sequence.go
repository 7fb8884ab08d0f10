package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const sequenceKeyPrefix = "user_id_seq:"

// floorScript raises the counter to the given floor without ever lowering it,
// so concurrent Seed calls and already-advanced counters stay monotonic.
var floorScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if floor > cur then
	redis.call('SET', KEYS[1], floor)
	return floor
end
return cur
`)

// SequenceAllocator hands out monotonically increasing numeric suffixes per
// identifier prefix. The counter lives in Redis, so concurrent allocations
// across processes never observe the same value.
type SequenceAllocator struct {
	client *redis.Client
}

func NewSequenceAllocator(client *redis.Client) *SequenceAllocator {
	return &SequenceAllocator{client: client}
}

func (a *SequenceAllocator) key(prefix string) string {
	return sequenceKeyPrefix + prefix
}

// Next atomically consumes and returns the next suffix for the prefix.
func (a *SequenceAllocator) Next(ctx context.Context, prefix string) (int64, error) {
	n, err := a.client.Incr(ctx, a.key(prefix)).Result()
	if err != nil {
		return 0, fmt.Errorf("sequence incr %q: %w", prefix, err)
	}
	return n, nil
}

// Seed raises the counter for the prefix to at least floor. Lower floors are
// ignored, which makes seeding idempotent and safe to repeat at startup.
func (a *SequenceAllocator) Seed(ctx context.Context, prefix string, floor int64) error {
	if floor <= 0 {
		return nil
	}
	if err := floorScript.Run(ctx, a.client, []string{a.key(prefix)}, floor).Err(); err != nil {
		return fmt.Errorf("sequence seed %q: %w", prefix, err)
	}
	return nil
}

// Peek returns the suffix the next allocation would produce without consuming it.
func (a *SequenceAllocator) Peek(ctx context.Context, prefix string) (int64, error) {
	cur, err := a.client.Get(ctx, a.key(prefix)).Int64()
	if err != nil {
		if err == redis.Nil {
			return 1, nil
		}
		return 0, fmt.Errorf("sequence peek %q: %w", prefix, err)
	}
	return cur + 1, nil
}
