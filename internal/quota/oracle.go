package quota

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"messaging-service/internal/apperrors"
)

// SentCounter is the fallback counter used when Redis is unavailable.
type SentCounter interface {
	CountSentToday(ctx context.Context, senderID, recipientID int) (int, error)
}

// Claim records where a consumed slot was counted, so a refund undoes
// exactly that record. The zero Claim refunds nothing.
type Claim struct {
	key      string
	viaRedis bool
}

// Oracle is the authoritative per-(sender, recipient) daily quota.
type Oracle interface {
	Limit() int
	// Remaining returns how many messages the sender may still send to
	// the recipient today.
	Remaining(ctx context.Context, senderID, recipientID int) (int, error)
	// Consume claims one slot atomically and returns the remaining
	// count after the claim. Returns apperrors.ErrRateLimited when the
	// quota is exhausted.
	Consume(ctx context.Context, senderID, recipientID int) (int, Claim, error)
	// Refund returns a slot claimed by Consume, for the case where the
	// message insert fails afterwards. Best effort.
	Refund(ctx context.Context, claim Claim)
}

// RedisOracle counts sends in Redis with keys scoped to the UTC day.
// When Redis is down it degrades to counting today's rows in the
// message store.
type RedisOracle struct {
	client   redis.Cmdable
	fallback SentCounter
	limit    int
	now      func() time.Time
}

// NewRedisOracle constructs a RedisOracle. client may be nil, in which
// case every call uses the fallback counter.
func NewRedisOracle(client redis.Cmdable, fallback SentCounter, limit int) *RedisOracle {
	return &RedisOracle{client: client, fallback: fallback, limit: limit, now: time.Now}
}

// Limit returns the configured daily cap.
func (o *RedisOracle) Limit() int {
	return o.limit
}

func dayKey(senderID, recipientID int, now time.Time) string {
	return fmt.Sprintf("quota:%d:%d:%s", senderID, recipientID, now.UTC().Format("2006-01-02"))
}

func nextUTCMidnight(now time.Time) time.Time {
	day := now.UTC().Truncate(24 * time.Hour)
	return day.Add(24 * time.Hour)
}

// Remaining reports the slots left today for the pair.
func (o *RedisOracle) Remaining(ctx context.Context, senderID, recipientID int) (int, error) {
	if o.client != nil {
		sent, err := o.client.Get(ctx, dayKey(senderID, recipientID, o.now())).Int()
		if err == nil {
			return clamp(o.limit - sent), nil
		}
		if errors.Is(err, redis.Nil) {
			return o.limit, nil
		}
		log.Printf("quota redis read failed, using fallback: %v", err)
	}
	sent, err := o.fallback.CountSentToday(ctx, senderID, recipientID)
	if err != nil {
		return 0, fmt.Errorf("quota fallback count: %w", err)
	}
	return clamp(o.limit - sent), nil
}

// Consume claims one slot. Two concurrent claims on the last slot
// resolve through the atomic INCR: only one sees a count within the
// limit.
func (o *RedisOracle) Consume(ctx context.Context, senderID, recipientID int) (int, Claim, error) {
	if o.client == nil {
		return o.consumeFallback(ctx, senderID, recipientID)
	}

	key := dayKey(senderID, recipientID, o.now())
	sent, err := o.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("quota redis incr failed, using fallback: %v", err)
		return o.consumeFallback(ctx, senderID, recipientID)
	}
	if sent == 1 {
		o.client.ExpireAt(ctx, key, nextUTCMidnight(o.now()))
	}
	if int(sent) > o.limit {
		o.client.Decr(ctx, key)
		return 0, Claim{}, apperrors.ErrRateLimited
	}
	return o.limit - int(sent), Claim{key: key, viaRedis: true}, nil
}

// consumeFallback counts in SQL. The claim it returns is not
// refundable: nothing was recorded in Redis, and the failed insert the
// refund would compensate for never changes the SQL count either.
func (o *RedisOracle) consumeFallback(ctx context.Context, senderID, recipientID int) (int, Claim, error) {
	sent, err := o.fallback.CountSentToday(ctx, senderID, recipientID)
	if err != nil {
		return 0, Claim{}, fmt.Errorf("quota fallback count: %w", err)
	}
	if sent >= o.limit {
		return 0, Claim{}, apperrors.ErrRateLimited
	}
	return o.limit - sent - 1, Claim{}, nil
}

// Refund undoes one claimed slot after a failed insert. Only claims
// recorded in Redis decrement; decrementing a key Consume never
// touched would mint an extra slot.
func (o *RedisOracle) Refund(ctx context.Context, claim Claim) {
	if o.client == nil || !claim.viaRedis {
		return
	}
	if err := o.client.Decr(ctx, claim.key).Err(); err != nil {
		log.Printf("quota refund failed: %v", err)
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
