package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "ratelimit:"

// RedisLimiter keeps the request log of each key in a Redis sorted set scored by request time,
// so every server instance shares the same window.
type RedisLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
	now       func() time.Time
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {

	return &RedisLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: defaultKeyPrefix,
		now:       time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {

	now := l.now()
	redisKey := l.keyPrefix + key
	member := uuid.NewString()
	windowStart := strconv.FormatInt(now.Add(-l.window).UnixMicro(), 10)

	var count *redis.IntCmd
	var oldest *redis.ZSliceCmd

	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {

		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", windowStart)
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMicro()), Member: member})
		count = pipe.ZCard(ctx, redisKey)
		oldest = pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
		pipe.PExpire(ctx, redisKey, l.window)

		return nil
	})
	if err != nil {
		return Result{}, err
	}

	hits := int(count.Val())
	if hits <= l.limit {
		return newResult(l.limit, hits, 0), nil
	}

	// rejected requests are not logged so a blocked client regains access once old hits expire
	if err := l.client.ZRem(ctx, redisKey, member).Err(); err != nil {
		return Result{}, err
	}

	var retryAfter time.Duration
	if first := oldest.Val(); len(first) > 0 {
		retryAfter = time.UnixMicro(int64(first[0].Score)).Add(l.window).Sub(now)
	}

	return newResult(l.limit, hits, retryAfter), nil
}
