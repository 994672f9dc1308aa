package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisMemo keeps recently fetched rates for a short TTL so bursts of
// conversions do not each call the provider.
type RedisMemo struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisMemo(client redis.UniversalClient, ttl time.Duration) *RedisMemo {
	return &RedisMemo{client: client, ttl: ttl}
}

func memoKey(pair string) string {
	return "coinmate:rate:" + pair
}

func (m *RedisMemo) Get(ctx context.Context, pair string) (decimal.Decimal, bool, error) {
	raw, err := m.client.Get(ctx, memoKey(pair)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, err
	}
	return rate, true, nil
}

func (m *RedisMemo) Set(ctx context.Context, pair string, rate decimal.Decimal) error {
	return m.client.Set(ctx, memoKey(pair), rate.String(), m.ttl).Err()
}

// ConnectRedis opens a client from a redis:// URL and checks it answers.
func ConnectRedis(ctx context.Context, redisURL string) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = 1 * time.Second
	opts.ReadTimeout = 400 * time.Millisecond
	opts.WriteTimeout = 400 * time.Millisecond
	opts.PoolTimeout = 750 * time.Millisecond
	opts.OnConnect = func(ctx context.Context, cn *redis.Conn) error {
		_ = cn.ClientSetName(ctx, "coinmate").Err()
		return nil
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
