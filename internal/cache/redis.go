package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/solflow/swap-gateway/internal/models"
)

const (
	recentSwapsKey  = "swaps:recent"
	swapChannel     = "swaps:confirmed"
	recentSwapsSize = 100
)

// RedisCache keeps a bounded list of the most recent confirmed swaps and
// fans them out over pub/sub.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Client exposes the underlying connection for components that share it,
// like the toggle store.
func (r *RedisCache) Client() *redis.Client {
	return r.client
}

func (r *RedisCache) AddRecentSwap(ctx context.Context, swap *models.SwapRecord) error {
	data, err := json.Marshal(swap)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, recentSwapsKey, data)
	pipe.LTrim(ctx, recentSwapsKey, 0, recentSwapsSize-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push recent swap: %w", err)
	}
	return nil
}

// GetRecentSwaps returns up to limit most recent swaps, newest first.
func (r *RedisCache) GetRecentSwaps(ctx context.Context, limit int64) ([]*models.SwapRecord, error) {
	if limit <= 0 || limit > recentSwapsSize {
		limit = recentSwapsSize
	}

	vals, err := r.client.LRange(ctx, recentSwapsKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent swaps: %w", err)
	}

	out := make([]*models.SwapRecord, 0, len(vals))
	for _, v := range vals {
		var rec models.SwapRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

// PublishSwap pushes the confirmed swap to live subscribers.
func (r *RedisCache) PublishSwap(ctx context.Context, swap *models.SwapRecord) error {
	data, err := json.Marshal(swap)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}
	return r.client.Publish(ctx, swapChannel, data).Err()
}

// Subscribe delivers confirmed swaps to the handler until the context ends.
func (r *RedisCache) Subscribe(ctx context.Context, handler func(*models.SwapRecord)) error {
	pubsub := r.client.Subscribe(ctx, swapChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var rec models.SwapRecord
			if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
				continue
			}
			handler(&rec)
		}
	}
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
