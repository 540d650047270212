package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/cinemabooking/config"
	"github.com/Domenick1991/cinemabooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		catalogTTL: catalogTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetMovies returns (nil, nil) on a cache miss.
func (c *RedisCache) GetMovies(ctx context.Context) ([]domain.Movie, error) {
	var movies []domain.Movie
	if ok, err := c.getJSON(ctx, moviesKey(), &movies); err != nil || !ok {
		return nil, err
	}
	return movies, nil
}

func (c *RedisCache) SetMovies(ctx context.Context, movies []domain.Movie) error {
	return c.setJSON(ctx, moviesKey(), movies)
}

func (c *RedisCache) InvalidateMovies(ctx context.Context) error {
	return c.client.Del(ctx, moviesKey()).Err()
}

func (c *RedisCache) GetFoods(ctx context.Context) ([]domain.Food, error) {
	var foods []domain.Food
	if ok, err := c.getJSON(ctx, foodsKey(), &foods); err != nil || !ok {
		return nil, err
	}
	return foods, nil
}

func (c *RedisCache) SetFoods(ctx context.Context, foods []domain.Food) error {
	return c.setJSON(ctx, foodsKey(), foods)
}

func (c *RedisCache) InvalidateFoods(ctx context.Context) error {
	return c.client.Del(ctx, foodsKey()).Err()
}

func (c *RedisCache) AcquireSeatLock(ctx context.Context, movieID int64, showtime time.Time, seat string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatLockKey(movieID, showtime, seat), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSeatLock(ctx context.Context, movieID int64, showtime time.Time, seat string) error {
	return c.client.Del(ctx, seatLockKey(movieID, showtime, seat)).Err()
}

// PublishBuddy sends payload as JSON to the channel of one buddy request.
func (c *RedisCache) PublishBuddy(ctx context.Context, requestID int64, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, BuddyChannel(requestID), data).Err()
}

// SubscribeBuddy subscribes to the channel of one buddy request and waits for
// the server to confirm, so anything published after it returns is delivered.
// The caller must Close the returned PubSub.
func (c *RedisCache) SubscribeBuddy(ctx context.Context, requestID int64) (*redis.PubSub, error) {
	pubsub := c.client.Subscribe(ctx, BuddyChannel(requestID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", BuddyChannel(requestID), err)
	}
	return pubsub, nil
}

func (c *RedisCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.catalogTTL).Err()
}

func moviesKey() string {
	return "cache:movies"
}

func foodsKey() string {
	return "cache:foods"
}

func seatLockKey(movieID int64, showtime time.Time, seat string) string {
	return fmt.Sprintf("lock:movie:%d:show:%d:seat:%s", movieID, showtime.Unix(), seat)
}

func BuddyChannel(requestID int64) string {
	return fmt.Sprintf("buddy:%d", requestID)
}
