package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skyfare/layby/config"
	"github.com/skyfare/layby/internal/domain"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	return c.getFlightList(ctx, flightsKey())
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	return c.setFlightList(ctx, flightsKey(), flights)
}

// GetSearch returns the cached result list for one search key, or nil on miss.
func (c *RedisCache) GetSearch(ctx context.Context, from, to string, day time.Time, passengers int) ([]domain.Flight, error) {
	return c.getFlightList(ctx, searchKey(from, to, day, passengers))
}

func (c *RedisCache) SetSearch(ctx context.Context, from, to string, day time.Time, passengers int, flights []domain.Flight) error {
	return c.setFlightList(ctx, searchKey(from, to, day, passengers), flights)
}

func (c *RedisCache) AcquireSeatLock(ctx context.Context, flightID int64, seat int, ttl time.Duration) (bool, error) {
	key := seatLockKey(flightID, seat)
	return c.client.SetNX(ctx, key, "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSeatLock(ctx context.Context, flightID int64, seat int) error {
	return c.client.Del(ctx, seatLockKey(flightID, seat)).Err()
}

func (c *RedisCache) getFlightList(ctx context.Context, key string) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) setFlightList(ctx context.Context, key string, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.flightsTTL).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func searchKey(from, to string, day time.Time, passengers int) string {
	return fmt.Sprintf("cache:search:%s:%s:%s:%d", from, to, day.Format("2006-01-02"), passengers)
}

func seatLockKey(flightID int64, seat int) string {
	return fmt.Sprintf("lock:flight:%d:seat:%d", flightID, seat)
}
