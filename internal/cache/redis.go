package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/movie-recommender/internal/domain"
)

const (
	defaultTTL  = 10 * time.Minute
	trendingKey = "catalog:trending:week"
	// every catalog payload key matches this SCAN pattern
	catalogKeyPattern = "catalog:*"
)

// Cache stores catalog payloads in Redis. Discover results are not cached:
// their sort key is randomized per call.
type Cache struct {
	client      *redis.Client
	movieTTL    time.Duration
	trendingTTL time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{
		client:      client,
		movieTTL:    ttl * 6,
		trendingTTL: ttl,
	}
}

func movieKey(movieID int64) string {
	return fmt.Sprintf("catalog:movie:%d", movieID)
}

// Get movie details from cache; nil, nil on a miss
func (c *Cache) GetMovie(ctx context.Context, movieID int64) (*domain.Movie, error) {
	var m domain.Movie
	found, err := c.get(ctx, movieKey(movieID), &m)
	if err != nil || !found {
		return nil, err
	}
	return &m, nil
}

func (c *Cache) SetMovie(ctx context.Context, m *domain.Movie) error {
	return c.set(ctx, movieKey(m.ID), m, c.movieTTL)
}

// Get trending page from cache; nil, nil on a miss
func (c *Cache) GetTrending(ctx context.Context) (*domain.MoviePage, error) {
	var page domain.MoviePage
	found, err := c.get(ctx, trendingKey, &page)
	if err != nil || !found {
		return nil, err
	}
	return &page, nil
}

func (c *Cache) SetTrending(ctx context.Context, page *domain.MoviePage) error {
	return c.set(ctx, trendingKey, page, c.trendingTTL)
}

// ClearCatalog drops every cached catalog payload: movie details and the
// trending page.
func (c *Cache) ClearCatalog(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, catalogKeyPattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cache delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) get(ctx context.Context, key string, out any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(val, out); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
