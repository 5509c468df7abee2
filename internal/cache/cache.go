package cache

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"reportes-ciudadanos/internal/models"
)

const (
	statsKeyPrefix = "reportes:estadisticas:"
	generationKey  = "reportes:estadisticas:gen"
)

// StatsCache keeps the last computed statistics in Redis. It fails safe:
// a nil cache or an unreachable server behaves like a permanent miss.
//
// Entries are keyed by a generation counter that Invalidate increments, so a
// value computed before an invalidation is written under a generation that is
// never read again.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns nil when addr is empty, which disables caching.
func New(addr, password string, ttl time.Duration) *StatsCache {
	if addr == "" {
		return nil
	}
	return &StatsCache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		ttl:    ttl,
	}
}

func statsKey(gen int64) string {
	return statsKeyPrefix + strconv.FormatInt(gen, 10)
}

// Get returns the cached statistics of the current generation. The
// generation is returned on a miss too and must be handed back to Set; it is
// negative when the cache is unusable.
func (c *StatsCache) Get(ctx context.Context) (*models.Statistics, int64, bool) {
	if c == nil || c.client == nil {
		return nil, -1, false
	}

	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err == redis.Nil {
		gen = 0
	} else if err != nil {
		log.Printf("stats cache generation: %v", err)
		return nil, -1, false
	}

	raw, err := c.client.Get(ctx, statsKey(gen)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("stats cache get: %v", err)
		}
		return nil, gen, false
	}
	var stats models.Statistics
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, gen, false
	}
	return &stats, gen, true
}

// Set stores stats computed while gen was current.
func (c *StatsCache) Set(ctx context.Context, gen int64, stats models.Statistics) {
	if c == nil || c.client == nil || gen < 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsKey(gen), raw, c.ttl).Err(); err != nil {
		log.Printf("stats cache set: %v", err)
	}
}

// Invalidate starts a new generation after a write changed the counts.
func (c *StatsCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		log.Printf("stats cache invalidate: %v", err)
	}
}

func (c *StatsCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
