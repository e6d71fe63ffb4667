// Package cache keeps read-through copies of crew suggestions and balancing results in Redis.
// Entries are tagged by (crew, week) and by week so workload writes can drop exactly the views
// they affect.
package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"crew-workers/internal/common/logger"
	"crew-workers/internal/crew/workload"
	"crew-workers/internal/models"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

const prefix = "crew:"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func New(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.ForComponent(log, "crew-cache"),
	}
}

// SuggestionKey changes whenever the job's requirements change.
func SuggestionKey(job *models.Job) string {
	raw, _ := json.Marshal(job)
	return fmt.Sprintf("%ssuggest:%s:%016x", prefix, job.ID, xxhash.Sum64(raw))
}

func BalanceKey(weekStart time.Time) string {
	return prefix + "balance:" + week(weekStart)
}

// CrewWeekTag groups every entry that depends on one crew member's week.
func CrewWeekTag(crewID string, weekStart time.Time) string {
	return fmt.Sprintf("%stag:%s|%s", prefix, crewID, week(weekStart))
}

// WeekTag groups entries that depend on a whole week, such as balancing results.
func WeekTag(weekStart time.Time) string {
	return prefix + "tag:week|" + week(weekStart)
}

func week(t time.Time) string {
	return workload.WeekStart(t).Format(models.DateLayout)
}

// GetJSON reports false with no error on a miss.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v under key and registers key with every tag in one transaction.
func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}, tags ...string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, c.ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, tag, key)
			pipe.Expire(ctx, tag, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Invalidate deletes every entry tagged with the crew member's week or with the week itself.
func (c *Cache) Invalidate(ctx context.Context, crewID string, weekStart time.Time) error {
	tags := []string{CrewWeekTag(crewID, weekStart), WeekTag(weekStart)}

	keys := make([]string, 0, len(tags))
	for _, tag := range tags {
		members, err := c.client.SMembers(ctx, tag).Result()
		if err != nil {
			return fmt.Errorf("cache members %s: %w", tag, err)
		}
		keys = append(keys, members...)
	}
	keys = append(keys, tags...)

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", crewID, err)
	}
	c.logger.Debug("cache invalidated", map[string]interface{}{
		"crewId":    crewID,
		"weekStart": week(weekStart),
		"keys":      len(keys),
	})
	return nil
}

// Fetch returns the cached value for key or calls load and caches its result under the tags
// tagsOf derives from it. Cache errors are logged and never fail the call. A nil cache always loads.
func Fetch[T any](ctx context.Context, c *Cache, key string, tagsOf func(*T) []string, load func(context.Context) (*T, error)) (*T, error) {
	if c == nil {
		return load(ctx)
	}

	var cached T
	hit, err := c.GetJSON(ctx, key, &cached)
	if err != nil {
		c.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	if hit {
		return &cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return nil, err
	}

	var tags []string
	if tagsOf != nil {
		tags = tagsOf(value)
	}
	if err := c.SetJSON(ctx, key, value, tags...); err != nil {
		c.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return value, nil
}
