package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memodeck/memodeck-progression/internal/domain/session"
	"github.com/memodeck/memodeck-progression/pkg/logger"
	"github.com/memodeck/memodeck-progression/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY CACHE
// Short-TTL cache for the day's activity aggregate. Within a day the
// aggregate only grows, so a stale hit can only under-report progress; it can
// never show a challenge as complete that a claim would reject. The claim
// path invalidates the key after a payout so the claimed flag shows up on the
// next poll.
// ══════════════════════════════════════════════════════════════════════════════

// cachedActivity is the wire form of a day aggregate. Divergences are not
// cached; they are a logging concern of the uncached read.
type cachedActivity struct {
	CorrectAnswers int `json:"correct_answers"`
	SecondsStudied int `json:"seconds_studied"`
}

// ActivityCache caches day-activity aggregates per user.
type ActivityCache struct {
	client *Client
	ttl    time.Duration
	loc    *time.Location
	log    *logger.Logger
}

// NewActivityCache creates a new ActivityCache.
func NewActivityCache(client *Client, ttl time.Duration, loc *time.Location, log *logger.Logger) *ActivityCache {
	if log == nil {
		log = logger.Default()
	}
	return &ActivityCache{
		client: client,
		ttl:    ttl,
		loc:    timeutil.In(loc),
		log:    log.With(logger.Component("activity_cache")),
	}
}

// GetDayActivity returns the cached aggregate for the user-day, if present.
// Any Redis failure is a cache miss, never an error for the caller.
func (c *ActivityCache) GetDayActivity(ctx context.Context, userID string, day time.Time) (*session.DayActivity, bool) {
	key := activityKey(userID, timeutil.StartOfDay(day, c.loc))

	raw, err := c.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("activity cache read failed", logger.Err(err))
		}
		return nil, false
	}

	var cached cachedActivity
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.log.Warn("activity cache entry corrupt, dropping", logger.UserID(userID), logger.Err(err))
		c.client.rdb.Del(ctx, key)
		return nil, false
	}

	return &session.DayActivity{
		CorrectAnswers: cached.CorrectAnswers,
		SecondsStudied: cached.SecondsStudied,
	}, true
}

// SetDayActivity stores the aggregate with the configured TTL. Failures are
// logged and ignored; the cache is an optimization, not a dependency.
func (c *ActivityCache) SetDayActivity(ctx context.Context, userID string, day time.Time, activity session.DayActivity) {
	key := activityKey(userID, timeutil.StartOfDay(day, c.loc))

	raw, err := json.Marshal(cachedActivity{
		CorrectAnswers: activity.CorrectAnswers,
		SecondsStudied: activity.SecondsStudied,
	})
	if err != nil {
		return
	}

	if err := c.client.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Debug("activity cache write failed", logger.Err(err))
	}
}

// InvalidateDay drops the cached aggregate for the user-day.
func (c *ActivityCache) InvalidateDay(ctx context.Context, userID string, day time.Time) {
	key := activityKey(userID, timeutil.StartOfDay(day, c.loc))
	if err := c.client.rdb.Del(ctx, key).Err(); err != nil {
		c.log.Debug("activity cache invalidation failed", logger.Err(err))
	}
}
