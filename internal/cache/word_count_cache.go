package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	wordCountKeyPrefix = "words_count:"
	// WordCountTTL bounds how stale a cached word count may get after content changes
	WordCountTTL = time.Hour
)

// WordCounter counts quiz words up to a dialogue
type WordCounter interface {
	CountUpToDialogue(ctx context.Context, dialogueID int) (int, error)
}

// WordCountCache is a read-through cache in front of a WordCounter.
// Concurrent misses for the same dialogue share one source query.
// Without a Redis client it only collapses concurrent calls.
type WordCountCache struct {
	rdb    *redis.Client
	source WordCounter
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewWordCountCache creates a new word count cache
func NewWordCountCache(rdb *redis.Client, source WordCounter, logger *zap.Logger) *WordCountCache {
	return &WordCountCache{
		rdb:    rdb,
		source: source,
		ttl:    WordCountTTL,
		logger: logger,
	}
}

func wordCountKey(dialogueID int) string {
	return wordCountKeyPrefix + strconv.Itoa(dialogueID)
}

// CountUpToDialogue returns the cached count or loads it from the source.
// Redis failures are logged and never fail the call.
func (c *WordCountCache) CountUpToDialogue(ctx context.Context, dialogueID int) (int, error) {
	key := wordCountKey(dialogueID)

	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, key).Int()
		switch {
		case err == nil:
			return cached, nil
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("failed to read word count from cache", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		count, err := c.source.CountUpToDialogue(ctx, dialogueID)
		if err != nil {
			return 0, err
		}
		if c.rdb != nil {
			if err := c.rdb.Set(ctx, key, count, c.ttl).Err(); err != nil {
				c.logger.Warn("failed to store word count in cache", zap.String("key", key), zap.Error(err))
			}
		}
		return count, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count words up to dialogue %d: %w", dialogueID, err)
	}

	return v.(int), nil
}
