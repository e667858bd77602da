package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/tweetfeed/internal/model"
	"github.com/sakif/tweetfeed/internal/pagination"
	"github.com/sakif/tweetfeed/internal/repository"
)

// DefaultTTL matches the feed's revalidation window.
const DefaultTTL = 30 * time.Second

const feedKeyPrefix = "tweetfeed:feed:"

// FeedRepository caches List results and passes every other call through.
// A cache fault is logged and the call falls through to the wrapped repository.
type FeedRepository struct {
	repository.TweetRepository
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

var _ repository.TweetRepository = (*FeedRepository)(nil)

func NewFeedRepository(next repository.TweetRepository, store Store, ttl time.Duration, logger *slog.Logger) *FeedRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FeedRepository{
		TweetRepository: next,
		store:           store,
		ttl:             ttl,
		logger:          logger,
	}
}

func feedKey(r pagination.Range) string {
	return fmt.Sprintf("%s%d:%d", feedKeyPrefix, r.Start, r.End)
}

func (c *FeedRepository) List(ctx context.Context, r pagination.Range) ([]model.Tweet, error) {
	key := feedKey(r)

	raw, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("feed cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		var tweets []model.Tweet
		if err := json.Unmarshal(raw, &tweets); err == nil {
			return tweets, nil
		}
		c.logger.Warn("discarding undecodable feed cache entry", slog.String("key", key))
	}

	tweets, err := c.TweetRepository.List(ctx, r)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(tweets); err == nil {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Warn("feed cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return tweets, nil
}
