package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkpost/blog-api/internal/core/domain"
)

const (
	feedKeyPrefix  = "blog:feed:posts:"
	feedGenKey     = "blog:feed:gen"
	defaultFeedTTL = time.Minute
)

// FeedCache stores the public post list as one JSON value per generation.
// Invalidate bumps the generation counter, so a list computed before a write
// lands under a key nobody reads anymore. The TTL reclaims old generations
// and bounds staleness if an invalidation is lost.
type FeedCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewFeedCache creates a FeedCache wrapping the given Redis client.
func NewFeedCache(client redis.Cmdable, ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = defaultFeedTTL
	}
	return &FeedCache{client: client, ttl: ttl}
}

func feedKey(gen int64) string {
	return feedKeyPrefix + strconv.FormatInt(gen, 10)
}

// Get reports ok=false on a cache miss. The returned generation is valid on
// a miss too and must be handed back to Set.
func (f *FeedCache) Get(ctx context.Context) ([]domain.Post, int64, bool, error) {
	gen, err := f.client.Get(ctx, feedGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("feed cache generation: %w", err)
	}

	raw, err := f.client.Get(ctx, feedKey(gen)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, gen, false, nil
		}
		return nil, 0, false, fmt.Errorf("feed cache get: %w", err)
	}

	var posts []domain.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, 0, false, fmt.Errorf("feed cache decode: %w", err)
	}
	return posts, gen, true, nil
}

func (f *FeedCache) Set(ctx context.Context, gen int64, posts []domain.Post) error {
	if posts == nil {
		posts = []domain.Post{}
	}
	raw, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("feed cache encode: %w", err)
	}
	if err := f.client.Set(ctx, feedKey(gen), raw, f.ttl).Err(); err != nil {
		return fmt.Errorf("feed cache set: %w", err)
	}
	return nil
}

func (f *FeedCache) Invalidate(ctx context.Context) error {
	if err := f.client.Incr(ctx, feedGenKey).Err(); err != nil {
		return fmt.Errorf("feed cache invalidate: %w", err)
	}
	return nil
}
