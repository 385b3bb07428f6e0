package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	PostKeyPrefix = "post:%s"
	// FirstFeedKey caches the anonymous first feed page only; that page takes
	// the overwhelming share of reads and has a single well-known key to
	// invalidate.
	FirstFeedKey = "posts:feed:first"
)

const (
	PostTTL = 30 * time.Minute
	FeedTTL = 1 * time.Minute
)

func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// Aside implements the cache-aside pattern: return the cached value when
// present, otherwise run fetch and store its result under key. A nil client
// or any cache failure degrades to fetch alone.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	if raw, err := client.Get(ctx, key).Bytes(); err == nil {
		if uerr := json.Unmarshal(raw, dest); uerr == nil {
			return nil
		}
	}

	if err := fetch(); err != nil {
		return err
	}

	if buf, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, buf, ttl)
	}
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateFeed(ctx context.Context) {
	Invalidate(ctx, FirstFeedKey)
}
