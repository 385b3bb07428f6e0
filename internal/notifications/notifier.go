// Package notifications publishes engagement events to Redis channels for
// interested consumers (live feeds, moderation tooling). Publishing is
// fire-and-forget: the engagement core succeeds regardless of delivery.
package notifications

import (
	"context"
	"encoding/json"
	"time"

	"murmur/internal/observability"

	"github.com/redis/go-redis/v9"
)

// BroadcastChannel carries every engagement event.
const BroadcastChannel = "events:posts"

// Event types published on BroadcastChannel.
const (
	EventPostCreated = "post.created"
	EventLikeToggled = "post.like_toggled"
)

// Event is the wire shape of an engagement event.
type Event struct {
	Type       string    `json:"type"`
	PostID     string    `json:"postId"`
	AuthorID   string    `json:"authorId,omitempty"`
	Liked      *bool     `json:"liked,omitempty"`
	TotalLikes int64     `json:"totalLikes"`
	At         time.Time `json:"at"`
}

// Notifier publishes engagement events into Redis pub/sub.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishBroadcast sends an event to all subscribers of BroadcastChannel.
// A nil Redis client makes this a no-op.
func (n *Notifier) PublishBroadcast(ctx context.Context, event Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.rdb.Publish(ctx, BroadcastChannel, payload).Err(); err != nil {
		return err
	}
	observability.EngagementEventsTotal.WithLabelValues(event.Type).Inc()
	return nil
}
