// Package notifications provides fire-and-forget notification publishing.
// The core only decides that a notification should fire; delivery transport
// is owned by downstream consumers of the Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Kind labels the notification payload.
type Kind string

const (
	// KindTripJoinRequest fires when a user requests to join a trip.
	KindTripJoinRequest Kind = "trip_join_request"
	// KindTripPollCreated fires when a poll is opened on a trip.
	KindTripPollCreated Kind = "trip_poll_created"
	// KindNewFollower fires when a user gains a follower.
	KindNewFollower Kind = "new_follower"
)

// Payload is the wire format published to notification channels.
type Payload struct {
	UID       string                 `json:"uid"`
	Kind      Kind                   `json:"kind"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"created_at"`
}

// Notifier publishes notifications into Redis channels. A nil client makes
// every publish a no-op, so the core never depends on Redis being up.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Notify publishes a payload to each recipient's channel. Errors are logged
// and dropped; delivery is best-effort by design.
func (n *Notifier) Notify(ctx context.Context, recipientIDs []uint, kind Kind, data map[string]interface{}) {
	if n == nil || n.rdb == nil || len(recipientIDs) == 0 {
		return
	}

	payload := Payload{
		UID:       uuid.NewString(),
		Kind:      kind,
		Data:      data,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.WarnContext(ctx, "failed to encode notification payload", "kind", kind, "err", err)
		return
	}

	for _, id := range recipientIDs {
		channel := fmt.Sprintf("notifications:user:%d", id)
		if err := n.rdb.Publish(ctx, channel, raw).Err(); err != nil {
			slog.WarnContext(ctx, "failed to publish notification", "kind", kind, "user_id", id, "err", err)
		}
	}
}
