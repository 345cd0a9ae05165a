package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix = "profile:%d"
	TripKeyPrefix    = "trip:%d"
	GroupKeyPrefix   = "group:%d"
)

const (
	ProfileTTL = 5 * time.Minute
	TripTTL    = 2 * time.Minute
	GroupTTL   = 10 * time.Minute
)

func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func TripKey(tripID uint) string {
	return fmt.Sprintf(TripKeyPrefix, tripID)
}

func GroupKey(groupID uint) string {
	return fmt.Sprintf(GroupKeyPrefix, groupID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, userID uint) {
	Invalidate(ctx, ProfileKey(userID))
}

func InvalidateTrip(ctx context.Context, tripID uint) {
	Invalidate(ctx, TripKey(tripID))
}

// GetJSON loads a cached JSON value into dest. Returns false on miss or when
// Redis is unavailable.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON stores a JSON-encoded value under key. Failures are ignored; the
// cache is advisory only.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, raw, ttl)
}
