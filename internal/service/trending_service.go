package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"wayfare/internal/cache"
	"wayfare/internal/repository"
)

const (
	trendingWindow   = 30 * 24 * time.Hour
	trendingCap      = 10
	trendingCacheKey = "trending:destinations"
)

// TrendingDestination is one row of the trending ranking.
type TrendingDestination struct {
	Destination string   `json:"destination"`
	Country     string   `json:"country"`
	PostCount   int      `json:"post_count"`
	TotalLikes  int      `json:"total_likes"`
	AvgRating   float64  `json:"avg_rating"`
	Tags        []string `json:"tags,omitempty"`
}

// TrendingService aggregates engagement over the trailing window into a
// ranked destination list. It is advisory: data-access failures produce an
// empty list, never an error to the caller.
type TrendingService struct {
	postRepo repository.PostRepository
	store    *cache.TTLStore
}

// NewTrendingService returns a new TrendingService caching results in store.
func NewTrendingService(postRepo repository.PostRepository, store *cache.TTLStore) *TrendingService {
	return &TrendingService{
		postRepo: postRepo,
		store:    store,
	}
}

// TrendingDestinations returns the ranked trending list, served from the
// cache while the entry is fresh.
func (s *TrendingService) TrendingDestinations(ctx context.Context) []TrendingDestination {
	if cached, ok := s.store.Get(trendingCacheKey); ok {
		if list, ok := cached.([]TrendingDestination); ok {
			return list
		}
	}

	list := s.aggregate(ctx)
	s.store.Set(trendingCacheKey, list)
	return list
}

// ClearCache drops the cached ranking so the next read recomputes.
func (s *TrendingService) ClearCache() {
	s.store.Clear()
}

// CacheStats exposes the trending cache counters.
func (s *TrendingService) CacheStats() cache.Stats {
	return s.store.Stats()
}

func (s *TrendingService) aggregate(ctx context.Context) []TrendingDestination {
	since := time.Now().Add(-trendingWindow)
	posts, err := s.postRepo.ListActiveSince(ctx, since, 0)
	if err != nil {
		slog.WarnContext(ctx, "trending aggregation failed, returning empty list", "err", err)
		return []TrendingDestination{}
	}

	type bucket struct {
		dest        TrendingDestination
		ratingSum   float64
		ratingCount int
		tags        map[string]struct{}
	}
	buckets := make(map[string]*bucket)

	for i := range posts {
		post := &posts[i]
		name := post.Destination.Name
		if name == "" {
			continue
		}
		b, ok := buckets[name]
		if !ok {
			b = &bucket{
				dest: TrendingDestination{
					Destination: name,
					Country:     post.Destination.Country,
				},
				tags: make(map[string]struct{}),
			}
			buckets[name] = b
		}
		b.dest.PostCount++
		b.dest.TotalLikes += post.Likes
		if post.Rating > 0 {
			b.ratingSum += post.Rating
			b.ratingCount++
		}
		for _, tag := range post.Tags {
			b.tags[tag] = struct{}{}
		}
		for _, topic := range post.Enrichment.Topics {
			b.tags[topic] = struct{}{}
		}
	}

	list := make([]TrendingDestination, 0, len(buckets))
	for _, b := range buckets {
		if b.ratingCount > 0 {
			b.dest.AvgRating = b.ratingSum / float64(b.ratingCount)
		}
		for tag := range b.tags {
			b.dest.Tags = append(b.dest.Tags, tag)
		}
		sort.Strings(b.dest.Tags)
		list = append(list, b.dest)
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].TotalLikes != list[j].TotalLikes {
			return list[i].TotalLikes > list[j].TotalLikes
		}
		return list[i].PostCount > list[j].PostCount
	})

	if len(list) > trendingCap {
		list = list[:trendingCap]
	}
	return list
}
