package service

import (
	"context"
	"testing"
	"time"

	"wayfare/internal/cache"
	"wayfare/internal/models"
)

func destPost(name, country string, likes int, rating float64, tags ...string) models.TravelPost {
	return models.TravelPost{
		UserID:      2,
		Destination: models.Destination{Name: name, Country: country},
		Likes:       likes,
		Rating:      rating,
		Tags:        tags,
	}
}

func TestTrendingWindowIsThirtyDays(t *testing.T) {
	var gotSince time.Time
	repo := &stubPostRepo{
		listActiveSinceFn: func(_ context.Context, since time.Time, _ int) ([]models.TravelPost, error) {
			gotSince = since
			return nil, nil
		},
	}
	svc := NewTrendingService(repo, cache.NewTTLStore(time.Hour))

	svc.TrendingDestinations(context.Background())

	want := time.Now().Add(-30 * 24 * time.Hour)
	if gotSince.Before(want.Add(-time.Minute)) || gotSince.After(want.Add(time.Minute)) {
		t.Errorf("since = %v, want about 30 days ago", gotSince)
	}
}

func TestTrendingRanking(t *testing.T) {
	repo := &stubPostRepo{
		listActiveSinceFn: func(_ context.Context, _ time.Time, _ int) ([]models.TravelPost, error) {
			return []models.TravelPost{
				destPost("Rome", "Italy", 10, 4.0, "history"),
				destPost("Rome", "Italy", 10, 5.0),
				destPost("Lisbon", "Portugal", 30, 0, "food"),
				destPost("Porto", "Portugal", 25, 3.0),
				destPost("Porto", "Portugal", 0, 0),
				// Same likes as Rome's total but fewer posts: ranks below.
				destPost("Kyoto", "Japan", 20, 0),
			}, nil
		},
	}
	svc := NewTrendingService(repo, cache.NewTTLStore(time.Hour))

	list := svc.TrendingDestinations(context.Background())
	if len(list) != 4 {
		t.Fatalf("got %d destinations, want 4", len(list))
	}

	order := []string{"Lisbon", "Porto", "Rome", "Kyoto"}
	for i, want := range order {
		if list[i].Destination != want {
			t.Fatalf("position %d = %s, want %s (full order %v)", i, list[i].Destination, want, list)
		}
	}

	rome := list[2]
	if rome.PostCount != 2 || rome.TotalLikes != 20 {
		t.Errorf("Rome aggregate = %d posts %d likes, want 2 and 20", rome.PostCount, rome.TotalLikes)
	}
	// Average only over rated posts.
	if rome.AvgRating != 4.5 {
		t.Errorf("Rome AvgRating = %v, want 4.5", rome.AvgRating)
	}
	if len(rome.Tags) != 1 || rome.Tags[0] != "history" {
		t.Errorf("Rome tags = %v, want [history]", rome.Tags)
	}

	porto := list[1]
	if porto.AvgRating != 3.0 {
		t.Errorf("Porto AvgRating = %v, want 3.0 (unrated post excluded)", porto.AvgRating)
	}
}

func TestTrendingCap(t *testing.T) {
	repo := &stubPostRepo{
		listActiveSinceFn: func(_ context.Context, _ time.Time, _ int) ([]models.TravelPost, error) {
			posts := make([]models.TravelPost, 0, 15)
			for i := 0; i < 15; i++ {
				posts = append(posts, destPost(string(rune('A'+i)), "X", i, 0))
			}
			return posts, nil
		},
	}
	svc := NewTrendingService(repo, cache.NewTTLStore(time.Hour))

	list := svc.TrendingDestinations(context.Background())
	if len(list) != 10 {
		t.Errorf("got %d destinations, want the cap of 10", len(list))
	}
}

func TestTrendingCachesAndClears(t *testing.T) {
	calls := 0
	repo := &stubPostRepo{
		listActiveSinceFn: func(_ context.Context, _ time.Time, _ int) ([]models.TravelPost, error) {
			calls++
			return []models.TravelPost{destPost("Rome", "Italy", 1, 0)}, nil
		},
	}
	svc := NewTrendingService(repo, cache.NewTTLStore(time.Hour))

	svc.TrendingDestinations(context.Background())
	svc.TrendingDestinations(context.Background())
	if calls != 1 {
		t.Errorf("aggregation ran %d times, want 1", calls)
	}

	svc.ClearCache()
	svc.ClearCache() // clearing an empty cache is a no-op
	svc.TrendingDestinations(context.Background())
	if calls != 2 {
		t.Errorf("aggregation ran %d times after clear, want 2", calls)
	}
}

func TestTrendingDegradesToEmptyOnError(t *testing.T) {
	repo := &stubPostRepo{
		listActiveSinceFn: func(_ context.Context, _ time.Time, _ int) ([]models.TravelPost, error) {
			return nil, models.NewInternalError(context.DeadlineExceeded)
		},
	}
	svc := NewTrendingService(repo, cache.NewTTLStore(time.Hour))

	list := svc.TrendingDestinations(context.Background())
	if list == nil || len(list) != 0 {
		t.Errorf("list = %v, want empty non-nil", list)
	}
}

func TestTrendingIgnoresUnnamedDestinations(t *testing.T) {
	repo := &stubPostRepo{
		listActiveSinceFn: func(_ context.Context, _ time.Time, _ int) ([]models.TravelPost, error) {
			return []models.TravelPost{
				destPost("", "", 50, 0),
				destPost("Rome", "Italy", 1, 0),
			}, nil
		},
	}
	svc := NewTrendingService(repo, cache.NewTTLStore(time.Hour))

	list := svc.TrendingDestinations(context.Background())
	if len(list) != 1 || list[0].Destination != "Rome" {
		t.Errorf("list = %v, want only Rome", list)
	}
}
