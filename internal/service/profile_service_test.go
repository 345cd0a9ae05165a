package service

import (
	"context"
	"testing"

	"wayfare/internal/models"
)

func TestGetOrCreateMaterializesDefaultProfile(t *testing.T) {
	var created *models.UserProfile
	profileRepo := &stubProfileRepo{
		getByUserIDFn: func(_ context.Context, userID uint) (*models.UserProfile, error) {
			return nil, models.NewNotFoundError("Profile", userID)
		},
		createFn: func(_ context.Context, profile *models.UserProfile) error {
			created = profile
			return nil
		},
	}
	svc := NewProfileService(profileRepo, nil, nil, nil)

	profile, err := svc.GetOrCreate(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if created == nil {
		t.Fatal("default profile was not persisted")
	}
	if profile.UserID != 7 || profile.Handle != "traveler7" {
		t.Errorf("profile = %+v, want user 7 with handle traveler7", profile)
	}
}

func TestGetByHandleDoesNotMaterialize(t *testing.T) {
	profileRepo := &stubProfileRepo{
		getByHandleFn: func(_ context.Context, handle string) (*models.UserProfile, error) {
			if handle == "wanderer" {
				return &models.UserProfile{UserID: 3, Handle: "wanderer"}, nil
			}
			return nil, models.NewNotFoundError("Profile", handle)
		},
		createFn: func(_ context.Context, _ *models.UserProfile) error {
			t.Fatal("handle lookup must not create profiles")
			return nil
		},
	}
	svc := NewProfileService(profileRepo, nil, nil, nil)

	profile, err := svc.GetByHandle(context.Background(), "wanderer")
	if err != nil {
		t.Fatalf("GetByHandle: %v", err)
	}
	if profile.UserID != 3 {
		t.Errorf("UserID = %d, want 3", profile.UserID)
	}

	_, err = svc.GetByHandle(context.Background(), "nobody")
	assertAppCode(t, err, models.CodeNotFound)
}

func TestGetOrCreatePropagatesStoreErrors(t *testing.T) {
	profileRepo := &stubProfileRepo{
		getByUserIDFn: func(_ context.Context, _ uint) (*models.UserProfile, error) {
			return nil, models.NewInternalError(context.DeadlineExceeded)
		},
	}
	svc := NewProfileService(profileRepo, nil, nil, nil)

	_, err := svc.GetOrCreate(context.Background(), 7)
	assertAppCode(t, err, models.CodeInternal)
}

func TestRecomputeStatsFormula(t *testing.T) {
	profile := &models.UserProfile{UserID: 1, Handle: "ana"}
	var written models.ProfileStats
	writes := 0
	profileRepo := &stubProfileRepo{
		getByUserIDFn: func(_ context.Context, _ uint) (*models.UserProfile, error) {
			return profile, nil
		},
		updateStatsFn: func(_ context.Context, _ uint, stats models.ProfileStats) error {
			written = stats
			writes++
			return nil
		},
	}
	postRepo := &stubPostRepo{
		listByUserFn: func(_ context.Context, _ uint, _ int) ([]models.TravelPost, error) {
			return []models.TravelPost{{Likes: 30}, {Likes: 25}}, nil
		},
		distinctCountriesFn: func(_ context.Context, _ uint) ([]string, error) {
			return []string{"Portugal", "Japan"}, nil
		},
	}
	connRepo := &stubConnectionRepo{
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 4, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 9, nil },
	}
	svc := NewProfileService(profileRepo, postRepo, connRepo, nil)

	if err := svc.RecomputeStats(context.Background(), 1); err != nil {
		t.Fatalf("RecomputeStats: %v", err)
	}

	// 25 per post, 100 per distinct country, likes/10.
	if written.TravelScore != 25*2+100*2+55/10 {
		t.Errorf("TravelScore = %d, want 255", written.TravelScore)
	}
	if written.PostCount != 2 || written.FollowersCount != 4 || written.FollowingCount != 9 {
		t.Errorf("counts = %+v", written)
	}
	// Countries are stored sorted for stable comparisons.
	if len(written.VisitedCountries) != 2 || written.VisitedCountries[0] != "Japan" {
		t.Errorf("VisitedCountries = %v, want sorted [Japan Portugal]", written.VisitedCountries)
	}

	// Recomputing from unchanged data writes the same stats.
	first := written
	if err := svc.RecomputeStats(context.Background(), 1); err != nil {
		t.Fatalf("second RecomputeStats: %v", err)
	}
	if writes != 2 {
		t.Fatalf("writes = %d, want 2", writes)
	}
	if written.TravelScore != first.TravelScore || written.PostCount != first.PostCount {
		t.Errorf("recompute is not idempotent: %+v vs %+v", written, first)
	}
}

func TestRecomputeStatsClampsScore(t *testing.T) {
	profile := &models.UserProfile{UserID: 1}
	var written models.ProfileStats
	profileRepo := &stubProfileRepo{
		getByUserIDFn: func(_ context.Context, _ uint) (*models.UserProfile, error) {
			return profile, nil
		},
		updateStatsFn: func(_ context.Context, _ uint, stats models.ProfileStats) error {
			written = stats
			return nil
		},
	}
	postRepo := &stubPostRepo{
		listByUserFn: func(_ context.Context, _ uint, _ int) ([]models.TravelPost, error) {
			posts := make([]models.TravelPost, 500)
			return posts, nil
		},
		distinctCountriesFn: func(_ context.Context, _ uint) ([]string, error) {
			return []string{"A", "B", "C", "D", "E"}, nil
		},
	}
	connRepo := &stubConnectionRepo{
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
	svc := NewProfileService(profileRepo, postRepo, connRepo, nil)

	if err := svc.RecomputeStats(context.Background(), 1); err != nil {
		t.Fatalf("RecomputeStats: %v", err)
	}
	if written.TravelScore != maxTravelScore {
		t.Errorf("TravelScore = %d, want clamp at %d", written.TravelScore, maxTravelScore)
	}
}

func TestFollowSelf(t *testing.T) {
	svc := NewProfileService(&stubProfileRepo{}, nil, &stubConnectionRepo{}, nil)
	assertAppCode(t, svc.Follow(context.Background(), 1, 1), models.CodeValidation)
}

func TestFollowBlockedByTarget(t *testing.T) {
	profileRepo := profileRepoWithProfiles(map[uint]*models.UserProfile{2: {UserID: 2}})
	connRepo := &stubConnectionRepo{
		existsFn: func(_ context.Context, followerID, followingID uint, connType models.ConnectionType) (bool, error) {
			// Block check runs in the reverse direction.
			if followerID != 2 || followingID != 1 || connType != models.ConnectionBlock {
				t.Errorf("Exists(%d, %d, %s), want block check from 2 to 1", followerID, followingID, connType)
			}
			return true, nil
		},
		upsertFn: func(_ context.Context, _ *models.SocialConnection) (bool, error) {
			t.Fatal("Upsert must not run when the target blocked the follower")
			return false, nil
		},
	}
	svc := NewProfileService(profileRepo, nil, connRepo, nil)

	assertAppCode(t, svc.Follow(context.Background(), 1, 2), models.CodeForbidden)
}

func TestFollowIsIdempotent(t *testing.T) {
	profileRepo := profileRepoWithProfiles(map[uint]*models.UserProfile{
		1: {UserID: 1},
		2: {UserID: 2},
	})
	statWrites := 0
	profileRepo.updateStatsFn = func(_ context.Context, _ uint, _ models.ProfileStats) error {
		statWrites++
		return nil
	}
	upserts := 0
	connRepo := &stubConnectionRepo{
		existsFn: func(_ context.Context, _, _ uint, _ models.ConnectionType) (bool, error) {
			return false, nil
		},
		upsertFn: func(_ context.Context, conn *models.SocialConnection) (bool, error) {
			upserts++
			// First call creates the edge, the second finds it in place.
			return upserts == 1, nil
		},
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 1, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 1, nil },
	}
	svc := NewProfileService(profileRepo, nil, connRepo, nil)

	if err := svc.Follow(context.Background(), 1, 2); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	if err := svc.Follow(context.Background(), 1, 2); err != nil {
		t.Fatalf("re-Follow: %v", err)
	}
	if upserts != 2 {
		t.Errorf("upserts = %d, want 2", upserts)
	}
	// Count refresh runs only for the edge-creating call (both sides).
	if statWrites != 2 {
		t.Errorf("stat writes = %d, want 2", statWrites)
	}
}

func TestBlockRemovesFollowsBothWays(t *testing.T) {
	profileRepo := profileRepoWithProfiles(map[uint]*models.UserProfile{
		1: {UserID: 1},
		2: {UserID: 2},
	})
	profileRepo.updateStatsFn = func(_ context.Context, _ uint, _ models.ProfileStats) error {
		return nil
	}
	removed := make(map[[2]uint]bool)
	connRepo := &stubConnectionRepo{
		upsertFn: func(_ context.Context, conn *models.SocialConnection) (bool, error) {
			if conn.Type != models.ConnectionBlock {
				t.Errorf("upserted %s edge, want block", conn.Type)
			}
			return true, nil
		},
		removeFn: func(_ context.Context, followerID, followingID uint, connType models.ConnectionType) error {
			if connType == models.ConnectionFollow {
				removed[[2]uint{followerID, followingID}] = true
			}
			return nil
		},
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
	svc := NewProfileService(profileRepo, nil, connRepo, nil)

	if err := svc.Block(context.Background(), 1, 2); err != nil {
		t.Fatalf("Block: %v", err)
	}
	if !removed[[2]uint{1, 2}] || !removed[[2]uint{2, 1}] {
		t.Errorf("removed edges = %v, want both directions", removed)
	}
}
