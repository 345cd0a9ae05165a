package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"wayfare/internal/cache"
	"wayfare/internal/models"
	"wayfare/internal/notifications"
	"wayfare/internal/repository"
)

const maxTravelScore = 10000

// ProfileService provides profile and social graph business logic. Profiles
// are created lazily: any lookup for a user without one materializes a
// default profile instead of failing.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	postRepo    repository.PostRepository
	connRepo    repository.ConnectionRepository
	notifier    *notifications.Notifier
}

// NewProfileService returns a new ProfileService.
func NewProfileService(
	profileRepo repository.ProfileRepository,
	postRepo repository.PostRepository,
	connRepo repository.ConnectionRepository,
	notifier *notifications.Notifier,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		postRepo:    postRepo,
		connRepo:    connRepo,
		notifier:    notifier,
	}
}

// GetOrCreate returns the profile for userID, creating a default one on
// first access.
func (s *ProfileService) GetOrCreate(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var cached models.UserProfile
	if cache.GetJSON(ctx, cache.ProfileKey(userID), &cached) {
		return &cached, nil
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Code != models.CodeNotFound {
			return nil, err
		}
		profile = &models.UserProfile{
			UserID: userID,
			Handle: fmt.Sprintf("traveler%d", userID),
			Stats:  models.ProfileStats{VisitedCountries: []string{}},
		}
		if err := s.profileRepo.Create(ctx, profile); err != nil {
			return nil, err
		}
	}

	cache.SetJSON(ctx, cache.ProfileKey(userID), profile, cache.ProfileTTL)
	return profile, nil
}

// GetByHandle resolves a profile by its public handle. Unlike GetOrCreate
// there is nothing to materialize: an unknown handle is NotFound.
func (s *ProfileService) GetByHandle(ctx context.Context, handle string) (*models.UserProfile, error) {
	return s.profileRepo.GetByHandle(ctx, handle)
}

// UpdateProfile applies caller-editable fields. Derived stats are never
// writable through this path.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, update *models.UserProfile) (*models.UserProfile, error) {
	profile, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Handle != "" {
		profile.Handle = update.Handle
	}
	profile.DisplayName = update.DisplayName
	profile.Bio = update.Bio
	profile.HomeCountry = update.HomeCountry
	profile.Age = update.Age
	profile.Latitude = update.Latitude
	profile.Longitude = update.Longitude
	profile.Preferences = update.Preferences
	profile.IsPrivate = update.IsPrivate

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	cache.InvalidateProfile(ctx, userID)
	return profile, nil
}

// RecomputeStats rebuilds every derived stat from the user's full post set
// and connection counts. Recomputing twice from the same underlying data is
// idempotent, so concurrent recomputations are self-healing.
func (s *ProfileService) RecomputeStats(ctx context.Context, userID uint) error {
	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	posts, err := s.postRepo.ListByUser(ctx, userID, 0)
	if err != nil {
		return err
	}
	countries, err := s.postRepo.DistinctCountriesByUser(ctx, userID)
	if err != nil {
		return err
	}
	followers, err := s.connRepo.CountFollowers(ctx, userID)
	if err != nil {
		return err
	}
	following, err := s.connRepo.CountFollowing(ctx, userID)
	if err != nil {
		return err
	}

	sort.Strings(countries)
	totalLikes := 0
	for i := range posts {
		totalLikes += posts[i].Likes
	}

	score := 25*len(posts) + 100*len(countries) + totalLikes/10
	if score > maxTravelScore {
		score = maxTravelScore
	}

	stats := models.ProfileStats{
		FollowersCount:   int(followers),
		FollowingCount:   int(following),
		PostCount:        len(posts),
		TravelScore:      score,
		VisitedCountries: countries,
	}
	if err := s.profileRepo.UpdateStats(ctx, userID, stats); err != nil {
		return err
	}
	cache.InvalidateProfile(ctx, userID)
	return nil
}

// Follow creates a follow edge. Re-following is a no-op; the edge stays
// unique per ordered (follower, following) pair.
func (s *ProfileService) Follow(ctx context.Context, followerID, followingID uint) error {
	if followerID == followingID {
		return models.NewValidationError("Cannot follow yourself")
	}
	if _, err := s.GetOrCreate(ctx, followingID); err != nil {
		return err
	}

	blocked, err := s.connRepo.Exists(ctx, followingID, followerID, models.ConnectionBlock)
	if err != nil {
		return err
	}
	if blocked {
		return models.NewForbiddenError("Cannot follow this user")
	}

	conn := &models.SocialConnection{
		FollowerID:  followerID,
		FollowingID: followingID,
		Type:        models.ConnectionFollow,
	}
	created, err := s.connRepo.Upsert(ctx, conn)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	if err := s.refreshFollowCounts(ctx, followerID, followingID); err != nil {
		slog.WarnContext(ctx, "failed to refresh follow counts", "follower_id", followerID, "err", err)
	}
	s.notifier.Notify(ctx, []uint{followingID}, notifications.KindNewFollower,
		map[string]interface{}{"follower_id": followerID})
	return nil
}

// Unfollow removes the follow edge if present.
func (s *ProfileService) Unfollow(ctx context.Context, followerID, followingID uint) error {
	if err := s.connRepo.Remove(ctx, followerID, followingID, models.ConnectionFollow); err != nil {
		return err
	}
	if err := s.refreshFollowCounts(ctx, followerID, followingID); err != nil {
		slog.WarnContext(ctx, "failed to refresh follow counts", "follower_id", followerID, "err", err)
	}
	return nil
}

// Block creates a block edge and removes any follow in either direction.
func (s *ProfileService) Block(ctx context.Context, blockerID, blockedID uint) error {
	if blockerID == blockedID {
		return models.NewValidationError("Cannot block yourself")
	}
	conn := &models.SocialConnection{
		FollowerID:  blockerID,
		FollowingID: blockedID,
		Type:        models.ConnectionBlock,
	}
	if _, err := s.connRepo.Upsert(ctx, conn); err != nil {
		return err
	}
	if err := s.connRepo.Remove(ctx, blockerID, blockedID, models.ConnectionFollow); err != nil {
		return err
	}
	if err := s.connRepo.Remove(ctx, blockedID, blockerID, models.ConnectionFollow); err != nil {
		return err
	}
	return s.refreshFollowCounts(ctx, blockerID, blockedID)
}

func (s *ProfileService) refreshFollowCounts(ctx context.Context, userIDs ...uint) error {
	for _, id := range userIDs {
		profile, err := s.profileRepo.GetByUserID(ctx, id)
		if err != nil {
			return err
		}
		followers, err := s.connRepo.CountFollowers(ctx, id)
		if err != nil {
			return err
		}
		following, err := s.connRepo.CountFollowing(ctx, id)
		if err != nil {
			return err
		}
		profile.Stats.FollowersCount = int(followers)
		profile.Stats.FollowingCount = int(following)
		if err := s.profileRepo.UpdateStats(ctx, id, profile.Stats); err != nil {
			return err
		}
		cache.InvalidateProfile(ctx, id)
	}
	return nil
}
