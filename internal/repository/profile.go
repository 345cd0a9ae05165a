// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"wayfare/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository defines the interface for user profile data operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.UserProfile) error
	GetByUserID(ctx context.Context, userID uint) (*models.UserProfile, error)
	GetByHandle(ctx context.Context, handle string) (*models.UserProfile, error)
	Update(ctx context.Context, profile *models.UserProfile) error
	UpdateStats(ctx context.Context, userID uint, stats models.ProfileStats) error
	ListCandidates(ctx context.Context, excludeUserID uint, limit int) ([]models.UserProfile, error)
	ListByMinScore(ctx context.Context, minScore int, excludeUserID uint, limit int) ([]models.UserProfile, error)
}

// profileRepository implements ProfileRepository
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile", userID)
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetByHandle(ctx context.Context, handle string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).Where("handle = ?", handle).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Profile", handle)
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateStats overwrites the derived stat columns for a user. Stats are
// always recomputed from source data before this call, so concurrent writers
// converge on the same values.
func (r *profileRepository) UpdateStats(ctx context.Context, userID uint, stats models.ProfileStats) error {
	// Struct-based update so the JSON serializer runs for VisitedCountries;
	// Select forces zero-valued counters through as well.
	if err := r.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("user_id = ?", userID).
		Select("stats_followers_count", "stats_following_count", "stats_post_count", "stats_travel_score", "stats_visited_countries").
		Updates(models.UserProfile{Stats: stats}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) ListCandidates(ctx context.Context, excludeUserID uint, limit int) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	if err := r.db.WithContext(ctx).
		Where("user_id != ? AND is_private = ?", excludeUserID, false).
		Order("stats_travel_score DESC").
		Limit(limit).
		Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

func (r *profileRepository) ListByMinScore(ctx context.Context, minScore int, excludeUserID uint, limit int) ([]models.UserProfile, error) {
	var profiles []models.UserProfile
	if err := r.db.WithContext(ctx).
		Where("user_id != ? AND is_private = ? AND stats_travel_score >= ?", excludeUserID, false, minScore).
		Order("stats_travel_score DESC").
		Limit(limit).
		Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}
