package repository

import (
	"context"
	"errors"

	"wayfare/internal/models"

	"gorm.io/gorm"
)

// ConnectionRepository defines the interface for social graph edge operations
type ConnectionRepository interface {
	Upsert(ctx context.Context, conn *models.SocialConnection) (bool, error)
	Remove(ctx context.Context, followerID, followingID uint, connType models.ConnectionType) error
	Exists(ctx context.Context, followerID, followingID uint, connType models.ConnectionType) (bool, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	ListFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
}

// connectionRepository implements ConnectionRepository
type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

// Upsert creates the edge if absent. Returns true when a new edge was
// created, false when an identical edge already existed; the unique index on
// (follower, following, type) keeps the edge idempotent per ordered pair.
func (r *connectionRepository) Upsert(ctx context.Context, conn *models.SocialConnection) (bool, error) {
	var existing models.SocialConnection
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ? AND type = ?",
			conn.FollowerID, conn.FollowingID, conn.Type).
		First(&existing).Error
	if err == nil {
		*conn = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Create(conn).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return true, nil
}

func (r *connectionRepository) Remove(ctx context.Context, followerID, followingID uint, connType models.ConnectionType) error {
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ? AND type = ?", followerID, followingID, connType).
		Delete(&models.SocialConnection{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *connectionRepository) Exists(ctx context.Context, followerID, followingID uint, connType models.ConnectionType) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SocialConnection{}).
		Where("follower_id = ? AND following_id = ? AND type = ?", followerID, followingID, connType).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *connectionRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SocialConnection{}).
		Where("following_id = ? AND type = ?", userID, models.ConnectionFollow).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *connectionRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SocialConnection{}).
		Where("follower_id = ? AND type = ?", userID, models.ConnectionFollow).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *connectionRepository) ListFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.SocialConnection{}).
		Where("follower_id = ? AND type = ?", userID, models.ConnectionFollow).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
