package repository

import (
	"context"
	"errors"
	"time"

	"wayfare/internal/models"

	"gorm.io/gorm"
)

// GroupRepository defines the interface for travel group data operations
type GroupRepository interface {
	Create(ctx context.Context, group *models.TravelGroup) error
	GetByID(ctx context.Context, id uint) (*models.TravelGroup, error)
	ListPublicNotJoined(ctx context.Context, userID uint, limit int) ([]models.TravelGroup, error)
	JoinedGroupIDs(ctx context.Context, userID uint) ([]uint, error)
	AddMember(ctx context.Context, groupID, userID uint, role models.GroupRole) error
	TouchActivity(ctx context.Context, groupID uint) error
}

// groupRepository implements GroupRepository
type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *models.TravelGroup) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.TravelGroup, error) {
	var group models.TravelGroup
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Group", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &group, nil
}

func (r *groupRepository) ListPublicNotJoined(ctx context.Context, userID uint, limit int) ([]models.TravelGroup, error) {
	var groups []models.TravelGroup
	if err := r.db.WithContext(ctx).
		Where("privacy = ?", models.GroupPrivacyPublic).
		Where("id NOT IN (?)", r.db.Model(&models.GroupMembership{}).
			Select("group_id").
			Where("user_id = ?", userID)).
		Order("last_activity_at DESC").
		Limit(limit).
		Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}

func (r *groupRepository) JoinedGroupIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// AddMember inserts a membership row and bumps member count and activity in
// one transaction. Adding an existing member is a no-op.
func (r *groupRepository) AddMember(ctx context.Context, groupID, userID uint, role models.GroupRole) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.GroupMembership
		err := tx.Where("group_id = ? AND user_id = ?", groupID, userID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		membership := models.GroupMembership{GroupID: groupID, UserID: userID, Role: role}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		return tx.Model(&models.TravelGroup{}).
			Where("id = ?", groupID).
			Updates(map[string]interface{}{
				"member_count":     gorm.Expr("member_count + 1"),
				"last_activity_at": time.Now(),
			}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) TouchActivity(ctx context.Context, groupID uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.TravelGroup{}).
		Where("id = ?", groupID).
		Update("last_activity_at", time.Now()).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
