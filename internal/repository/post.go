package repository

import (
	"context"
	"errors"
	"time"

	"wayfare/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for travel post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.TravelPost) error
	GetByID(ctx context.Context, id uint) (*models.TravelPost, error)
	UpdateStatus(ctx context.Context, id uint, status models.PostStatus) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.TravelPost, error)
	ListActiveByOthers(ctx context.Context, excludeUserID uint, limit int) ([]models.TravelPost, error)
	ListActiveSince(ctx context.Context, since time.Time, limit int) ([]models.TravelPost, error)
	DistinctCountriesByUser(ctx context.Context, userID uint) ([]string, error)
	ToggleReaction(ctx context.Context, userID, postID uint, kind models.ReactionKind) (bool, error)
	HasReaction(ctx context.Context, userID, postID uint, kind models.ReactionKind) (bool, error)
	IncrementViews(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.TravelPost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.TravelPost, error) {
	var post models.TravelPost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, id uint, status models.PostStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&models.TravelPost{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.TravelPost, error) {
	var posts []models.TravelPost
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.PostStatusActive).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListActiveByOthers(ctx context.Context, excludeUserID uint, limit int) ([]models.TravelPost, error) {
	var posts []models.TravelPost
	if err := r.db.WithContext(ctx).
		Where("user_id != ? AND status = ?", excludeUserID, models.PostStatusActive).
		Order("likes DESC, created_at DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListActiveSince(ctx context.Context, since time.Time, limit int) ([]models.TravelPost, error) {
	var posts []models.TravelPost
	q := r.db.WithContext(ctx).
		Where("status = ? AND created_at >= ?", models.PostStatusActive, since).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) DistinctCountriesByUser(ctx context.Context, userID uint) ([]string, error) {
	var countries []string
	if err := r.db.WithContext(ctx).
		Model(&models.TravelPost{}).
		Where("user_id = ? AND status = ? AND dest_country != ''", userID, models.PostStatusActive).
		Distinct("dest_country").
		Pluck("dest_country", &countries).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return countries, nil
}

// ToggleReaction flips the (user, post, kind) reaction row and adjusts the
// matching counter on the post in one transaction. Returns the new state.
func (r *postRepository) ToggleReaction(ctx context.Context, userID, postID uint, kind models.ReactionKind) (bool, error) {
	column := "likes"
	if kind == models.ReactionBookmark {
		column = "bookmarks"
	}

	var active bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.PostReaction
		err := tx.Where("user_id = ? AND post_id = ? AND kind = ?", userID, postID, kind).
			First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.TravelPost{}).
				Where("id = ? AND "+column+" > 0", postID).
				Update(column, gorm.Expr(column+" - 1")).Error; err != nil {
				return err
			}
			active = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			reaction := models.PostReaction{UserID: userID, PostID: postID, Kind: kind}
			if err := tx.Create(&reaction).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.TravelPost{}).
				Where("id = ?", postID).
				Update(column, gorm.Expr(column+" + 1")).Error; err != nil {
				return err
			}
			active = true
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return active, nil
}

func (r *postRepository) HasReaction(ctx context.Context, userID, postID uint, kind models.ReactionKind) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PostReaction{}).
		Where("user_id = ? AND post_id = ? AND kind = ?", userID, postID, kind).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.TravelPost{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
