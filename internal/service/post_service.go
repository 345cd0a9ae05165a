package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"wayfare/internal/ai"
	"wayfare/internal/models"
	"wayfare/internal/observability"
	"wayfare/internal/repository"
)

// PostService provides travel post business logic.
type PostService struct {
	postRepo  repository.PostRepository
	profiles  *ProfileService
	enricher  ai.Enricher
	aiTimeout time.Duration
}

// NewPostService returns a new PostService. aiTimeout bounds each
// enrichment call.
func NewPostService(postRepo repository.PostRepository, profiles *ProfileService, enricher ai.Enricher, aiTimeout time.Duration) *PostService {
	return &PostService{
		postRepo:  postRepo,
		profiles:  profiles,
		enricher:  enricher,
		aiTimeout: aiTimeout,
	}
}

// CreatePost validates and stores a post. Enrichment metadata is attached at
// creation and immutable afterwards; an enrichment failure falls back to a
// fixed neutral payload rather than failing the post.
func (s *PostService) CreatePost(ctx context.Context, userID uint, post *models.TravelPost) (*models.TravelPost, error) {
	if post.Content == "" {
		return nil, models.NewValidationError("Post content is required")
	}
	if post.Destination.Name == "" {
		return nil, models.NewValidationError("Destination name is required")
	}
	if _, err := s.profiles.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	post.UserID = userID
	post.Status = models.PostStatusActive
	post.Enrichment = s.enrich(ctx, post.Content, post.Destination.Name)

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Stats are derived from posts, so every post mutation triggers a full
	// recompute rather than an increment.
	if err := s.profiles.RecomputeStats(ctx, userID); err != nil {
		slog.WarnContext(ctx, "failed to recompute stats after post create", "user_id", userID, "err", err)
	}
	return post, nil
}

// GetPost returns a post and counts the view.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.TravelPost, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.IncrementViews(ctx, id); err != nil {
		slog.WarnContext(ctx, "failed to count post view", "post_id", id, "err", err)
	}
	return post, nil
}

// ListByUser returns a user's active posts, newest first.
func (s *PostService) ListByUser(ctx context.Context, userID uint, limit int) ([]models.TravelPost, error) {
	return s.postRepo.ListByUser(ctx, userID, limit)
}

// ListRecent returns active posts from the last windowDays days, optionally
// restricted to a tag. Tags are stored as serialized lists, so the tag filter
// runs over the fetched window rather than in the query.
func (s *PostService) ListRecent(ctx context.Context, windowDays int, tag string, limit int) ([]models.TravelPost, error) {
	if windowDays <= 0 {
		windowDays = 30
	}
	since := time.Now().AddDate(0, 0, -windowDays)

	fetch := limit
	if tag != "" {
		// Over-fetch so a sparse tag can still fill the page.
		fetch = limit * 4
	}
	posts, err := s.postRepo.ListActiveSince(ctx, since, fetch)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return posts, nil
	}

	filtered := make([]models.TravelPost, 0, limit)
	for _, post := range posts {
		if hasTag(post.Tags, tag) {
			filtered = append(filtered, post)
			if len(filtered) == limit {
				break
			}
		}
	}
	return filtered, nil
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag, want) {
			return true
		}
	}
	return false
}

// ToggleLike flips the caller's like on a post and returns the new state.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.toggleReaction(ctx, userID, postID, models.ReactionLike)
}

// ToggleBookmark flips the caller's bookmark on a post and returns the new state.
func (s *PostService) ToggleBookmark(ctx context.Context, userID, postID uint) (bool, error) {
	return s.toggleReaction(ctx, userID, postID, models.ReactionBookmark)
}

func (s *PostService) toggleReaction(ctx context.Context, userID, postID uint, kind models.ReactionKind) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}
	active, err := s.postRepo.ToggleReaction(ctx, userID, postID, kind)
	if err != nil {
		return false, err
	}
	if kind == models.ReactionLike {
		// Likes feed the owner's travel score.
		if err := s.profiles.RecomputeStats(ctx, post.UserID); err != nil {
			slog.WarnContext(ctx, "failed to recompute stats after like toggle", "user_id", post.UserID, "err", err)
		}
	}
	return active, nil
}

// ArchivePost hides a post from feeds and recomputes the owner's stats.
func (s *PostService) ArchivePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only archive your own posts")
	}
	if err := s.postRepo.UpdateStatus(ctx, postID, models.PostStatusArchived); err != nil {
		return err
	}
	if err := s.profiles.RecomputeStats(ctx, userID); err != nil {
		slog.WarnContext(ctx, "failed to recompute stats after archive", "user_id", userID, "err", err)
	}
	return nil
}

func (s *PostService) enrich(ctx context.Context, content, destination string) models.Enrichment {
	ctx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	enrichment, err := s.enricher.Enrich(ctx, content, destination)
	if err != nil {
		observability.AICollaboratorErrors.WithLabelValues("enrichment").Inc()
		slog.WarnContext(ctx, "enrichment unavailable, using neutral default", "err", err)
		return ai.DefaultEnrichment()
	}
	return *enrichment
}
