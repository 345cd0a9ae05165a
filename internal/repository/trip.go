package repository

import (
	"context"
	"errors"
	"time"

	"wayfare/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TripRepository defines the interface for group trip data operations
type TripRepository interface {
	Create(ctx context.Context, trip *models.GroupTrip) error
	GetByID(ctx context.Context, id uint) (*models.GroupTrip, error)
	ListByUser(ctx context.Context, userID uint) ([]models.GroupTrip, error)
	AddParticipant(ctx context.Context, tripID uint, participant *models.TripParticipant, newCapacity int) error
	SetParticipantStatus(ctx context.Context, tripID, userID uint, status models.ParticipantStatus, newCapacity int) error
	CreatePoll(ctx context.Context, poll *models.TripPoll) error
	ClosePoll(ctx context.Context, pollID uint) error
	UpsertVote(ctx context.Context, vote *models.TripPollVote) error
	AddMessage(ctx context.Context, message *models.TripMessage) error
	AddExpense(ctx context.Context, expense *models.TripExpense) error
	UpdatePhase(ctx context.Context, tripID uint, phase models.TripPhase) error
	UpdateSuggestions(ctx context.Context, tripID uint, suggestions models.TripSuggestions) error
}

// tripRepository implements TripRepository
type tripRepository struct {
	db *gorm.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *gorm.DB) TripRepository {
	return &tripRepository{db: db}
}

func (r *tripRepository) Create(ctx context.Context, trip *models.GroupTrip) error {
	if err := r.db.WithContext(ctx).Create(trip).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tripRepository) GetByID(ctx context.Context, id uint) (*models.GroupTrip, error) {
	var trip models.GroupTrip
	if err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("Polls", func(db *gorm.DB) *gorm.DB { return db.Order("trip_polls.id ASC") }).
		Preload("Polls.Votes").
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("trip_messages.id ASC") }).
		Preload("Expenses").
		First(&trip, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Trip", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &trip, nil
}

func (r *tripRepository) ListByUser(ctx context.Context, userID uint) ([]models.GroupTrip, error) {
	var trips []models.GroupTrip
	if err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?)", r.db.Model(&models.TripParticipant{}).
			Select("trip_id").
			Where("user_id = ? AND status != ?", userID, models.ParticipantDeclined)).
		Order("created_at DESC").
		Find(&trips).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return trips, nil
}

// AddParticipant appends a participant row and writes the recomputed capacity
// in one transaction, so no observer sees the two out of step.
func (r *tripRepository) AddParticipant(ctx context.Context, tripID uint, participant *models.TripParticipant, newCapacity int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(participant).Error; err != nil {
			return err
		}
		return tx.Model(&models.GroupTrip{}).
			Where("id = ?", tripID).
			Update("capacity_current", newCapacity).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tripRepository) SetParticipantStatus(ctx context.Context, tripID, userID uint, status models.ParticipantStatus, newCapacity int) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TripParticipant{}).
			Where("trip_id = ? AND user_id = ?", tripID, userID).
			Update("status", status).Error; err != nil {
			return err
		}
		return tx.Model(&models.GroupTrip{}).
			Where("id = ?", tripID).
			Update("capacity_current", newCapacity).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tripRepository) CreatePoll(ctx context.Context, poll *models.TripPoll) error {
	if err := r.db.WithContext(ctx).Create(poll).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tripRepository) ClosePoll(ctx context.Context, pollID uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.TripPoll{}).
		Where("id = ?", pollID).
		Update("is_active", false).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpsertVote records a vote with last-write-wins semantics: a second vote by
// the same user on the same poll replaces the first row.
func (r *tripRepository) UpsertVote(ctx context.Context, vote *models.TripPollVote) error {
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "poll_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"option":     vote.Option,
				"updated_at": time.Now(),
			}),
		}).
		Create(vote).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tripRepository) AddMessage(ctx context.Context, message *models.TripMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tripRepository) AddExpense(ctx context.Context, expense *models.TripExpense) error {
	if err := r.db.WithContext(ctx).Create(expense).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tripRepository) UpdatePhase(ctx context.Context, tripID uint, phase models.TripPhase) error {
	if err := r.db.WithContext(ctx).
		Model(&models.GroupTrip{}).
		Where("id = ?", tripID).
		Update("phase", phase).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tripRepository) UpdateSuggestions(ctx context.Context, tripID uint, suggestions models.TripSuggestions) error {
	// Struct-based update so the JSON serializer runs for the string lists.
	if err := r.db.WithContext(ctx).
		Model(&models.GroupTrip{}).
		Where("id = ?", tripID).
		Select("sugg_activities", "sugg_accommodation", "sugg_itinerary", "sugg_dining", "sugg_transportation").
		Updates(models.GroupTrip{Suggestions: suggestions}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
