package repository

import (
	"context"
	"testing"
	"time"

	"wayfare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTrip(t *testing.T, repo TripRepository, creatorID uint) *models.GroupTrip {
	t.Helper()
	trip := &models.GroupTrip{
		CreatorID:       creatorID,
		Title:           "Surf week in Ericeira",
		Destination:     models.Destination{Name: "Ericeira", Country: "Portugal"},
		CapacityMin:     1,
		CapacityMax:     4,
		CapacityCurrent: 1,
		Phase:           models.TripPhasePlanning,
	}
	require.NoError(t, repo.Create(context.Background(), trip))
	require.NotZero(t, trip.ID)
	return trip
}

func TestTripRepositoryGetByIDPreloadsEverything(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepository(db)
	ctx := context.Background()

	trip := createTrip(t, repo, 1)
	require.NoError(t, repo.AddParticipant(ctx, trip.ID, &models.TripParticipant{
		TripID: trip.ID, UserID: 1,
		Status: models.ParticipantConfirmed, Role: models.TripRoleAdmin,
	}, 1))

	poll := &models.TripPoll{
		TripID:    trip.ID,
		CreatorID: 1,
		Question:  "Which hostel?",
		Options:   []string{"Selina", "Blue Buddha"},
		Deadline:  time.Now().Add(48 * time.Hour),
		IsActive:  true,
	}
	require.NoError(t, repo.CreatePoll(ctx, poll))
	require.NoError(t, repo.UpsertVote(ctx, &models.TripPollVote{PollID: poll.ID, UserID: 1, Option: "Selina"}))
	require.NoError(t, repo.AddMessage(ctx, &models.TripMessage{UID: "m-1", TripID: trip.ID, UserID: 1, Message: "who's in?"}))
	require.NoError(t, repo.AddExpense(ctx, &models.TripExpense{TripID: trip.ID, PayerID: 1, Description: "van rental", Amount: 240}))

	got, err := repo.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, got.Participants, 1)
	require.Len(t, got.Polls, 1)
	assert.Equal(t, []string{"Selina", "Blue Buddha"}, got.Polls[0].Options)
	assert.Len(t, got.Polls[0].Votes, 1)
	assert.Len(t, got.Messages, 1)
	assert.Len(t, got.Expenses, 1)
}

func TestTripRepositoryGetByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepository(db)

	_, err := repo.GetByID(context.Background(), 999)
	assert.Equal(t, models.CodeNotFound, appCode(t, err))
}

func TestAddParticipantWritesCapacityAtomically(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepository(db)
	ctx := context.Background()

	trip := createTrip(t, repo, 1)
	require.NoError(t, repo.AddParticipant(ctx, trip.ID, &models.TripParticipant{
		TripID: trip.ID, UserID: 2, Status: models.ParticipantPending, Role: models.TripRoleParticipant,
	}, 2))

	got, err := repo.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CapacityCurrent)
	assert.Len(t, got.Participants, 1)
}

func TestSetParticipantStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepository(db)
	ctx := context.Background()

	trip := createTrip(t, repo, 1)
	require.NoError(t, repo.AddParticipant(ctx, trip.ID, &models.TripParticipant{
		TripID: trip.ID, UserID: 2, Status: models.ParticipantPending,
	}, 2))

	require.NoError(t, repo.SetParticipantStatus(ctx, trip.ID, 2, models.ParticipantDeclined, 1))

	got, err := repo.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CapacityCurrent)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, models.ParticipantDeclined, got.Participants[0].Status)
}

func TestUpsertVoteLastWriteWins(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepository(db)
	ctx := context.Background()

	trip := createTrip(t, repo, 1)
	poll := &models.TripPoll{
		TripID: trip.ID, CreatorID: 1, Question: "Dates?",
		Options: []string{"June", "July"}, Deadline: time.Now().Add(time.Hour), IsActive: true,
	}
	require.NoError(t, repo.CreatePoll(ctx, poll))

	require.NoError(t, repo.UpsertVote(ctx, &models.TripPollVote{PollID: poll.ID, UserID: 5, Option: "June"}))
	require.NoError(t, repo.UpsertVote(ctx, &models.TripPollVote{PollID: poll.ID, UserID: 5, Option: "July"}))

	var votes []models.TripPollVote
	require.NoError(t, db.Where("poll_id = ?", poll.ID).Find(&votes).Error)
	require.Len(t, votes, 1)
	assert.Equal(t, "July", votes[0].Option)
}

func TestClosePoll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepository(db)
	ctx := context.Background()

	trip := createTrip(t, repo, 1)
	poll := &models.TripPoll{
		TripID: trip.ID, CreatorID: 1, Question: "Dates?",
		Options: []string{"June", "July"}, Deadline: time.Now().Add(time.Hour), IsActive: true,
	}
	require.NoError(t, repo.CreatePoll(ctx, poll))

	require.NoError(t, repo.ClosePoll(ctx, poll.ID))

	got, err := repo.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, got.Polls, 1)
	assert.False(t, got.Polls[0].IsActive)
}

func TestUpdatePhaseAndSuggestions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepository(db)
	ctx := context.Background()

	trip := createTrip(t, repo, 1)
	require.NoError(t, repo.UpdatePhase(ctx, trip.ID, models.TripPhaseBooking))
	require.NoError(t, repo.UpdateSuggestions(ctx, trip.ID, models.TripSuggestions{
		Activities: []string{"surf lesson"},
		Dining:     []string{"Mar das Latas"},
	}))

	got, err := repo.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TripPhaseBooking, got.Phase)
	assert.Equal(t, []string{"surf lesson"}, got.Suggestions.Activities)
	assert.Equal(t, []string{"Mar das Latas"}, got.Suggestions.Dining)
}

func TestListByUserSkipsDeclined(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepository(db)
	ctx := context.Background()

	joined := createTrip(t, repo, 1)
	declined := createTrip(t, repo, 1)
	require.NoError(t, repo.AddParticipant(ctx, joined.ID, &models.TripParticipant{
		TripID: joined.ID, UserID: 7, Status: models.ParticipantConfirmed,
	}, 2))
	require.NoError(t, repo.AddParticipant(ctx, declined.ID, &models.TripParticipant{
		TripID: declined.ID, UserID: 7, Status: models.ParticipantDeclined,
	}, 1))

	trips, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, joined.ID, trips[0].ID)
}
