package repository

import (
	"context"
	"fmt"
	"testing"

	"wayfare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createProfile(t *testing.T, repo ProfileRepository, userID uint, override func(*models.UserProfile)) *models.UserProfile {
	t.Helper()
	profile := &models.UserProfile{
		UserID:      userID,
		Handle:      fmt.Sprintf("traveler%d", userID),
		DisplayName: "Traveler",
		HomeCountry: "Portugal",
	}
	if override != nil {
		override(profile)
	}
	require.NoError(t, repo.Create(context.Background(), profile))
	return profile
}

func TestProfileRepositoryLookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	created := createProfile(t, repo, 1, nil)

	byUser, err := repo.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUser.ID)

	byHandle, err := repo.GetByHandle(ctx, "traveler1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byHandle.ID)

	_, err = repo.GetByUserID(ctx, 99)
	assert.Equal(t, models.CodeNotFound, appCode(t, err))
}

func TestUpdateStatsWritesZeroValues(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	createProfile(t, repo, 1, func(p *models.UserProfile) {
		p.Stats = models.ProfileStats{PostCount: 5, TravelScore: 300}
	})

	require.NoError(t, repo.UpdateStats(ctx, 1, models.ProfileStats{
		PostCount:        0,
		TravelScore:      0,
		VisitedCountries: []string{"Japan", "Portugal"},
	}))

	got, err := repo.GetByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stats.PostCount)
	assert.Equal(t, 0, got.Stats.TravelScore)
	assert.Equal(t, []string{"Japan", "Portugal"}, got.Stats.VisitedCountries)
}

func TestListCandidatesExcludesSelfAndPrivate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	createProfile(t, repo, 1, nil)
	visible := createProfile(t, repo, 2, func(p *models.UserProfile) {
		p.Stats.TravelScore = 100
	})
	createProfile(t, repo, 3, func(p *models.UserProfile) {
		p.IsPrivate = true
	})

	candidates, err := repo.ListCandidates(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, visible.ID, candidates[0].ID)
}

func TestListByMinScore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	createProfile(t, repo, 2, func(p *models.UserProfile) { p.Stats.TravelScore = 800 })
	createProfile(t, repo, 3, func(p *models.UserProfile) { p.Stats.TravelScore = 200 })
	createProfile(t, repo, 4, func(p *models.UserProfile) { p.Stats.TravelScore = 1600 })

	profiles, err := repo.ListByMinScore(ctx, 500, 1, 10)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	// Ordered by travel score descending.
	assert.Equal(t, uint(4), profiles[0].UserID)
	assert.Equal(t, uint(2), profiles[1].UserID)
}
