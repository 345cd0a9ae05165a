package repository

import (
	"context"
	"testing"
	"time"

	"wayfare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createGroup(t *testing.T, repo GroupRepository, name string, privacy models.GroupPrivacy) *models.TravelGroup {
	t.Helper()
	group := &models.TravelGroup{
		Name:           name,
		Category:       "adventure",
		Country:        "Portugal",
		Tags:           []string{"surfing"},
		Privacy:        privacy,
		LastActivityAt: time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), group))
	return group
}

func TestAddMemberBumpsCountOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	group := createGroup(t, repo, "Atlantic Surf Collective", models.GroupPrivacyPublic)

	require.NoError(t, repo.AddMember(ctx, group.ID, 1, models.GroupRoleMember))
	require.NoError(t, repo.AddMember(ctx, group.ID, 1, models.GroupRoleMember))

	got, err := repo.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MemberCount)

	ids, err := repo.JoinedGroupIDs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{group.ID}, ids)
}

func TestListPublicNotJoined(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGroupRepository(db)
	ctx := context.Background()

	joined := createGroup(t, repo, "Joined Group", models.GroupPrivacyPublic)
	open := createGroup(t, repo, "Open Group", models.GroupPrivacyPublic)
	createGroup(t, repo, "Private Group", models.GroupPrivacyPrivate)

	require.NoError(t, repo.AddMember(ctx, joined.ID, 1, models.GroupRoleMember))

	groups, err := repo.ListPublicNotJoined(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, open.ID, groups[0].ID)
}
