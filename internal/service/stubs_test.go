package service

import (
	"context"
	"time"

	"wayfare/internal/ai"
	"wayfare/internal/models"
)

// Per-method function stubs. Tests assign only the methods they exercise;
// calling an unassigned method panics, which surfaces unexpected data access.

type stubProfileRepo struct {
	createFn         func(ctx context.Context, profile *models.UserProfile) error
	getByUserIDFn    func(ctx context.Context, userID uint) (*models.UserProfile, error)
	getByHandleFn    func(ctx context.Context, handle string) (*models.UserProfile, error)
	updateFn         func(ctx context.Context, profile *models.UserProfile) error
	updateStatsFn    func(ctx context.Context, userID uint, stats models.ProfileStats) error
	listCandidatesFn func(ctx context.Context, excludeUserID uint, limit int) ([]models.UserProfile, error)
	listByMinScoreFn func(ctx context.Context, minScore int, excludeUserID uint, limit int) ([]models.UserProfile, error)
}

func (s *stubProfileRepo) Create(ctx context.Context, profile *models.UserProfile) error {
	return s.createFn(ctx, profile)
}

func (s *stubProfileRepo) GetByUserID(ctx context.Context, userID uint) (*models.UserProfile, error) {
	return s.getByUserIDFn(ctx, userID)
}

func (s *stubProfileRepo) GetByHandle(ctx context.Context, handle string) (*models.UserProfile, error) {
	return s.getByHandleFn(ctx, handle)
}

func (s *stubProfileRepo) Update(ctx context.Context, profile *models.UserProfile) error {
	return s.updateFn(ctx, profile)
}

func (s *stubProfileRepo) UpdateStats(ctx context.Context, userID uint, stats models.ProfileStats) error {
	return s.updateStatsFn(ctx, userID, stats)
}

func (s *stubProfileRepo) ListCandidates(ctx context.Context, excludeUserID uint, limit int) ([]models.UserProfile, error) {
	return s.listCandidatesFn(ctx, excludeUserID, limit)
}

func (s *stubProfileRepo) ListByMinScore(ctx context.Context, minScore int, excludeUserID uint, limit int) ([]models.UserProfile, error) {
	return s.listByMinScoreFn(ctx, minScore, excludeUserID, limit)
}

type stubPostRepo struct {
	createFn              func(ctx context.Context, post *models.TravelPost) error
	getByIDFn             func(ctx context.Context, id uint) (*models.TravelPost, error)
	updateStatusFn        func(ctx context.Context, id uint, status models.PostStatus) error
	listByUserFn          func(ctx context.Context, userID uint, limit int) ([]models.TravelPost, error)
	listActiveByOthersFn  func(ctx context.Context, excludeUserID uint, limit int) ([]models.TravelPost, error)
	listActiveSinceFn     func(ctx context.Context, since time.Time, limit int) ([]models.TravelPost, error)
	distinctCountriesFn   func(ctx context.Context, userID uint) ([]string, error)
	toggleReactionFn      func(ctx context.Context, userID, postID uint, kind models.ReactionKind) (bool, error)
	hasReactionFn         func(ctx context.Context, userID, postID uint, kind models.ReactionKind) (bool, error)
	incrementViewsFn      func(ctx context.Context, id uint) error
}

func (s *stubPostRepo) Create(ctx context.Context, post *models.TravelPost) error {
	return s.createFn(ctx, post)
}

func (s *stubPostRepo) GetByID(ctx context.Context, id uint) (*models.TravelPost, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubPostRepo) UpdateStatus(ctx context.Context, id uint, status models.PostStatus) error {
	return s.updateStatusFn(ctx, id, status)
}

func (s *stubPostRepo) ListByUser(ctx context.Context, userID uint, limit int) ([]models.TravelPost, error) {
	return s.listByUserFn(ctx, userID, limit)
}

func (s *stubPostRepo) ListActiveByOthers(ctx context.Context, excludeUserID uint, limit int) ([]models.TravelPost, error) {
	return s.listActiveByOthersFn(ctx, excludeUserID, limit)
}

func (s *stubPostRepo) ListActiveSince(ctx context.Context, since time.Time, limit int) ([]models.TravelPost, error) {
	return s.listActiveSinceFn(ctx, since, limit)
}

func (s *stubPostRepo) DistinctCountriesByUser(ctx context.Context, userID uint) ([]string, error) {
	return s.distinctCountriesFn(ctx, userID)
}

func (s *stubPostRepo) ToggleReaction(ctx context.Context, userID, postID uint, kind models.ReactionKind) (bool, error) {
	return s.toggleReactionFn(ctx, userID, postID, kind)
}

func (s *stubPostRepo) HasReaction(ctx context.Context, userID, postID uint, kind models.ReactionKind) (bool, error) {
	return s.hasReactionFn(ctx, userID, postID, kind)
}

func (s *stubPostRepo) IncrementViews(ctx context.Context, id uint) error {
	return s.incrementViewsFn(ctx, id)
}

type stubConnectionRepo struct {
	upsertFn           func(ctx context.Context, conn *models.SocialConnection) (bool, error)
	removeFn           func(ctx context.Context, followerID, followingID uint, connType models.ConnectionType) error
	existsFn           func(ctx context.Context, followerID, followingID uint, connType models.ConnectionType) (bool, error)
	countFollowersFn   func(ctx context.Context, userID uint) (int64, error)
	countFollowingFn   func(ctx context.Context, userID uint) (int64, error)
	listFollowingIDsFn func(ctx context.Context, userID uint) ([]uint, error)
}

func (s *stubConnectionRepo) Upsert(ctx context.Context, conn *models.SocialConnection) (bool, error) {
	return s.upsertFn(ctx, conn)
}

func (s *stubConnectionRepo) Remove(ctx context.Context, followerID, followingID uint, connType models.ConnectionType) error {
	return s.removeFn(ctx, followerID, followingID, connType)
}

func (s *stubConnectionRepo) Exists(ctx context.Context, followerID, followingID uint, connType models.ConnectionType) (bool, error) {
	return s.existsFn(ctx, followerID, followingID, connType)
}

func (s *stubConnectionRepo) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}

func (s *stubConnectionRepo) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}

func (s *stubConnectionRepo) ListFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.listFollowingIDsFn(ctx, userID)
}

type stubGroupRepo struct {
	createFn              func(ctx context.Context, group *models.TravelGroup) error
	getByIDFn             func(ctx context.Context, id uint) (*models.TravelGroup, error)
	listPublicNotJoinedFn func(ctx context.Context, userID uint, limit int) ([]models.TravelGroup, error)
	joinedGroupIDsFn      func(ctx context.Context, userID uint) ([]uint, error)
	addMemberFn           func(ctx context.Context, groupID, userID uint, role models.GroupRole) error
	touchActivityFn       func(ctx context.Context, groupID uint) error
}

func (s *stubGroupRepo) Create(ctx context.Context, group *models.TravelGroup) error {
	return s.createFn(ctx, group)
}

func (s *stubGroupRepo) GetByID(ctx context.Context, id uint) (*models.TravelGroup, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubGroupRepo) ListPublicNotJoined(ctx context.Context, userID uint, limit int) ([]models.TravelGroup, error) {
	return s.listPublicNotJoinedFn(ctx, userID, limit)
}

func (s *stubGroupRepo) JoinedGroupIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.joinedGroupIDsFn(ctx, userID)
}

func (s *stubGroupRepo) AddMember(ctx context.Context, groupID, userID uint, role models.GroupRole) error {
	return s.addMemberFn(ctx, groupID, userID, role)
}

func (s *stubGroupRepo) TouchActivity(ctx context.Context, groupID uint) error {
	return s.touchActivityFn(ctx, groupID)
}

type stubTripRepo struct {
	createFn               func(ctx context.Context, trip *models.GroupTrip) error
	getByIDFn              func(ctx context.Context, id uint) (*models.GroupTrip, error)
	listByUserFn           func(ctx context.Context, userID uint) ([]models.GroupTrip, error)
	addParticipantFn       func(ctx context.Context, tripID uint, participant *models.TripParticipant, newCapacity int) error
	setParticipantStatusFn func(ctx context.Context, tripID, userID uint, status models.ParticipantStatus, newCapacity int) error
	createPollFn           func(ctx context.Context, poll *models.TripPoll) error
	closePollFn            func(ctx context.Context, pollID uint) error
	upsertVoteFn           func(ctx context.Context, vote *models.TripPollVote) error
	addMessageFn           func(ctx context.Context, message *models.TripMessage) error
	addExpenseFn           func(ctx context.Context, expense *models.TripExpense) error
	updatePhaseFn          func(ctx context.Context, tripID uint, phase models.TripPhase) error
	updateSuggestionsFn    func(ctx context.Context, tripID uint, suggestions models.TripSuggestions) error
}

func (s *stubTripRepo) Create(ctx context.Context, trip *models.GroupTrip) error {
	return s.createFn(ctx, trip)
}

func (s *stubTripRepo) GetByID(ctx context.Context, id uint) (*models.GroupTrip, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubTripRepo) ListByUser(ctx context.Context, userID uint) ([]models.GroupTrip, error) {
	return s.listByUserFn(ctx, userID)
}

func (s *stubTripRepo) AddParticipant(ctx context.Context, tripID uint, participant *models.TripParticipant, newCapacity int) error {
	return s.addParticipantFn(ctx, tripID, participant, newCapacity)
}

func (s *stubTripRepo) SetParticipantStatus(ctx context.Context, tripID, userID uint, status models.ParticipantStatus, newCapacity int) error {
	return s.setParticipantStatusFn(ctx, tripID, userID, status, newCapacity)
}

func (s *stubTripRepo) CreatePoll(ctx context.Context, poll *models.TripPoll) error {
	return s.createPollFn(ctx, poll)
}

func (s *stubTripRepo) ClosePoll(ctx context.Context, pollID uint) error {
	return s.closePollFn(ctx, pollID)
}

func (s *stubTripRepo) UpsertVote(ctx context.Context, vote *models.TripPollVote) error {
	return s.upsertVoteFn(ctx, vote)
}

func (s *stubTripRepo) AddMessage(ctx context.Context, message *models.TripMessage) error {
	return s.addMessageFn(ctx, message)
}

func (s *stubTripRepo) AddExpense(ctx context.Context, expense *models.TripExpense) error {
	return s.addExpenseFn(ctx, expense)
}

func (s *stubTripRepo) UpdatePhase(ctx context.Context, tripID uint, phase models.TripPhase) error {
	return s.updatePhaseFn(ctx, tripID, phase)
}

func (s *stubTripRepo) UpdateSuggestions(ctx context.Context, tripID uint, suggestions models.TripSuggestions) error {
	return s.updateSuggestionsFn(ctx, tripID, suggestions)
}

type stubModerator struct {
	moderateFn func(ctx context.Context, text string) (*ai.ModerationResult, error)
}

func (s *stubModerator) Moderate(ctx context.Context, text string) (*ai.ModerationResult, error) {
	return s.moderateFn(ctx, text)
}

type stubEnricher struct {
	enrichFn func(ctx context.Context, text, destination string) (*models.Enrichment, error)
}

func (s *stubEnricher) Enrich(ctx context.Context, text, destination string) (*models.Enrichment, error) {
	return s.enrichFn(ctx, text, destination)
}

type stubSuggester struct {
	suggestFn func(ctx context.Context, trip ai.TripContext) (*models.TripSuggestions, error)
}

func (s *stubSuggester) Suggest(ctx context.Context, trip ai.TripContext) (*models.TripSuggestions, error) {
	return s.suggestFn(ctx, trip)
}

// profileRepoWithProfiles returns a stub whose GetByUserID serves from the
// given map and errors with not-found otherwise.
func profileRepoWithProfiles(profiles map[uint]*models.UserProfile) *stubProfileRepo {
	return &stubProfileRepo{
		getByUserIDFn: func(_ context.Context, userID uint) (*models.UserProfile, error) {
			if p, ok := profiles[userID]; ok {
				return p, nil
			}
			return nil, models.NewNotFoundError("Profile", userID)
		},
	}
}
