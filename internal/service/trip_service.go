package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"wayfare/internal/ai"
	"wayfare/internal/cache"
	"wayfare/internal/models"
	"wayfare/internal/notifications"
	"wayfare/internal/observability"
	"wayfare/internal/repository"
)

const defaultPollDeadline = 7 * 24 * time.Hour

// tripLocks serializes mutations per trip ID. Concurrent joins on the same
// trip must not both observe capacity as available and both commit.
type tripLocks struct {
	locks sync.Map
}

func (l *tripLocks) lock(tripID uint) func() {
	mu, _ := l.locks.LoadOrStore(tripID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// JoinStatus is the outcome of a join attempt that did not error.
type JoinStatus string

const (
	// JoinStatusJoined indicates a pending participant was added.
	JoinStatusJoined JoinStatus = "joined"
	// JoinStatusAlreadyJoined indicates the user was already a participant.
	JoinStatusAlreadyJoined JoinStatus = "already_joined"
	// JoinStatusCapacityExceeded indicates the trip is full.
	JoinStatusCapacityExceeded JoinStatus = "capacity_exceeded"
	// JoinStatusRequirementsNotMet indicates one or more unmet requirements.
	JoinStatusRequirementsNotMet JoinStatus = "requirements_not_met"
)

// JoinResult reports a join outcome. Unmet requirements and a full trip are
// results, not errors: Reasons enumerates every failing requirement.
type JoinResult struct {
	Status  JoinStatus        `json:"status"`
	Reasons []string          `json:"reasons,omitempty"`
	Trip    *models.GroupTrip `json:"trip,omitempty"`
}

// Joined reports whether the attempt added the user to the trip.
func (r *JoinResult) Joined() bool {
	return r.Status == JoinStatusJoined || r.Status == JoinStatusAlreadyJoined
}

// TripService coordinates collaborative group trip planning: membership with
// capacity and eligibility gating, deadline-bound polls, moderated
// append-only discussions and a shared-expense ledger. Unlike the advisory
// recommendation path, every failure here is reported with a specific kind
// and no operation leaves a partial effect.
type TripService struct {
	tripRepo  repository.TripRepository
	profiles  *ProfileService
	moderator ai.Moderator
	suggester ai.Suggester
	notifier  *notifications.Notifier
	aiTimeout time.Duration
	locks     tripLocks
}

// NewTripService returns a new TripService. All dependencies are required;
// wiring happens at construction so every method can assume they are present.
func NewTripService(
	tripRepo repository.TripRepository,
	profiles *ProfileService,
	moderator ai.Moderator,
	suggester ai.Suggester,
	notifier *notifications.Notifier,
	aiTimeout time.Duration,
) *TripService {
	return &TripService{
		tripRepo:  tripRepo,
		profiles:  profiles,
		moderator: moderator,
		suggester: suggester,
		notifier:  notifier,
		aiTimeout: aiTimeout,
	}
}

// CreateTrip validates and stores a trip with the creator as its sole
// confirmed admin participant. Itinerary suggestions are fetched in the
// background; their absence is never fatal.
func (s *TripService) CreateTrip(ctx context.Context, creatorID uint, trip *models.GroupTrip) (*models.GroupTrip, error) {
	var err error
	defer func() { observability.RecordTripOperation("create", err) }()

	if trip.Title == "" {
		err = models.NewValidationError("Trip title is required")
		return nil, err
	}
	if trip.Destination.Name == "" {
		err = models.NewValidationError("Destination name is required")
		return nil, err
	}
	if trip.CapacityMax <= 0 {
		trip.CapacityMax = 10
	}
	if trip.CapacityMin <= 0 {
		trip.CapacityMin = 1
	}
	if trip.CapacityMin > trip.CapacityMax {
		err = models.NewValidationError("Minimum capacity cannot exceed maximum capacity")
		return nil, err
	}
	if _, err = s.profiles.GetOrCreate(ctx, creatorID); err != nil {
		return nil, err
	}

	trip.CreatorID = creatorID
	trip.Phase = models.TripPhasePlanning
	trip.CapacityCurrent = 1
	trip.Participants = []models.TripParticipant{{
		UserID: creatorID,
		Status: models.ParticipantConfirmed,
		Role:   models.TripRoleAdmin,
	}}

	if err = s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	go s.fetchSuggestions(trip.ID, ai.TripContext{
		Title:       trip.Title,
		Destination: trip.Destination.Name,
		Country:     trip.Destination.Country,
		Days:        tripDays(trip),
		BudgetMin:   trip.BudgetMin,
		BudgetMax:   trip.BudgetMax,
	})

	return trip, nil
}

// GetTrip returns a trip with its participants, polls, messages and expenses.
func (s *TripService) GetTrip(ctx context.Context, tripID uint) (*models.GroupTrip, error) {
	var cached models.GroupTrip
	if cache.GetJSON(ctx, cache.TripKey(tripID), &cached) {
		return &cached, nil
	}
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	cache.SetJSON(ctx, cache.TripKey(tripID), trip, cache.TripTTL)
	return trip, nil
}

// ListTripsForUser returns trips where the user is a non-declined participant.
func (s *TripService) ListTripsForUser(ctx context.Context, userID uint) ([]models.GroupTrip, error) {
	return s.tripRepo.ListByUser(ctx, userID)
}

// Join attempts to add userID to the trip as a pending participant. The
// capacity check and increment run under the per-trip lock so two concurrent
// joins can never both commit into the last slot.
func (s *TripService) Join(ctx context.Context, userID, tripID uint, preferences string) (*JoinResult, error) {
	var err error
	defer func() { observability.RecordTripOperation("join", err) }()

	unlock := s.locks.lock(tripID)
	defer unlock()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if trip.Participant(userID) != nil {
		return &JoinResult{Status: JoinStatusAlreadyJoined, Trip: trip}, nil
	}
	if trip.CapacityCurrent >= trip.CapacityMax {
		return &JoinResult{
			Status:  JoinStatusCapacityExceeded,
			Reasons: []string{fmt.Sprintf("Trip is at full capacity (%d/%d)", trip.CapacityCurrent, trip.CapacityMax)},
		}, nil
	}

	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reasons := evaluateRequirements(&trip.Requirements, profile); len(reasons) > 0 {
		return &JoinResult{Status: JoinStatusRequirementsNotMet, Reasons: reasons}, nil
	}

	participant := &models.TripParticipant{
		TripID:      tripID,
		UserID:      userID,
		Status:      models.ParticipantPending,
		Role:        models.TripRoleParticipant,
		Preferences: preferences,
	}
	newCapacity := trip.NonDeclinedCount() + 1
	if err = s.tripRepo.AddParticipant(ctx, tripID, participant, newCapacity); err != nil {
		return nil, err
	}
	cache.InvalidateTrip(ctx, tripID)

	s.notifier.Notify(ctx, organizerIDs(trip), notifications.KindTripJoinRequest,
		map[string]interface{}{"trip_id": tripID, "user_id": userID})

	trip.Participants = append(trip.Participants, *participant)
	trip.CapacityCurrent = newCapacity
	return &JoinResult{Status: JoinStatusJoined, Trip: trip}, nil
}

// RespondParticipation confirms or declines a participant and keeps the
// capacity invariant: declined participants free their slot. Participants may
// respond for themselves; any other target requires an organizer.
func (s *TripService) RespondParticipation(ctx context.Context, tripID, requesterID, userID uint, status models.ParticipantStatus) error {
	var err error
	defer func() { observability.RecordTripOperation("respond", err) }()

	if status != models.ParticipantConfirmed && status != models.ParticipantDeclined {
		err = models.NewValidationError("Status must be confirmed or declined")
		return err
	}

	unlock := s.locks.lock(tripID)
	defer unlock()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if requesterID != userID && !isOrganizer(trip, requesterID) {
		err = models.NewForbiddenError("Only trip organizers can respond for other participants")
		return err
	}
	participant := trip.Participant(userID)
	if participant == nil {
		err = models.NewNotFoundError("Participant", userID)
		return err
	}
	if participant.Status == status {
		return nil
	}

	newCapacity := trip.NonDeclinedCount()
	if participant.Status != models.ParticipantDeclined && status == models.ParticipantDeclined {
		newCapacity--
	} else if participant.Status == models.ParticipantDeclined && status != models.ParticipantDeclined {
		newCapacity++
	}
	if newCapacity > trip.CapacityMax {
		err = models.NewCapacityExceededError(tripID)
		return err
	}

	if err = s.tripRepo.SetParticipantStatus(ctx, tripID, userID, status, newCapacity); err != nil {
		return err
	}
	cache.InvalidateTrip(ctx, tripID)
	return nil
}

// CreatePoll opens a poll on the trip. Only confirmed admins and
// co-organizers may create polls; a missing deadline defaults to a week out.
func (s *TripService) CreatePoll(ctx context.Context, tripID, requesterID uint, poll *models.TripPoll) (*models.TripPoll, error) {
	var err error
	defer func() { observability.RecordTripOperation("create_poll", err) }()

	unlock := s.locks.lock(tripID)
	defer unlock()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !isOrganizer(trip, requesterID) {
		err = models.NewForbiddenError("Only trip admins and co-organizers can create polls")
		return nil, err
	}
	if poll.Question == "" {
		err = models.NewValidationError("Poll question is required")
		return nil, err
	}
	if len(poll.Options) < 2 {
		err = models.NewValidationError("A poll needs at least two options")
		return nil, err
	}
	if poll.Deadline.IsZero() {
		poll.Deadline = time.Now().Add(defaultPollDeadline)
	}

	poll.TripID = tripID
	poll.CreatorID = requesterID
	poll.IsActive = true
	if err = s.tripRepo.CreatePoll(ctx, poll); err != nil {
		return nil, err
	}
	cache.InvalidateTrip(ctx, tripID)

	s.notifier.Notify(ctx, confirmedIDsExcept(trip, requesterID), notifications.KindTripPollCreated,
		map[string]interface{}{"trip_id": tripID, "question": poll.Question})
	return poll, nil
}

// Vote records a confirmed participant's vote on the poll at pollIndex.
// A repeat vote by the same user replaces the earlier one.
func (s *TripService) Vote(ctx context.Context, tripID, userID uint, pollIndex int, option string) error {
	var err error
	defer func() { observability.RecordTripOperation("vote", err) }()

	unlock := s.locks.lock(tripID)
	defer unlock()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	participant := trip.Participant(userID)
	if participant == nil || participant.Status != models.ParticipantConfirmed {
		err = models.NewForbiddenError("Only confirmed participants can vote")
		return err
	}
	if pollIndex < 0 || pollIndex >= len(trip.Polls) {
		err = models.NewNotFoundError("Poll", pollIndex)
		return err
	}
	poll := &trip.Polls[pollIndex]
	if !poll.IsActive {
		err = models.NewValidationError("Poll is closed")
		return err
	}
	if time.Now().After(poll.Deadline) {
		err = models.NewDeadlinePassedError("Poll deadline has passed")
		return err
	}
	if !poll.HasOption(option) {
		err = models.NewValidationError(fmt.Sprintf("%q is not an option on this poll", option))
		return err
	}

	err = s.tripRepo.UpsertVote(ctx, &models.TripPollVote{
		PollID: poll.ID,
		UserID: userID,
		Option: option,
	})
	if err != nil {
		return err
	}
	cache.InvalidateTrip(ctx, tripID)
	return nil
}

// ClosePoll deactivates the poll at pollIndex. Deadlines alone never close a
// poll; this explicit operation does.
func (s *TripService) ClosePoll(ctx context.Context, tripID, requesterID uint, pollIndex int) error {
	var err error
	defer func() { observability.RecordTripOperation("close_poll", err) }()

	unlock := s.locks.lock(tripID)
	defer unlock()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if !isOrganizer(trip, requesterID) {
		err = models.NewForbiddenError("Only trip admins and co-organizers can close polls")
		return err
	}
	if pollIndex < 0 || pollIndex >= len(trip.Polls) {
		err = models.NewNotFoundError("Poll", pollIndex)
		return err
	}

	err = s.tripRepo.ClosePoll(ctx, trip.Polls[pollIndex].ID)
	if err != nil {
		return err
	}
	cache.InvalidateTrip(ctx, tripID)
	return nil
}

// PostDiscussion appends a message to the trip discussion after moderation.
// A reject verdict fails the operation before anything is stored.
func (s *TripService) PostDiscussion(ctx context.Context, tripID, userID uint, message string, replyToID *uint) (*models.TripMessage, error) {
	var err error
	defer func() { observability.RecordTripOperation("post_discussion", err) }()

	if message == "" {
		err = models.NewValidationError("Message is required")
		return nil, err
	}

	unlock := s.locks.lock(tripID)
	defer unlock()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Participant(userID) == nil {
		err = models.NewForbiddenError("Only trip participants can post in the discussion")
		return nil, err
	}

	if err = s.moderate(ctx, message); err != nil {
		return nil, err
	}

	msg := &models.TripMessage{
		UID:       uuid.NewString(),
		TripID:    tripID,
		UserID:    userID,
		Message:   message,
		ReplyToID: replyToID,
	}
	if err = s.tripRepo.AddMessage(ctx, msg); err != nil {
		return nil, err
	}
	cache.InvalidateTrip(ctx, tripID)
	return msg, nil
}

// AddExpense appends a shared-expense ledger row. The split defaults to all
// non-declined participants when none is given.
func (s *TripService) AddExpense(ctx context.Context, tripID, userID uint, expense *models.TripExpense) (*models.TripExpense, error) {
	var err error
	defer func() { observability.RecordTripOperation("add_expense", err) }()

	if expense.Amount <= 0 {
		err = models.NewValidationError("Expense amount must be positive")
		return nil, err
	}
	if expense.Description == "" {
		err = models.NewValidationError("Expense description is required")
		return nil, err
	}

	unlock := s.locks.lock(tripID)
	defer unlock()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	participant := trip.Participant(userID)
	if participant == nil || participant.Status == models.ParticipantDeclined {
		err = models.NewForbiddenError("Only trip participants can add expenses")
		return nil, err
	}

	expense.TripID = tripID
	expense.PayerID = userID
	if len(expense.SplitAmong) == 0 {
		for i := range trip.Participants {
			if trip.Participants[i].Status != models.ParticipantDeclined {
				expense.SplitAmong = append(expense.SplitAmong, trip.Participants[i].UserID)
			}
		}
	}
	if err = s.tripRepo.AddExpense(ctx, expense); err != nil {
		return nil, err
	}
	cache.InvalidateTrip(ctx, tripID)
	return expense, nil
}

// TransitionPhase advances the trip lifecycle. Phases move strictly forward;
// cancelled is reachable from any non-terminal phase.
func (s *TripService) TransitionPhase(ctx context.Context, tripID, requesterID uint, phase models.TripPhase) error {
	var err error
	defer func() { observability.RecordTripOperation("transition_phase", err) }()

	unlock := s.locks.lock(tripID)
	defer unlock()

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if !isOrganizer(trip, requesterID) {
		err = models.NewForbiddenError("Only trip admins and co-organizers can change the trip phase")
		return err
	}
	if !trip.CanTransitionTo(phase) {
		err = models.NewValidationError(fmt.Sprintf("Cannot move trip from %s to %s", trip.Phase, phase))
		return err
	}

	err = s.tripRepo.UpdatePhase(ctx, tripID, phase)
	if err != nil {
		return err
	}
	cache.InvalidateTrip(ctx, tripID)
	return nil
}

// moderate screens text and maps collaborator failures to approval: an
// unavailable moderator must not block trip discussions.
func (s *TripService) moderate(ctx context.Context, text string) error {
	mctx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	verdict, err := s.moderator.Moderate(mctx, text)
	if err != nil {
		observability.AICollaboratorErrors.WithLabelValues("moderation").Inc()
		slog.WarnContext(ctx, "moderation unavailable, approving by default", "err", err)
		return nil
	}
	if verdict.Action == ai.ActionReject {
		return models.NewModerationRejectedError("Message was rejected by content moderation")
	}
	return nil
}

func (s *TripService) fetchSuggestions(tripID uint, tc ai.TripContext) {
	ctx, cancel := context.WithTimeout(context.Background(), s.aiTimeout)
	defer cancel()

	suggestions, err := s.suggester.Suggest(ctx, tc)
	if err != nil {
		observability.AICollaboratorErrors.WithLabelValues("itinerary").Inc()
		slog.Warn("itinerary suggestions unavailable", "trip_id", tripID, "err", err)
		return
	}
	if err := s.tripRepo.UpdateSuggestions(ctx, tripID, *suggestions); err != nil {
		slog.Warn("failed to store itinerary suggestions", "trip_id", tripID, "err", err)
	}
}

// evaluateRequirements returns one reason per unmet trip requirement. An
// empty slice means the profile is eligible.
func evaluateRequirements(req *models.TripRequirements, profile *models.UserProfile) []string {
	var reasons []string

	if profile.Age != nil {
		if req.MinAge != nil && *profile.Age < *req.MinAge {
			reasons = append(reasons, fmt.Sprintf("Minimum age for this trip is %d", *req.MinAge))
		}
		if req.MaxAge != nil && *profile.Age > *req.MaxAge {
			reasons = append(reasons, fmt.Sprintf("Maximum age for this trip is %d", *req.MaxAge))
		}
	}

	if req.Experience != "" {
		if profile.Stats.TravelScore < req.Experience.MinScore() {
			reasons = append(reasons, fmt.Sprintf("This trip requires %s travel experience", req.Experience))
		}
	}

	if len(req.Languages) > 0 && !intersects(req.Languages, profile.Preferences.Languages) {
		reasons = append(reasons, "You don't speak any of the trip's required languages")
	}

	return reasons
}

func isOrganizer(trip *models.GroupTrip, userID uint) bool {
	p := trip.Participant(userID)
	return p != nil && p.Status == models.ParticipantConfirmed &&
		(p.Role == models.TripRoleAdmin || p.Role == models.TripRoleCoOrganizer)
}

func organizerIDs(trip *models.GroupTrip) []uint {
	var ids []uint
	for i := range trip.Participants {
		p := &trip.Participants[i]
		if p.Role == models.TripRoleAdmin || p.Role == models.TripRoleCoOrganizer {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

func confirmedIDsExcept(trip *models.GroupTrip, exclude uint) []uint {
	var ids []uint
	for i := range trip.Participants {
		p := &trip.Participants[i]
		if p.Status == models.ParticipantConfirmed && p.UserID != exclude {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

func tripDays(trip *models.GroupTrip) int {
	if trip.StartDate == nil || trip.EndDate == nil {
		return 0
	}
	days := int(trip.EndDate.Sub(*trip.StartDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
