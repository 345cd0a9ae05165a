package server

import (
	"wayfare/internal/models"
	"wayfare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateTrip handles POST /api/trips
func (s *Server) CreateTrip(c *fiber.Ctx) error {
	var trip models.GroupTrip
	if err := c.BodyParser(&trip); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	created, err := s.tripService.CreateTrip(c.Context(), currentUserID(c), &trip)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetTrip handles GET /api/trips/:id
func (s *Server) GetTrip(c *fiber.Ctx) error {
	tripID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	trip, err := s.tripService.GetTrip(c.Context(), tripID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(trip)
}

// GetMyTrips handles GET /api/trips/me
func (s *Server) GetMyTrips(c *fiber.Ctx) error {
	trips, err := s.tripService.ListTripsForUser(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"trips": trips})
}

// JoinTrip handles POST /api/trips/:id/join
func (s *Server) JoinTrip(c *fiber.Ctx) error {
	tripID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Preferences string `json:"preferences"`
	}
	// An empty body is fine; preferences are optional.
	_ = c.BodyParser(&req)

	result, err := s.tripService.Join(c.Context(), currentUserID(c), tripID, req.Preferences)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(joinStatusCode(result.Status)).JSON(result)
}

// joinStatusCode maps a join outcome onto an HTTP status.
func joinStatusCode(status service.JoinStatus) int {
	switch status {
	case service.JoinStatusCapacityExceeded:
		return fiber.StatusConflict
	case service.JoinStatusRequirementsNotMet:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusOK
	}
}

// RespondParticipation handles POST /api/trips/:id/respond
func (s *Server) RespondParticipation(c *fiber.Ctx) error {
	tripID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		UserID uint   `json:"user_id"`
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	requesterID := currentUserID(c)
	if req.UserID == 0 {
		// No explicit target means the caller responds for themselves.
		req.UserID = requesterID
	}

	status := models.ParticipantStatus(req.Status)
	if err := s.tripService.RespondParticipation(c.Context(), tripID, requesterID, req.UserID, status); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"status": status})
}

// CreateTripPoll handles POST /api/trips/:id/polls
func (s *Server) CreateTripPoll(c *fiber.Ctx) error {
	tripID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var poll models.TripPoll
	if err := c.BodyParser(&poll); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	created, err := s.tripService.CreatePoll(c.Context(), tripID, currentUserID(c), &poll)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// VoteTripPoll handles POST /api/trips/:id/polls/:pollIndex/votes
func (s *Server) VoteTripPoll(c *fiber.Ctx) error {
	tripID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	pollIndex, err := c.ParamsInt("pollIndex")
	if err != nil || pollIndex < 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid poll index"))
	}

	var req struct {
		Option string `json:"option"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.tripService.Vote(c.Context(), tripID, currentUserID(c), pollIndex, req.Option); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"voted": true})
}

// CloseTripPoll handles POST /api/trips/:id/polls/:pollIndex/close
func (s *Server) CloseTripPoll(c *fiber.Ctx) error {
	tripID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	pollIndex, err := c.ParamsInt("pollIndex")
	if err != nil || pollIndex < 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid poll index"))
	}

	if err := s.tripService.ClosePoll(c.Context(), tripID, currentUserID(c), pollIndex); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"closed": true})
}

// PostTripMessage handles POST /api/trips/:id/messages
func (s *Server) PostTripMessage(c *fiber.Ctx) error {
	tripID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Message   string `json:"message"`
		ReplyToID *uint  `json:"reply_to_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.tripService.PostDiscussion(c.Context(), tripID, currentUserID(c), req.Message, req.ReplyToID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// AddTripExpense handles POST /api/trips/:id/expenses
func (s *Server) AddTripExpense(c *fiber.Ctx) error {
	tripID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var expense models.TripExpense
	if err := c.BodyParser(&expense); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	created, err := s.tripService.AddExpense(c.Context(), tripID, currentUserID(c), &expense)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// TransitionTripPhase handles POST /api/trips/:id/phase
func (s *Server) TransitionTripPhase(c *fiber.Ctx) error {
	tripID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Phase string `json:"phase"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	phase := models.TripPhase(req.Phase)
	if err := s.tripService.TransitionPhase(c.Context(), tripID, currentUserID(c), phase); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"phase": phase})
}
