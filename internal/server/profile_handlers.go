package server

import (
	"wayfare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profiles/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetOrCreate(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/profiles/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var update models.UserProfile
	if err := c.BodyParser(&update); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.profileService.UpdateProfile(c.Context(), currentUserID(c), &update)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(profile)
}

// GetUserProfile handles GET /api/profiles/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.profileService.GetOrCreate(c.Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(profile)
}

// GetProfileByHandle handles GET /api/profiles/by-handle/:handle
func (s *Server) GetProfileByHandle(c *fiber.Ctx) error {
	handle := c.Params("handle")

	profile, err := s.profileService.GetByHandle(c.Context(), handle)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(profile)
}

// FollowUser handles POST /api/profiles/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.profileService.Follow(c.Context(), currentUserID(c), targetID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"following": true})
}

// UnfollowUser handles DELETE /api/profiles/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.profileService.Unfollow(c.Context(), currentUserID(c), targetID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"following": false})
}

// BlockUser handles POST /api/profiles/:id/block
func (s *Server) BlockUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.profileService.Block(c.Context(), currentUserID(c), targetID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"blocked": true})
}
