package server

import (
	"wayfare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateGroup handles POST /api/groups
func (s *Server) CreateGroup(c *fiber.Ctx) error {
	var group models.TravelGroup
	if err := c.BodyParser(&group); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if group.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Group name is required"))
	}
	if group.Privacy == "" {
		group.Privacy = models.GroupPrivacyPublic
	}

	if err := s.groupRepo.Create(c.Context(), &group); err != nil {
		return serviceError(c, err)
	}
	if err := s.groupRepo.AddMember(c.Context(), group.ID, currentUserID(c), models.GroupRoleAdmin); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

// GetGroup handles GET /api/groups/:id
func (s *Server) GetGroup(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	group, err := s.groupRepo.GetByID(c.Context(), groupID)
	if err != nil {
		return serviceError(c, err)
	}
	joinedIDs, err := s.groupRepo.JoinedGroupIDs(c.Context(), currentUserID(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"group": group, "joined": containsID(joinedIDs, groupID)})
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// DiscoverGroups handles GET /api/groups/discover
func (s *Server) DiscoverGroups(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)

	groups, err := s.groupRepo.ListPublicNotJoined(c.Context(), currentUserID(c), pagination.Limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"groups": groups})
}

// JoinGroup handles POST /api/groups/:id/join
func (s *Server) JoinGroup(c *fiber.Ctx) error {
	groupID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	group, err := s.groupRepo.GetByID(c.Context(), groupID)
	if err != nil {
		return serviceError(c, err)
	}
	if group.Privacy != models.GroupPrivacyPublic {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Group is private"))
	}

	if err := s.groupRepo.AddMember(c.Context(), groupID, currentUserID(c), models.GroupRoleMember); err != nil {
		return serviceError(c, err)
	}
	if err := s.groupRepo.TouchActivity(c.Context(), groupID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"joined": true})
}
