package server

import (
	"wayfare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var post models.TravelPost
	if err := c.BodyParser(&post); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	created, err := s.postService.CreatePost(c.Context(), currentUserID(c), &post)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), postID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(post)
}

// GetMyPosts handles GET /api/posts/me
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)

	posts, err := s.postService.ListByUser(c.Context(), currentUserID(c), pagination.Limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// ListPosts handles GET /api/posts
func (s *Server) ListPosts(c *fiber.Ctx) error {
	pagination := parsePagination(c, 20)
	days := c.QueryInt("days", 30)
	tag := c.Query("tag")

	posts, err := s.postService.ListRecent(c.Context(), days, tag, pagination.Limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts})
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.postService.ToggleLike(c.Context(), currentUserID(c), postID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// ToggleBookmark handles POST /api/posts/:id/bookmark
func (s *Server) ToggleBookmark(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	bookmarked, err := s.postService.ToggleBookmark(c.Context(), currentUserID(c), postID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"bookmarked": bookmarked})
}

// ArchivePost handles POST /api/posts/:id/archive
func (s *Server) ArchivePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.ArchivePost(c.Context(), currentUserID(c), postID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"archived": true})
}
