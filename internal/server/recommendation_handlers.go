package server

import (
	"wayfare/internal/models"
	"wayfare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetRecommendations handles GET /api/recommendations/:kind
func (s *Server) GetRecommendations(c *fiber.Ctx) error {
	kind, err := service.ParseRecommendationKind(c.Params("kind"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	result, err := s.recommendationService.Recommend(c.Context(), currentUserID(c), kind)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(result)
}

// GetTrendingDestinations handles GET /api/trending/destinations
func (s *Server) GetTrendingDestinations(c *fiber.Ctx) error {
	destinations := s.trendingService.TrendingDestinations(c.Context())
	return c.JSON(fiber.Map{"destinations": destinations})
}

// GetCacheStats handles GET /api/recommendations/cache/stats
func (s *Server) GetCacheStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"recommendations": s.recommendationService.CacheStats(),
		"trending":        s.trendingService.CacheStats(),
	})
}

// ClearRecommendationCaches handles DELETE /api/recommendations/cache
func (s *Server) ClearRecommendationCaches(c *fiber.Ctx) error {
	s.recommendationService.ClearCache()
	s.trendingService.ClearCache()
	return c.JSON(fiber.Map{"cleared": true})
}
