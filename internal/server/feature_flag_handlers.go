package server

import (
	"quilog/internal/featureflags"

	"github.com/gofiber/fiber/v2"
)

type featureFlagsResponse struct {
	Raw       map[string]string `json:"raw"`
	Evaluated map[string]bool   `json:"evaluated"`
	// LikeMode is "optimistic" or "confirmed" for the caller.
	LikeMode string `json:"likeMode"`
}

// GetFeatureFlags handles GET /api/feature-flags
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := currentUserID(c)
	resp := featureFlagsResponse{
		Raw:       map[string]string{},
		Evaluated: map[string]bool{},
		LikeMode:  "confirmed",
	}
	if s.featureFlags != nil {
		resp.Raw = s.featureFlags.Raw()
		resp.Evaluated = s.featureFlags.Snapshot(userID)
	}
	if s.featureFlags.Enabled(featureflags.OptimisticLikes, userID) {
		resp.LikeMode = "optimistic"
	}
	return c.JSON(resp)
}
