package server

import (
	"quilog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetDraft handles GET /api/me/draft. A missing draft answers 204.
func (s *Server) GetDraft(c *fiber.Ctx) error {
	draft, err := s.draftService.Get(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	if draft == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(draft)
}

// SaveDraft handles PUT /api/me/draft
func (s *Server) SaveDraft(c *fiber.Ctx) error {
	var req models.Draft
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	draft, err := s.draftService.Save(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(draft)
}

// DiscardDraft handles DELETE /api/me/draft
func (s *Server) DiscardDraft(c *fiber.Ctx) error {
	if err := s.draftService.Discard(c.UserContext(), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
