// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"errors"
	"strings"

	"quilog/internal/middleware"
	"quilog/internal/models"
	"quilog/internal/session"

	"github.com/gofiber/fiber/v2"
)

// respondError writes err with the status its code maps to. Errors without
// a code are reported as INTERNAL_ERROR.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		err = models.NewInternalError(err)
	}
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// parseBody decodes the JSON request body into dst.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return models.NewValidationError("Invalid request body")
	}
	return nil
}

// pathID returns a trimmed route parameter, rejecting blanks.
func pathID(c *fiber.Ctx, param string) (string, error) {
	id := strings.TrimSpace(c.Params(param))
	if id == "" {
		return "", models.NewValidationError("Invalid " + param)
	}
	return id, nil
}

// currentUserID returns the id set by the auth middleware, or "".
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.LocalUserID).(string)
	return id
}

// claimsProfile is the token's snapshot of the user.
func claimsProfile(c *fiber.Ctx) models.Profile {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return models.Profile{}
	}
	return models.Profile{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
		Photo: claims.Picture,
	}
}

// withSession resolves the caller's session for protected routes.
func (s *Server) withSession(c *fiber.Ctx) error {
	userID := currentUserID(c)
	if userID == "" {
		return c.Next()
	}
	sess, err := s.sessions.Resolve(c.UserContext(), userID, claimsProfile(c))
	if err != nil {
		return respondError(c, err)
	}
	c.SetUserContext(session.WithSession(c.UserContext(), sess))
	return c.Next()
}

func currentSession(c *fiber.Ctx) *session.Session {
	return session.FromContext(c.UserContext())
}
