package server

import (
	"quilog/internal/models"
	"quilog/internal/service"

	"github.com/gofiber/fiber/v2"
)

type profileRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Profession string `json:"profession"`
	Phone      string `json:"phone"`
	Photo      string `json:"photo"`
	Facebook   string `json:"facebook"`
	Instagram  string `json:"instagram"`
	Twitter    string `json:"twitter"`
	LinkedIn   string `json:"linkedin"`
}

func (r profileRequest) profile() models.Profile {
	return models.Profile{
		Name:       r.Name,
		Email:      r.Email,
		Profession: r.Profession,
		Phone:      r.Phone,
		Photo:      r.Photo,
		Facebook:   r.Facebook,
		Instagram:  r.Instagram,
		Twitter:    r.Twitter,
		LinkedIn:   r.LinkedIn,
	}
}

// ListUsers handles GET /api/users
func (s *Server) ListUsers(c *fiber.Ctx) error {
	profiles, err := s.profileService.ListProfiles(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profiles)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	profile, err := s.profileService.GetProfile(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// GetMe handles GET /api/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	sess := currentSession(c)
	if sess == nil {
		return respondError(c, models.NewAuthRequiredError("view your session"))
	}
	return c.JSON(sess)
}

// UpdateMyProfile handles PUT /api/me/profile
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	userID := currentUserID(c)
	profile, err := s.profileService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID: userID,
		Patch:  req.profile(),
		Seed:   s.sessionSeed(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	s.sessions.Forget(c.UserContext(), userID)
	s.events.ProfileUpdated(c.UserContext(), profile)
	return c.JSON(profile)
}

// UpdateMyAccount handles PUT /api/me/account
func (s *Server) UpdateMyAccount(c *fiber.Ctx) error {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	userID := currentUserID(c)
	profile, err := s.profileService.UpdateAccount(c.UserContext(), service.UpdateAccountInput{
		UserID: userID,
		Name:   req.Name,
		Email:  req.Email,
		Seed:   s.sessionSeed(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	s.sessions.Forget(c.UserContext(), userID)
	s.events.ProfileUpdated(c.UserContext(), profile)
	return c.JSON(profile)
}

// sessionSeed is the base for a profile created on first edit.
func (s *Server) sessionSeed(c *fiber.Ctx) models.Profile {
	if sess := currentSession(c); sess != nil {
		return sess.Profile
	}
	return claimsProfile(c)
}
