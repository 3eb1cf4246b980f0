package service

import (
	"context"
	"sort"
	"strings"

	"quilog/internal/cache"
	"quilog/internal/models"
	"quilog/internal/repository"
	"quilog/internal/validation"
)

type ProfileService struct {
	users repository.UserRepository
}

type UpdateProfileInput struct {
	UserID string
	// Patch carries the fields to change; empty fields are left alone.
	Patch models.Profile
	// Seed is used as the base when the user has no profile yet, usually
	// the session's view of the user.
	Seed models.Profile
}

type UpdateAccountInput struct {
	UserID string
	Name   string
	Email  string
	Seed   models.Profile
}

func NewProfileService(users repository.UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

// ListProfiles returns every profile ordered by display name, then id.
func (s *ProfileService) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	profiles, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i].DisplayName(), profiles[j].DisplayName()
		if a != b {
			return a < b
		}
		return profiles[i].ID < profiles[j].ID
	})
	return profiles, nil
}

// GetProfile returns the stored profile, served from the profile cache when warm.
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileKey(id), &profile, cache.ProfileTTL, func() error {
		p, err := s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		profile = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile merges the non-empty fields of in.Patch into the user's
// profile, creating it from in.Seed on first use.
func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	if in.UserID == "" {
		return nil, models.NewAuthRequiredError("edit your profile")
	}
	patch := trimProfile(in.Patch)
	if err := validation.ValidateProfile(patch); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	profile, err := s.users.Update(ctx, in.UserID, patch)
	if models.IsNotFound(err) {
		created := trimProfile(in.Seed)
		created.Merge(patch)
		created.ID = in.UserID
		if err = s.users.Upsert(ctx, &created); err == nil {
			profile = &created
		}
	}
	if err != nil {
		return nil, err
	}

	cache.InvalidateProfile(ctx, in.UserID)
	return profile, nil
}

// UpdateAccount changes the name and email shown on the settings screen.
func (s *ProfileService) UpdateAccount(ctx context.Context, in UpdateAccountInput) (*models.Profile, error) {
	if in.UserID == "" {
		return nil, models.NewAuthRequiredError("edit your account")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if err := validation.ValidateEmail(strings.TrimSpace(in.Email)); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.UpdateProfile(ctx, UpdateProfileInput{
		UserID: in.UserID,
		Patch:  models.Profile{Name: in.Name, Email: in.Email},
		Seed:   in.Seed,
	})
}

func trimProfile(p models.Profile) models.Profile {
	for _, f := range []*string{
		&p.Name, &p.Email, &p.Profession, &p.Phone, &p.Photo,
		&p.Facebook, &p.Instagram, &p.Twitter, &p.LinkedIn,
	} {
		*f = strings.TrimSpace(*f)
	}
	return p
}
