package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/app/repositories"
)

// SiteService exposes the active deployment profile: county branding and the
// application deadline.
type SiteService struct {
	siteProfileRepo repositories.SiteProfileRepository
	logger          zerolog.Logger
}

// NewSiteService creates a new SiteService
func NewSiteService(siteProfileRepo repositories.SiteProfileRepository, logger zerolog.Logger) *SiteService {
	return &SiteService{
		siteProfileRepo: siteProfileRepo,
		logger:          logger,
	}
}

// Profile returns the active site profile.
func (s *SiteService) Profile(ctx context.Context) (*models.SiteProfile, error) {
	return s.siteProfileRepo.GetActive(ctx)
}

// SetDeadline moves the application deadline of the active profile. A nil
// deadline leaves the window open indefinitely.
func (s *SiteService) SetDeadline(ctx context.Context, deadline *time.Time) (*models.SiteProfile, error) {
	profile, err := s.siteProfileRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.siteProfileRepo.UpdateDeadline(ctx, profile.ID, deadline); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("profileID", profile.ID).Interface("deadline", deadline).Msg("Application deadline updated")
	profile.ApplicationDeadline = deadline
	return profile, nil
}
