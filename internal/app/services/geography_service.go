package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/app/repositories"
)

// GeographyService serves the county/constituency/ward reference data
type GeographyService struct {
	geographyRepo repositories.GeographyRepository
	logger        zerolog.Logger
}

// NewGeographyService creates a new GeographyService
func NewGeographyService(geographyRepo repositories.GeographyRepository, logger zerolog.Logger) *GeographyService {
	return &GeographyService{
		geographyRepo: geographyRepo,
		logger:        logger,
	}
}

// ListCounties returns all counties
func (s *GeographyService) ListCounties(ctx context.Context) ([]models.County, error) {
	return s.geographyRepo.ListCounties(ctx)
}

// ListConstituencies returns the constituencies of a county, or all of them
// when countyID is zero
func (s *GeographyService) ListConstituencies(ctx context.Context, countyID int64) ([]models.Constituency, error) {
	return s.geographyRepo.ListConstituencies(ctx, countyID)
}

// ListWards returns the wards of a constituency
func (s *GeographyService) ListWards(ctx context.Context, constituencyID int64) ([]models.Ward, error) {
	return s.geographyRepo.ListWards(ctx, constituencyID)
}
