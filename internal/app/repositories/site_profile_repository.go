package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/pkg/apperrors"
)

// SiteProfileRepository serves the active deployment profile
type SiteProfileRepository interface {
	GetActive(ctx context.Context) (*models.SiteProfile, error)
	UpdateDeadline(ctx context.Context, id int64, deadline *time.Time) error
}

type siteProfileRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSiteProfileRepository creates a new SiteProfileRepository
func NewSiteProfileRepository(db *pgxpool.Pool) SiteProfileRepository {
	return &siteProfileRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *siteProfileRepository) GetActive(ctx context.Context) (*models.SiteProfile, error) {
	sql, args, err := r.sb.Select("id", "county_name", "constituency_id", "application_deadline", "is_active").
		From("site_profiles").
		Where(squirrel.Eq{"is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get site profile query: %w", err)
	}

	profile := &models.SiteProfile{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&profile.ID, &profile.CountyName, &profile.ConstituencyID,
		&profile.ApplicationDeadline, &profile.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving site profile: %w", err)
	}

	return profile, nil
}

func (r *siteProfileRepository) UpdateDeadline(ctx context.Context, id int64, deadline *time.Time) error {
	sql, args, err := r.sb.Update("site_profiles").
		Set("application_deadline", deadline).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update deadline query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating application deadline: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	return nil
}
