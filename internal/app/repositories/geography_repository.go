package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/pkg/apperrors"
)

// GeographyRepository serves the county/constituency/ward reference data
type GeographyRepository interface {
	ListCounties(ctx context.Context) ([]models.County, error)
	ListConstituencies(ctx context.Context, countyID int64) ([]models.Constituency, error)
	ListWards(ctx context.Context, constituencyID int64) ([]models.Ward, error)
	GetConstituency(ctx context.Context, id int64) (*models.Constituency, error)
}

type geographyRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewGeographyRepository creates a new GeographyRepository
func NewGeographyRepository(db *pgxpool.Pool) GeographyRepository {
	return &geographyRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *geographyRepository) ListCounties(ctx context.Context) ([]models.County, error) {
	sql, args, err := r.sb.Select("id", "name").
		From("counties").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list counties query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing counties: %w", err)
	}
	defer rows.Close()

	var counties []models.County
	for rows.Next() {
		var c models.County
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("error scanning county row: %w", err)
		}
		counties = append(counties, c)
	}

	return counties, rows.Err()
}

func (r *geographyRepository) ListConstituencies(ctx context.Context, countyID int64) ([]models.Constituency, error) {
	builder := r.sb.Select("id", "county_id", "name").
		From("constituencies").
		OrderBy("name")
	if countyID > 0 {
		builder = builder.Where(squirrel.Eq{"county_id": countyID})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list constituencies query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing constituencies: %w", err)
	}
	defer rows.Close()

	var constituencies []models.Constituency
	for rows.Next() {
		var c models.Constituency
		if err := rows.Scan(&c.ID, &c.CountyID, &c.Name); err != nil {
			return nil, fmt.Errorf("error scanning constituency row: %w", err)
		}
		constituencies = append(constituencies, c)
	}

	return constituencies, rows.Err()
}

func (r *geographyRepository) ListWards(ctx context.Context, constituencyID int64) ([]models.Ward, error) {
	sql, args, err := r.sb.Select("id", "constituency_id", "name").
		From("wards").
		Where(squirrel.Eq{"constituency_id": constituencyID}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list wards query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing wards: %w", err)
	}
	defer rows.Close()

	var wards []models.Ward
	for rows.Next() {
		var w models.Ward
		if err := rows.Scan(&w.ID, &w.ConstituencyID, &w.Name); err != nil {
			return nil, fmt.Errorf("error scanning ward row: %w", err)
		}
		wards = append(wards, w)
	}

	return wards, rows.Err()
}

func (r *geographyRepository) GetConstituency(ctx context.Context, id int64) (*models.Constituency, error) {
	sql, args, err := r.sb.Select("id", "county_id", "name").
		From("constituencies").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get constituency query: %w", err)
	}

	var c models.Constituency
	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CountyID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error retrieving constituency: %w", err)
	}

	return &c, nil
}
