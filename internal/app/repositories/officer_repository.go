package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/db"
	"github.com/jmwangi/bursaryhub/internal/pkg/apperrors"
	"github.com/jmwangi/bursaryhub/internal/pkg/dberrors"
)

// OfficerRepository handles officer profiles and their activity trail
type OfficerRepository interface {
	// CreateWithUser inserts the login account and the officer profile in
	// one transaction.
	CreateWithUser(ctx context.Context, user *models.User, officer *models.OfficerProfile) error

	GetByUserID(ctx context.Context, userID int64) (*models.OfficerProfile, error)
	ListByConstituency(ctx context.Context, constituencyID int64) ([]models.OfficerProfile, error)

	LogActivity(ctx context.Context, entry *models.OfficerActivityLog) error
	ListActivity(ctx context.Context, officerID int64, limit int) ([]models.OfficerActivityLog, error)
}

type officerRepository struct {
	database *db.PostgresDB
	sb       squirrel.StatementBuilderType
}

// NewOfficerRepository creates a new OfficerRepository
func NewOfficerRepository(database *db.PostgresDB) OfficerRepository {
	return &officerRepository{
		database: database,
		sb:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *officerRepository) CreateWithUser(ctx context.Context, user *models.User, officer *models.OfficerProfile) error {
	return r.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		now := time.Now()

		userSQL, userArgs, err := r.sb.Insert("users").
			Columns("username", "password", "full_name", "phone", "email", "role_type", "is_active", "created_at", "updated_at").
			Values(user.Username, user.Password, user.FullName, user.Phone, user.Email, user.RoleType, true, now, now).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create user query: %w", err)
		}

		if err := tx.QueryRow(ctx, userSQL, userArgs...).Scan(&user.ID); err != nil {
			if dberrors.IsDuplicateConstraintError(err, constraintUsersUsername) {
				return apperrors.ErrConflict
			}
			return fmt.Errorf("error creating user: %w", err)
		}

		officer.UserID = user.ID
		officerSQL, officerArgs, err := r.sb.Insert("officer_profiles").
			Columns("user_id", "constituency_id", "bursary_type", "is_manager", "designation").
			Values(officer.UserID, officer.ConstituencyID, officer.BursaryType, officer.IsManager, officer.Designation).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create officer query: %w", err)
		}

		if err := tx.QueryRow(ctx, officerSQL, officerArgs...).Scan(&officer.ID); err != nil {
			return fmt.Errorf("error creating officer: %w", err)
		}

		return nil
	})
}

func (r *officerRepository) GetByUserID(ctx context.Context, userID int64) (*models.OfficerProfile, error) {
	sql, args, err := r.sb.Select(
		"o.id", "o.user_id", "o.constituency_id", "o.bursary_type", "o.is_manager", "o.designation",
		"u.id", "u.username", "u.password", "u.full_name", "u.phone", "u.email",
		"u.role_type", "u.is_active", "u.created_at", "u.updated_at", "u.last_login_at").
		From("officer_profiles o").
		Join("users u ON u.id = o.user_id").
		Where(squirrel.Eq{"o.user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get officer query: %w", err)
	}

	officer := &models.OfficerProfile{User: &models.User{}}
	err = r.database.Pool.QueryRow(ctx, sql, args...).Scan(
		&officer.ID, &officer.UserID, &officer.ConstituencyID, &officer.BursaryType,
		&officer.IsManager, &officer.Designation,
		&officer.User.ID, &officer.User.Username, &officer.User.Password, &officer.User.FullName,
		&officer.User.Phone, &officer.User.Email, &officer.User.RoleType, &officer.User.IsActive,
		&officer.User.CreatedAt, &officer.User.UpdatedAt, &officer.User.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOfficerNotFound
		}
		return nil, fmt.Errorf("error retrieving officer: %w", err)
	}

	return officer, nil
}

func (r *officerRepository) ListByConstituency(ctx context.Context, constituencyID int64) ([]models.OfficerProfile, error) {
	sql, args, err := r.sb.Select(
		"o.id", "o.user_id", "o.constituency_id", "o.bursary_type", "o.is_manager", "o.designation",
		"u.username", "u.full_name").
		From("officer_profiles o").
		Join("users u ON u.id = o.user_id").
		Where(squirrel.Eq{"o.constituency_id": constituencyID}).
		OrderBy("u.full_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list officers query: %w", err)
	}

	rows, err := r.database.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing officers: %w", err)
	}
	defer rows.Close()

	var officers []models.OfficerProfile
	for rows.Next() {
		officer := models.OfficerProfile{User: &models.User{}}
		if err := rows.Scan(
			&officer.ID, &officer.UserID, &officer.ConstituencyID, &officer.BursaryType,
			&officer.IsManager, &officer.Designation,
			&officer.User.Username, &officer.User.FullName,
		); err != nil {
			return nil, fmt.Errorf("error scanning officer row: %w", err)
		}
		officers = append(officers, officer)
	}

	return officers, rows.Err()
}

func (r *officerRepository) LogActivity(ctx context.Context, entry *models.OfficerActivityLog) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("officer_activity_logs").
		Columns("officer_id", "action", "description", "created_at").
		Values(entry.OfficerID, entry.Action, entry.Description, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build log activity query: %w", err)
	}

	if err := r.database.Pool.QueryRow(ctx, sql, args...).Scan(&entry.ID); err != nil {
		return fmt.Errorf("error logging officer activity: %w", err)
	}
	entry.Timestamp = now

	return nil
}

func (r *officerRepository) ListActivity(ctx context.Context, officerID int64, limit int) ([]models.OfficerActivityLog, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	sql, args, err := r.sb.Select("id", "officer_id", "action", "description", "created_at").
		From("officer_activity_logs").
		Where(squirrel.Eq{"officer_id": officerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list activity query: %w", err)
	}

	rows, err := r.database.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing officer activity: %w", err)
	}
	defer rows.Close()

	var entries []models.OfficerActivityLog
	for rows.Next() {
		var entry models.OfficerActivityLog
		if err := rows.Scan(&entry.ID, &entry.OfficerID, &entry.Action, &entry.Description, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning activity row: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
