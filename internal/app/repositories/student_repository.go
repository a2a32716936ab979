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
	"github.com/jmwangi/bursaryhub/internal/pkg/logger"
)

// Unique constraint names from the students and users tables
const (
	constraintStudentsNemis      = "uq_students_nemis"
	constraintStudentsNationalID = "uq_students_national_id"
	constraintUsersUsername      = "users_username_key"
)

// StudentRepository defines the persistence operations behind student identity
type StudentRepository interface {
	// CreateWithUser inserts the login account and the student record in one
	// transaction. The database's unique indexes are the final arbiter of
	// identifier uniqueness; a violation surfaces as ErrDuplicateIdentifier.
	CreateWithUser(ctx context.Context, user *models.User, student *models.StudentAccount) error

	// FindByIdentifier resolves a student by NEMIS number or national ID,
	// matching both columns regardless of which credential is active.
	FindByIdentifier(ctx context.Context, identifier string) (*models.StudentAccount, error)

	FindByUserID(ctx context.Context, userID int64) (*models.StudentAccount, error)
	FindByID(ctx context.Context, id int64) (*models.StudentAccount, error)

	// AttachNationalID records the upgrade: sets national_id, flips the
	// active credential, stamps upgraded_at and mirrors the new credential
	// into users.username. The NEMIS number is retained.
	AttachNationalID(ctx context.Context, studentID int64, nationalID string) error

	SetVerificationStatus(ctx context.Context, studentID int64, status models.VerificationStatus) error
}

// studentRepository is the PostgreSQL implementation of StudentRepository
type studentRepository struct {
	database *db.PostgresDB
	sb       squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(database *db.PostgresDB) StudentRepository {
	return &studentRepository{
		database: database,
		sb:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var studentColumns = []string{
	"s.id", "s.user_id", "s.nemis_number", "s.national_id", "s.active_credential",
	"s.verification_status", "s.institution", "s.course", "s.year_of_study",
	"s.category", "s.constituency_id", "s.created_at", "s.upgraded_at",
	"u.id", "u.username", "u.password", "u.full_name", "u.phone", "u.email",
	"u.role_type", "u.is_active", "u.created_at", "u.updated_at", "u.last_login_at",
}

func (r *studentRepository) CreateWithUser(ctx context.Context, user *models.User, student *models.StudentAccount) error {
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
				return apperrors.ErrDuplicateIdentifier
			}
			return fmt.Errorf("error creating user: %w", err)
		}

		student.UserID = user.ID
		studentSQL, studentArgs, err := r.sb.Insert("students").
			Columns("user_id", "nemis_number", "national_id", "active_credential", "verification_status",
				"institution", "course", "year_of_study", "category", "constituency_id", "created_at").
			Values(student.UserID, student.NemisNumber, student.NationalID, student.ActiveCredential,
				student.VerificationStatus, student.Institution, student.Course, student.YearOfStudy,
				student.Category, student.ConstituencyID, now).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create student query: %w", err)
		}

		if err := tx.QueryRow(ctx, studentSQL, studentArgs...).Scan(&student.ID); err != nil {
			if dberrors.IsDuplicateConstraintError(err, constraintStudentsNemis) ||
				dberrors.IsDuplicateConstraintError(err, constraintStudentsNationalID) {
				return apperrors.ErrDuplicateIdentifier
			}
			return fmt.Errorf("error creating student: %w", err)
		}

		student.CreatedAt = now
		user.CreatedAt = now
		user.UpdatedAt = now
		return nil
	})
}

func (r *studentRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.StudentAccount, error) {
	return r.findOne(ctx, squirrel.Or{
		squirrel.Eq{"s.nemis_number": identifier},
		squirrel.Eq{"s.national_id": identifier},
	})
}

func (r *studentRepository) FindByUserID(ctx context.Context, userID int64) (*models.StudentAccount, error) {
	return r.findOne(ctx, squirrel.Eq{"s.user_id": userID})
}

func (r *studentRepository) FindByID(ctx context.Context, id int64) (*models.StudentAccount, error) {
	return r.findOne(ctx, squirrel.Eq{"s.id": id})
}

func (r *studentRepository) findOne(ctx context.Context, pred interface{}) (*models.StudentAccount, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students s").
		Join("users u ON u.id = s.user_id").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build find student query: %w", err)
	}

	student := &models.StudentAccount{User: &models.User{}}
	err = r.database.Pool.QueryRow(ctx, sql, args...).Scan(
		&student.ID, &student.UserID, &student.NemisNumber, &student.NationalID, &student.ActiveCredential,
		&student.VerificationStatus, &student.Institution, &student.Course, &student.YearOfStudy,
		&student.Category, &student.ConstituencyID, &student.CreatedAt, &student.UpgradedAt,
		&student.User.ID, &student.User.Username, &student.User.Password, &student.User.FullName,
		&student.User.Phone, &student.User.Email, &student.User.RoleType, &student.User.IsActive,
		&student.User.CreatedAt, &student.User.UpdatedAt, &student.User.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		logger.Error().Err(err).Msg("Error scanning student row")
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return student, nil
}

func (r *studentRepository) AttachNationalID(ctx context.Context, studentID int64, nationalID string) error {
	return r.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		now := time.Now()

		// The active_credential predicate makes the upgrade atomic: of two
		// concurrent upgrades only the first matches a row, the loser falls
		// through to the existence check below.
		updateSQL, updateArgs, err := r.sb.Update("students").
			Set("national_id", nationalID).
			Set("active_credential", models.CredentialNationalID).
			Set("upgraded_at", now).
			Where(squirrel.Eq{"id": studentID, "active_credential": models.CredentialNEMIS}).
			Suffix("RETURNING user_id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build upgrade query: %w", err)
		}

		var userID int64
		if err := tx.QueryRow(ctx, updateSQL, updateArgs...).Scan(&userID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				var exists bool
				checkErr := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM students WHERE id = $1)", studentID).Scan(&exists)
				if checkErr != nil {
					return fmt.Errorf("error checking student existence: %w", checkErr)
				}
				if exists {
					return apperrors.ErrAlreadyUpgraded
				}
				return apperrors.ErrAccountNotFound
			}
			if dberrors.IsDuplicateConstraintError(err, constraintStudentsNationalID) {
				return apperrors.ErrDuplicateIdentifier
			}
			return fmt.Errorf("error attaching national ID: %w", err)
		}

		// Username mirrors the active credential
		userSQL, userArgs, err := r.sb.Update("users").
			Set("username", nationalID).
			Set("updated_at", now).
			Where(squirrel.Eq{"id": userID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build username update query: %w", err)
		}

		if _, err := tx.Exec(ctx, userSQL, userArgs...); err != nil {
			if dberrors.IsDuplicateConstraintError(err, constraintUsersUsername) {
				return apperrors.ErrDuplicateIdentifier
			}
			return fmt.Errorf("error updating username: %w", err)
		}

		return nil
	})
}

func (r *studentRepository) SetVerificationStatus(ctx context.Context, studentID int64, status models.VerificationStatus) error {
	sql, args, err := r.sb.Update("students").
		Set("verification_status", status).
		Where(squirrel.Eq{"id": studentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build verification status query: %w", err)
	}

	cmdTag, err := r.database.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating verification status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}

	return nil
}
