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
	"github.com/jmwangi/bursaryhub/internal/pkg/logger"
)

// ApplicationFilter narrows the officer review listing
type ApplicationFilter struct {
	ConstituencyID int64
	BursaryType    models.BursaryType
	Status         models.ApplicationStatus
	Page           int
	PageSize       int
}

// ApplicationRepository handles bursary application persistence
type ApplicationRepository interface {
	// Create inserts the application together with its guardians and
	// siblings in one transaction.
	Create(ctx context.Context, app *models.BursaryApplication, guardians []models.Guardian, siblings []models.Sibling) error

	GetByID(ctx context.Context, id int64) (*models.BursaryApplication, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.BursaryApplication, error)

	// ListForReview returns the page of applications visible to an officer,
	// scoped by constituency and fund.
	ListForReview(ctx context.Context, filter ApplicationFilter) ([]models.BursaryApplication, int64, error)

	// Review records the officer decision on a pending application
	Review(ctx context.Context, id int64, status models.ApplicationStatus, amountAwarded *float64, feedback string) error

	// HasPendingApplication reports whether the student already has an
	// undecided application for the given fund.
	HasPendingApplication(ctx context.Context, studentID int64, bursaryType models.BursaryType) (bool, error)
}

type applicationRepository struct {
	database *db.PostgresDB
	sb       squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(database *db.PostgresDB) ApplicationRepository {
	return &applicationRepository{
		database: database,
		sb:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var applicationColumns = []string{
	"id", "student_id", "constituency_id", "ward_id", "bursary_type",
	"fees_required", "fees_paid", "amount_requested", "amount_awarded",
	"status", "feedback", "date_applied",
}

func (r *applicationRepository) Create(ctx context.Context, app *models.BursaryApplication, guardians []models.Guardian, siblings []models.Sibling) error {
	return r.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		now := time.Now()

		appSQL, appArgs, err := r.sb.Insert("bursary_applications").
			Columns("student_id", "constituency_id", "ward_id", "bursary_type",
				"fees_required", "fees_paid", "amount_requested", "status", "date_applied").
			Values(app.StudentID, app.ConstituencyID, app.WardID, app.BursaryType,
				app.FeesRequired, app.FeesPaid, app.AmountRequested, models.ApplicationPending, now).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create application query: %w", err)
		}

		if err := tx.QueryRow(ctx, appSQL, appArgs...).Scan(&app.ID); err != nil {
			return fmt.Errorf("error creating application: %w", err)
		}
		app.Status = models.ApplicationPending
		app.DateApplied = now

		for i := range guardians {
			g := &guardians[i]
			g.StudentID = app.StudentID
			gSQL, gArgs, err := r.sb.Insert("guardians").
				Columns("student_id", "name", "relationship", "id_number", "occupation", "income", "phone").
				Values(g.StudentID, g.Name, g.Relationship, g.IDNumber, g.Occupation, g.Income, g.Phone).
				Suffix("RETURNING id").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build create guardian query: %w", err)
			}
			if err := tx.QueryRow(ctx, gSQL, gArgs...).Scan(&g.ID); err != nil {
				return fmt.Errorf("error creating guardian: %w", err)
			}
		}

		for i := range siblings {
			s := &siblings[i]
			s.StudentID = app.StudentID
			sSQL, sArgs, err := r.sb.Insert("siblings").
				Columns("student_id", "name", "school", "class_level").
				Values(s.StudentID, s.Name, s.School, s.ClassLevel).
				Suffix("RETURNING id").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build create sibling query: %w", err)
			}
			if err := tx.QueryRow(ctx, sSQL, sArgs...).Scan(&s.ID); err != nil {
				return fmt.Errorf("error creating sibling: %w", err)
			}
		}

		app.Guardians = guardians
		app.Siblings = siblings
		return nil
	})
}

func (r *applicationRepository) GetByID(ctx context.Context, id int64) (*models.BursaryApplication, error) {
	sql, args, err := r.sb.Select(applicationColumns...).
		From("bursary_applications").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app := &models.BursaryApplication{}
	err = r.database.Pool.QueryRow(ctx, sql, args...).Scan(
		&app.ID, &app.StudentID, &app.ConstituencyID, &app.WardID, &app.BursaryType,
		&app.FeesRequired, &app.FeesPaid, &app.AmountRequested, &app.AmountAwarded,
		&app.Status, &app.Feedback, &app.DateApplied,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}

	if err := r.loadFamily(ctx, app); err != nil {
		return nil, err
	}

	return app, nil
}

// loadFamily populates the guardians and siblings relations
func (r *applicationRepository) loadFamily(ctx context.Context, app *models.BursaryApplication) error {
	gSQL, gArgs, err := r.sb.Select("id", "student_id", "name", "relationship", "id_number", "occupation", "income", "phone").
		From("guardians").
		Where(squirrel.Eq{"student_id": app.StudentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build guardians query: %w", err)
	}

	rows, err := r.database.Pool.Query(ctx, gSQL, gArgs...)
	if err != nil {
		return fmt.Errorf("error listing guardians: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g models.Guardian
		if err := rows.Scan(&g.ID, &g.StudentID, &g.Name, &g.Relationship, &g.IDNumber, &g.Occupation, &g.Income, &g.Phone); err != nil {
			return fmt.Errorf("error scanning guardian row: %w", err)
		}
		app.Guardians = append(app.Guardians, g)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	sSQL, sArgs, err := r.sb.Select("id", "student_id", "name", "school", "class_level").
		From("siblings").
		Where(squirrel.Eq{"student_id": app.StudentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build siblings query: %w", err)
	}

	sRows, err := r.database.Pool.Query(ctx, sSQL, sArgs...)
	if err != nil {
		return fmt.Errorf("error listing siblings: %w", err)
	}
	defer sRows.Close()

	for sRows.Next() {
		var s models.Sibling
		if err := sRows.Scan(&s.ID, &s.StudentID, &s.Name, &s.School, &s.ClassLevel); err != nil {
			return fmt.Errorf("error scanning sibling row: %w", err)
		}
		app.Siblings = append(app.Siblings, s)
	}

	return sRows.Err()
}

func (r *applicationRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.BursaryApplication, error) {
	sql, args, err := r.sb.Select(applicationColumns...).
		From("bursary_applications").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("date_applied DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list applications query: %w", err)
	}

	return r.scanApplications(ctx, sql, args)
}

func (r *applicationRepository) ListForReview(ctx context.Context, filter ApplicationFilter) ([]models.BursaryApplication, int64, error) {
	where := squirrel.And{
		squirrel.Eq{"constituency_id": filter.ConstituencyID},
		squirrel.Eq{"bursary_type": filter.BursaryType},
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").
		From("bursary_applications").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count applications query: %w", err)
	}

	var total int64
	if err := r.database.Pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting applications: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	sql, args, err := r.sb.Select(applicationColumns...).
		From("bursary_applications").
		Where(where).
		OrderBy("date_applied ASC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	apps, err := r.scanApplications(ctx, sql, args)
	if err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

func (r *applicationRepository) scanApplications(ctx context.Context, sql string, args []interface{}) ([]models.BursaryApplication, error) {
	rows, err := r.database.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	var apps []models.BursaryApplication
	for rows.Next() {
		var app models.BursaryApplication
		if err := rows.Scan(
			&app.ID, &app.StudentID, &app.ConstituencyID, &app.WardID, &app.BursaryType,
			&app.FeesRequired, &app.FeesPaid, &app.AmountRequested, &app.AmountAwarded,
			&app.Status, &app.Feedback, &app.DateApplied,
		); err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

func (r *applicationRepository) Review(ctx context.Context, id int64, status models.ApplicationStatus, amountAwarded *float64, feedback string) error {
	sql, args, err := r.sb.Update("bursary_applications").
		Set("status", status).
		Set("amount_awarded", amountAwarded).
		Set("feedback", feedback).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build review query: %w", err)
	}

	cmdTag, err := r.database.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error executing review query")
		return fmt.Errorf("error reviewing application: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrApplicationNotFound
	}

	return nil
}

func (r *applicationRepository) HasPendingApplication(ctx context.Context, studentID int64, bursaryType models.BursaryType) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("bursary_applications").
		Where(squirrel.Eq{
			"student_id":   studentID,
			"bursary_type": bursaryType,
			"status":       models.ApplicationPending,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build pending application query: %w", err)
	}

	var one int
	err = r.database.Pool.QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("error checking pending application: %w", err)
	}

	return true, nil
}
