package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/app/models/dto"
	"github.com/jmwangi/bursaryhub/internal/app/repositories"
	"github.com/jmwangi/bursaryhub/internal/pkg/apperrors"
	"github.com/jmwangi/bursaryhub/internal/pkg/metrics"
	"github.com/jmwangi/bursaryhub/internal/pkg/notify"
)

// ApplicationService handles bursary application submission and retrieval
type ApplicationService struct {
	applicationRepo repositories.ApplicationRepository
	studentRepo     repositories.StudentRepository
	siteProfileRepo repositories.SiteProfileRepository
	notifier        notify.Notifier
	logger          zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	studentRepo repositories.StudentRepository,
	siteProfileRepo repositories.SiteProfileRepository,
	notifier notify.Notifier,
	logger zerolog.Logger,
) *ApplicationService {
	return &ApplicationService{
		applicationRepo: applicationRepo,
		studentRepo:     studentRepo,
		siteProfileRepo: siteProfileRepo,
		notifier:        notifier,
		logger:          logger,
	}
}

// Submit files a new bursary application for the logged-in student. The
// application window closes at the site profile deadline, a student may hold
// only one pending application per fund, and the constituency is copied from
// the student record at submission time.
func (s *ApplicationService) Submit(ctx context.Context, userID int64, req *dto.CreateApplicationRequest) (*models.BursaryApplication, error) {
	student, err := s.studentRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if student.VerificationStatus != models.VerificationVerified {
		metrics.ApplicationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, apperrors.ErrAccountNotVerified
	}

	if student.ConstituencyID == nil {
		metrics.ApplicationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, apperrors.NewBadRequestError("a constituency must be set on your profile before applying")
	}

	if err := s.checkWindowOpen(ctx); err != nil {
		metrics.ApplicationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	pending, err := s.applicationRepo.HasPendingApplication(ctx, student.ID, req.BursaryType)
	if err != nil {
		metrics.ApplicationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	if pending {
		metrics.ApplicationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, apperrors.ErrConflict
	}

	if req.FeesPaid > req.FeesRequired {
		metrics.ApplicationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, apperrors.NewBadRequestError("fees paid cannot exceed fees required")
	}
	if req.AmountRequested > req.FeesRequired-req.FeesPaid {
		metrics.ApplicationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, apperrors.NewBadRequestError("amount requested cannot exceed the fee balance")
	}

	app := &models.BursaryApplication{
		StudentID:       student.ID,
		ConstituencyID:  *student.ConstituencyID,
		WardID:          req.WardID,
		BursaryType:     req.BursaryType,
		FeesRequired:    req.FeesRequired,
		FeesPaid:        req.FeesPaid,
		AmountRequested: req.AmountRequested,
	}

	guardians := make([]models.Guardian, 0, len(req.Guardians))
	for _, g := range req.Guardians {
		guardians = append(guardians, models.Guardian{
			Name:         g.Name,
			Relationship: g.Relationship,
			IDNumber:     g.IDNumber,
			Occupation:   g.Occupation,
			Income:       g.Income,
			Phone:        g.Phone,
		})
	}

	siblings := make([]models.Sibling, 0, len(req.Siblings))
	for _, sib := range req.Siblings {
		siblings = append(siblings, models.Sibling{
			Name:       sib.Name,
			School:     sib.School,
			ClassLevel: sib.ClassLevel,
		})
	}

	if err := s.applicationRepo.Create(ctx, app, guardians, siblings); err != nil {
		metrics.ApplicationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.ApplicationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info().
		Int64("applicationID", app.ID).
		Int64("studentID", student.ID).
		Str("bursaryType", string(app.BursaryType)).
		Msg("Application submitted")

	go func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = s.notifier.Send(notifyCtx, notify.Message{
			Phone:   student.User.Phone,
			Email:   student.User.Email,
			Subject: "Application received",
			Body:    fmt.Sprintf("Your bursary application #%d has been received and is awaiting review.", app.ID),
		})
	}()

	return app, nil
}

// checkWindowOpen rejects submissions past the active profile's deadline.
// A deployment without a site profile accepts applications year-round.
func (s *ApplicationService) checkWindowOpen(ctx context.Context) error {
	profile, err := s.siteProfileRepo.GetActive(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil
		}
		return err
	}

	if !profile.IsApplicationOpen(time.Now()) {
		return apperrors.ErrApplicationsClosed
	}

	return nil
}

// Get returns one of the student's own applications
func (s *ApplicationService) Get(ctx context.Context, userID, applicationID int64) (*models.BursaryApplication, error) {
	student, err := s.studentRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if app.StudentID != student.ID {
		return nil, apperrors.ErrPermissionDenied
	}

	return app, nil
}

// ListMine returns all the student's applications, newest first
func (s *ApplicationService) ListMine(ctx context.Context, userID int64) ([]models.BursaryApplication, error) {
	student, err := s.studentRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.applicationRepo.ListByStudent(ctx, student.ID)
}
