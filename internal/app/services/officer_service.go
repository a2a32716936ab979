package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/app/models/dto"
	"github.com/jmwangi/bursaryhub/internal/app/repositories"
	"github.com/jmwangi/bursaryhub/internal/pkg/apperrors"
	"github.com/jmwangi/bursaryhub/internal/pkg/auth"
	"github.com/jmwangi/bursaryhub/internal/pkg/notify"
)

// OfficerService handles officer management and application review. Every
// review decision is written to the officer activity trail.
type OfficerService struct {
	officerRepo     repositories.OfficerRepository
	applicationRepo repositories.ApplicationRepository
	studentRepo     repositories.StudentRepository
	notifier        notify.Notifier
	logger          zerolog.Logger
}

// NewOfficerService creates a new OfficerService
func NewOfficerService(
	officerRepo repositories.OfficerRepository,
	applicationRepo repositories.ApplicationRepository,
	studentRepo repositories.StudentRepository,
	notifier notify.Notifier,
	logger zerolog.Logger,
) *OfficerService {
	return &OfficerService{
		officerRepo:     officerRepo,
		applicationRepo: applicationRepo,
		studentRepo:     studentRepo,
		notifier:        notifier,
		logger:          logger,
	}
}

// CreateOfficer registers a review officer. Only managers and admins reach
// this through the API.
func (s *OfficerService) CreateOfficer(ctx context.Context, actorUserID int64, req *dto.CreateOfficerRequest) (*models.OfficerProfile, error) {
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: req.Username,
		Password: passwordHash,
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		RoleType: models.RoleOfficer,
		IsActive: true,
	}

	officer := &models.OfficerProfile{
		ConstituencyID: req.ConstituencyID,
		BursaryType:    req.BursaryType,
		IsManager:      req.IsManager,
		Designation:    req.Designation,
	}

	if err := s.officerRepo.CreateWithUser(ctx, user, officer); err != nil {
		return nil, err
	}
	officer.User = user

	s.recordActivity(ctx, actorUserID, models.ActionAddOfficer,
		fmt.Sprintf("added officer %s for constituency %d", req.Username, req.ConstituencyID))

	s.logger.Info().Int64("officerUserID", user.ID).Msg("Officer created")
	return officer, nil
}

// ListOfficers returns the officers in a constituency
func (s *OfficerService) ListOfficers(ctx context.Context, constituencyID int64) ([]models.OfficerProfile, error) {
	return s.officerRepo.ListByConstituency(ctx, constituencyID)
}

// ListForReview returns the page of applications in the officer's scope.
// Officers only ever see their own constituency and fund.
func (s *OfficerService) ListForReview(ctx context.Context, officerUserID int64, status models.ApplicationStatus, page, pageSize int) ([]models.BursaryApplication, int64, error) {
	officer, err := s.officerRepo.GetByUserID(ctx, officerUserID)
	if err != nil {
		return nil, 0, err
	}

	return s.applicationRepo.ListForReview(ctx, repositories.ApplicationFilter{
		ConstituencyID: officer.ConstituencyID,
		BursaryType:    officer.BursaryType,
		Status:         status,
		Page:           page,
		PageSize:       pageSize,
	})
}

// Review records the officer's decision on a pending application in their
// scope. Approvals must carry an award amount no larger than the amount
// requested.
func (s *OfficerService) Review(ctx context.Context, officerUserID, applicationID int64, req *dto.ReviewApplicationRequest) (*models.BursaryApplication, error) {
	officer, err := s.officerRepo.GetByUserID(ctx, officerUserID)
	if err != nil {
		return nil, err
	}

	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if app.ConstituencyID != officer.ConstituencyID || app.BursaryType != officer.BursaryType {
		return nil, apperrors.ErrPermissionDenied
	}

	if app.Status != models.ApplicationPending {
		return nil, apperrors.ErrInvalidStatus
	}

	if req.Status == models.ApplicationApproved {
		if req.AmountAwarded == nil {
			return nil, apperrors.NewBadRequestError("an award amount is required for approval")
		}
		if *req.AmountAwarded > app.AmountRequested {
			return nil, apperrors.NewBadRequestError("award cannot exceed the amount requested")
		}
	}

	amount := req.AmountAwarded
	if req.Status == models.ApplicationRejected {
		amount = nil
	}

	if err := s.applicationRepo.Review(ctx, applicationID, req.Status, amount, req.Feedback); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, officerUserID, models.ActionReviewApplication,
		fmt.Sprintf("application %d marked %s", applicationID, req.Status))

	s.logger.Info().
		Int64("applicationID", applicationID).
		Int64("officerUserID", officerUserID).
		Str("status", string(req.Status)).
		Msg("Application reviewed")

	s.notifyDecision(app.StudentID, applicationID, req.Status, amount)

	return s.applicationRepo.GetByID(ctx, applicationID)
}

// ListActivity returns the officer's recent audit trail
func (s *OfficerService) ListActivity(ctx context.Context, officerUserID int64, limit int) ([]models.OfficerActivityLog, error) {
	officer, err := s.officerRepo.GetByUserID(ctx, officerUserID)
	if err != nil {
		return nil, err
	}

	return s.officerRepo.ListActivity(ctx, officer.ID, limit)
}

// recordActivity appends to the audit trail, logging failures instead of
// failing the operation
func (s *OfficerService) recordActivity(ctx context.Context, officerUserID int64, action models.OfficerAction, description string) {
	officer, err := s.officerRepo.GetByUserID(ctx, officerUserID)
	if err != nil {
		// Admins acting without an officer profile still pass through here
		s.logger.Debug().Int64("userID", officerUserID).Msg("No officer profile for activity log")
		return
	}

	entry := &models.OfficerActivityLog{
		OfficerID:   officer.ID,
		Action:      action,
		Description: description,
	}
	if err := s.officerRepo.LogActivity(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record officer activity")
	}
}

// notifyDecision tells the student how the review went
func (s *OfficerService) notifyDecision(studentID, applicationID int64, status models.ApplicationStatus, amount *float64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		student, err := s.studentRepo.FindByID(ctx, studentID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("studentID", studentID).Msg("Could not load student for decision notice")
			return
		}

		body := fmt.Sprintf("Your bursary application #%d has been %s.", applicationID, status)
		if status == models.ApplicationApproved && amount != nil {
			body = fmt.Sprintf("Your bursary application #%d has been approved for KES %.2f.", applicationID, *amount)
		}

		_ = s.notifier.Send(ctx, notify.Message{
			Phone:   student.User.Phone,
			Email:   student.User.Email,
			Subject: "Bursary application decision",
			Body:    body,
		})
	}()
}
