package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/app/models/dto"
	"github.com/jmwangi/bursaryhub/internal/app/repositories"
	"github.com/jmwangi/bursaryhub/internal/pkg/apperrors"
	"github.com/jmwangi/bursaryhub/internal/pkg/auth"
	"github.com/jmwangi/bursaryhub/internal/pkg/metrics"
	"github.com/jmwangi/bursaryhub/internal/pkg/notify"
	"github.com/jmwangi/bursaryhub/internal/pkg/verification"
)

// Identifier formats accepted at the API boundary. NEMIS numbers are
// normalized to upper case before any lookup or insert.
var (
	nemisPattern      = regexp.MustCompile(`^[A-Z0-9]{4,20}$`)
	nationalIDPattern = regexp.MustCompile(`^[0-9]{6,10}$`)
)

// IdentityService implements student registration, login and the one-way
// NEMIS to national ID credential upgrade.
type IdentityService struct {
	studentRepo repositories.StudentRepository
	userRepo    repositories.UserRepository
	tokenRepo   repositories.TokenRepository
	jwtService  *auth.JWTService
	verifier    verification.Verifier
	notifier    notify.Notifier

	// requireVerifiedLogin gates login on registry verification when the
	// deployment demands it
	requireVerifiedLogin bool

	logger zerolog.Logger
}

// NewIdentityService creates a new IdentityService
func NewIdentityService(
	studentRepo repositories.StudentRepository,
	userRepo repositories.UserRepository,
	tokenRepo repositories.TokenRepository,
	jwtService *auth.JWTService,
	verifier verification.Verifier,
	notifier notify.Notifier,
	requireVerifiedLogin bool,
	logger zerolog.Logger,
) *IdentityService {
	return &IdentityService{
		studentRepo:          studentRepo,
		userRepo:             userRepo,
		tokenRepo:            tokenRepo,
		jwtService:           jwtService,
		verifier:             verifier,
		notifier:             notifier,
		requireVerifiedLogin: requireVerifiedLogin,
		logger:               logger,
	}
}

// NormalizeNemis canonicalizes a NEMIS number for storage and lookup
func NormalizeNemis(nemis string) string {
	return strings.ToUpper(strings.TrimSpace(nemis))
}

// ValidateNemis checks the NEMIS number format
func ValidateNemis(nemis string) error {
	if !nemisPattern.MatchString(NormalizeNemis(nemis)) {
		return fmt.Errorf("%w: NEMIS number must be 4-20 letters and digits", apperrors.ErrInvalidIdentifierFormat)
	}
	return nil
}

// ValidateNationalID checks the national ID format
func ValidateNationalID(nationalID string) error {
	if !nationalIDPattern.MatchString(strings.TrimSpace(nationalID)) {
		return fmt.Errorf("%w: national ID must be 6-10 digits", apperrors.ErrInvalidIdentifierFormat)
	}
	return nil
}

// RegisterStudent creates a student account keyed on a NEMIS number or a
// National ID, depending on the declared identifier type. The account starts
// unverified and no session is issued; the student logs in separately once
// registered. Identifier uniqueness is enforced by the database's unique
// indexes, so concurrent registrations of the same number cannot both succeed.
func (s *IdentityService) RegisterStudent(ctx context.Context, req *dto.RegisterStudentRequest) (*models.StudentAccount, error) {
	var identifier string
	switch req.IdentifierType {
	case models.CredentialNEMIS:
		identifier = NormalizeNemis(req.Identifier)
		if err := ValidateNemis(identifier); err != nil {
			metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			return nil, err
		}
	case models.CredentialNationalID:
		identifier = strings.TrimSpace(req.Identifier)
		if err := ValidateNationalID(identifier); err != nil {
			metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			return nil, err
		}
	default:
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, fmt.Errorf("%w: unknown identifier type %q", apperrors.ErrInvalidIdentifierFormat, req.IdentifierType)
	}

	if err := validatePassword(req.Password); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: identifier,
		Password: passwordHash,
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		RoleType: models.RoleStudent,
		IsActive: true,
	}

	student := &models.StudentAccount{
		ActiveCredential:   req.IdentifierType,
		VerificationStatus: models.VerificationUnverified,
		Institution:        req.Institution,
		Course:             req.Course,
		YearOfStudy:        req.YearOfStudy,
		Category:           req.Category,
		ConstituencyID:     req.ConstituencyID,
	}
	if req.IdentifierType == models.CredentialNationalID {
		student.NationalID = &identifier
	} else {
		student.NemisNumber = &identifier
	}

	if err := s.studentRepo.CreateWithUser(ctx, user, student); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateIdentifier) {
			metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			s.logger.Warn().Str("identifier", identifier).Msg("Registration rejected, identifier already in use")
			return nil, apperrors.ErrDuplicateIdentifier
		}
		metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	student.User = user

	metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info().Int64("studentID", student.ID).Msg("Student registered")

	// Registry verification and the welcome message run in the background;
	// registration never waits on external collaborators.
	credentialName := "NEMIS number"
	if req.IdentifierType == models.CredentialNationalID {
		credentialName = "National ID"
	}
	s.verifyAsync(student.ID, req.IdentifierType, identifier)
	s.notifyAsync(notify.Message{
		Phone:   user.Phone,
		Email:   user.Email,
		Subject: "Bursary account created",
		Body: fmt.Sprintf("Hello %s, your bursary account with %s %s has been created. You can now log in and apply.",
			user.FullName, credentialName, identifier),
	})

	return student, nil
}

// Authenticate verifies credentials and issues a token pair. The identifier
// matches either the NEMIS number or the national ID, whichever the student
// still remembers. An unknown identifier reports invalid credentials rather
// than account existence.
func (s *IdentityService) Authenticate(ctx context.Context, identifier, password string) (*models.StudentAccount, *dto.TokenResponse, error) {
	identifier = NormalizeNemis(identifier)
	if identifier == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	student, err := s.studentRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			metrics.LoginsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, nil, err
	}

	if !auth.CheckPassword(student.User.Password, password) {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	if !student.User.IsActive {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	if s.requireVerifiedLogin && student.VerificationStatus != models.VerificationVerified {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, nil, apperrors.ErrAccountNotVerified
	}

	tokens, err := s.issueTokens(ctx, student.User)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, nil, err
	}

	if err := s.userRepo.UpdateLastLogin(ctx, student.User.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", student.User.ID).Msg("Failed to update last login")
	}

	metrics.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return student, tokens, nil
}

// UpgradeToNationalID attaches a national ID to a NEMIS-registered account
// and makes it the active login credential. The NEMIS number is retained so
// existing logins keep working. The upgrade is one-way and can only happen
// once per account.
func (s *IdentityService) UpgradeToNationalID(ctx context.Context, userID int64, nationalID string) (*models.StudentAccount, error) {
	nationalID = strings.TrimSpace(nationalID)
	if err := ValidateNationalID(nationalID); err != nil {
		metrics.UpgradesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	student, err := s.studentRepo.FindByUserID(ctx, userID)
	if err != nil {
		metrics.UpgradesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	if student.Upgraded() {
		metrics.UpgradesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, apperrors.ErrAlreadyUpgraded
	}

	if err := s.studentRepo.AttachNationalID(ctx, student.ID, nationalID); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateIdentifier) {
			metrics.UpgradesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			s.logger.Warn().Int64("studentID", student.ID).Msg("Upgrade rejected, national ID already in use")
			return nil, apperrors.ErrDuplicateIdentifier
		}
		metrics.UpgradesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	metrics.UpgradesTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info().Int64("studentID", student.ID).Msg("Account upgraded to national ID")

	// The new credential is checked against the civil registry; the account
	// keeps its current verification status until the check completes.
	s.verifyAsync(student.ID, models.CredentialNationalID, nationalID)
	s.notifyAsync(notify.Message{
		Phone:   student.User.Phone,
		Email:   student.User.Email,
		Subject: "Account upgraded",
		Body:    "Your bursary account now uses your national ID as the login credential. Your NEMIS number also still works.",
	})

	return s.studentRepo.FindByID(ctx, student.ID)
}

// ApplyVerification runs the registry check for the student's active
// credential and records the outcome. Verification is idempotent: repeating
// it on a verified account leaves the account verified, and a failed account
// may verify later once the registry catches up.
func (s *IdentityService) ApplyVerification(ctx context.Context, studentID int64) (models.VerificationStatus, error) {
	student, err := s.studentRepo.FindByID(ctx, studentID)
	if err != nil {
		return "", err
	}

	return s.runVerification(ctx, student, student.ActiveCredential, student.ActiveIdentifier())
}

// runVerification checks one credential and persists the resulting status
func (s *IdentityService) runVerification(ctx context.Context, student *models.StudentAccount, credential models.CredentialType, identifier string) (models.VerificationStatus, error) {
	result, err := s.verifier.Verify(ctx, credential, identifier)
	if err != nil {
		// Registry failure leaves the stored status untouched
		metrics.VerificationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.Error().Err(err).Int64("studentID", student.ID).Msg("Registry verification errored")
		return student.VerificationStatus, fmt.Errorf("verification failed: %w", err)
	}

	status := models.VerificationFailed
	if result.Verified {
		status = models.VerificationVerified
	}

	// Verification never moves backwards: a failed registry answer does not
	// knock an already verified account down to FAILED.
	if status == models.VerificationFailed && student.VerificationStatus == models.VerificationVerified {
		s.logger.Warn().
			Int64("studentID", student.ID).
			Str("reason", result.Reason).
			Msg("Registry check failed for an already verified account, keeping VERIFIED")
		return models.VerificationVerified, nil
	}

	if err := s.studentRepo.SetVerificationStatus(ctx, student.ID, status); err != nil {
		metrics.VerificationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return student.VerificationStatus, err
	}

	metrics.VerificationsTotal.WithLabelValues(strings.ToLower(string(status))).Inc()
	s.logger.Info().
		Int64("studentID", student.ID).
		Str("status", string(status)).
		Str("reason", result.Reason).
		Msg("Verification completed")

	if status == models.VerificationVerified {
		s.notifyAsync(notify.Message{
			Phone:   student.User.Phone,
			Email:   student.User.Email,
			Subject: "Identity verified",
			Body:    "Your identity has been verified. Your bursary applications will now be considered for review.",
		})
	}

	return status, nil
}

// GetProfile returns the student account behind a login
func (s *IdentityService) GetProfile(ctx context.Context, userID int64) (*models.StudentAccount, error) {
	return s.studentRepo.FindByUserID(ctx, userID)
}

// RefreshToken rotates a refresh token into a new token pair
func (s *IdentityService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	userID, err := s.tokenRepo.GetTokenUser(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to revoke rotated refresh token")
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes every refresh token the user holds
func (s *IdentityService) Logout(ctx context.Context, userID int64) error {
	return s.tokenRepo.RevokeAllUserTokens(ctx, userID)
}

// ChangePassword replaces the user's password after checking the current one
func (s *IdentityService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.Password, currentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	// Old sessions die with the old password
	return s.tokenRepo.RevokeAllUserTokens(ctx, userID)
}

func (s *IdentityService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}

	if err := s.tokenRepo.CreateToken(ctx, refreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:           accessToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(expiresIn),
		RefreshToken:          refreshToken,
		RefreshTokenExpiresIn: int64(refreshExpiresIn),
	}, nil
}

// verifyAsync runs the registry check without blocking the caller
func (s *IdentityService) verifyAsync(studentID int64, credential models.CredentialType, identifier string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		student, err := s.studentRepo.FindByID(ctx, studentID)
		if err != nil {
			s.logger.Error().Err(err).Int64("studentID", studentID).Msg("Async verification could not load student")
			return
		}

		if _, err := s.runVerification(ctx, student, credential, identifier); err != nil {
			s.logger.Error().Err(err).Int64("studentID", studentID).Msg("Async verification failed")
		}
	}()
}

// notifyAsync dispatches a notification without blocking the caller.
// Delivery failures are logged by the notifier, never returned.
func (s *IdentityService) notifyAsync(msg notify.Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("Notification failed")
		}
	}()
}

// validatePassword checks minimum password requirements
func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", apperrors.ErrInvalidPassword)
	}
	return nil
}
