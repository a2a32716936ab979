package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/app/models/dto"
	"github.com/jmwangi/bursaryhub/internal/pkg/apperrors"
	"github.com/jmwangi/bursaryhub/internal/pkg/auth"
	"github.com/jmwangi/bursaryhub/internal/pkg/verification"
)

type identityFixture struct {
	service  *IdentityService
	students *memStudentRepo
	tokens   *memTokenRepo
	verifier *stubVerifier
	notifier *recordingNotifier
}

func newIdentityFixture(t *testing.T, requireVerifiedLogin bool) *identityFixture {
	t.Helper()

	students := newMemStudentRepo()
	verifier := newStubVerifier()
	notifier := &recordingNotifier{}
	tokens := newMemTokenRepo()

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})

	service := NewIdentityService(
		students,
		&memUserRepo{students: students},
		tokens,
		jwtService,
		verifier,
		notifier,
		requireVerifiedLogin,
		zerolog.Nop(),
	)

	return &identityFixture{
		service:  service,
		students: students,
		tokens:   tokens,
		verifier: verifier,
		notifier: notifier,
	}
}

func registerRequest(nemis string) *dto.RegisterStudentRequest {
	return &dto.RegisterStudentRequest{
		Identifier:     nemis,
		IdentifierType: models.CredentialNEMIS,
		Password:       "password123",
		FullName:       "Amina Wanjiru",
		Phone:          "+254712345678",
		Institution:    "Maralal High School",
		Category:       models.CategoryBoarding,
	}
}

func registerNationalIDRequest(nationalID string) *dto.RegisterStudentRequest {
	req := registerRequest(nationalID)
	req.IdentifierType = models.CredentialNationalID
	req.Institution = "Kenyatta University"
	req.Category = models.CategoryUniversity
	return req
}

func TestRegisterStudent(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	student, err := f.service.RegisterStudent(ctx, registerRequest("sa2024001"))
	require.NoError(t, err)

	// NEMIS is normalized to upper case and becomes the active credential
	require.NotNil(t, student.NemisNumber)
	assert.Equal(t, "SA2024001", *student.NemisNumber)
	assert.Equal(t, models.CredentialNEMIS, student.ActiveCredential)
	assert.Nil(t, student.NationalID)
	assert.Equal(t, models.VerificationUnverified, student.VerificationStatus)
	assert.Equal(t, "SA2024001", student.User.Username)

	// Registration issues no session; verification runs in the background
	assert.Eventually(t, func() bool {
		stored, err := f.students.FindByID(ctx, student.ID)
		return err == nil && stored.VerificationStatus == models.VerificationVerified
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegisterStudent_DuplicateNemis(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	_, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	// Same number with different case is still the same identifier
	_, err = f.service.RegisterStudent(ctx, registerRequest("sa2024001"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateIdentifier)
}

func TestRegisterStudent_InvalidFormat(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	for _, nemis := range []string{"", "AB1", "HAS SPACES", "WAY-TOO-LONG-FOR-A-NEMIS-NUMBER", "nemis!"} {
		_, err := f.service.RegisterStudent(ctx, registerRequest(nemis))
		assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifierFormat, "nemis %q", nemis)
	}
}

func TestRegisterStudent_ShortPassword(t *testing.T) {
	f := newIdentityFixture(t, false)

	req := registerRequest("SA2024001")
	req.Password = "short"
	_, err := f.service.RegisterStudent(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}

func TestRegisterStudent_NationalID(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	student, err := f.service.RegisterStudent(ctx, registerNationalIDRequest("23416789"))
	require.NoError(t, err)

	// The national ID is the active credential from day one
	require.NotNil(t, student.NationalID)
	assert.Equal(t, "23416789", *student.NationalID)
	assert.Nil(t, student.NemisNumber)
	assert.Equal(t, models.CredentialNationalID, student.ActiveCredential)
	assert.Equal(t, "23416789", student.User.Username)

	assert.Eventually(t, func() bool {
		stored, err := f.students.FindByID(ctx, student.ID)
		return err == nil && stored.VerificationStatus == models.VerificationVerified
	}, 2*time.Second, 10*time.Millisecond)

	// An account registered on a national ID has nothing left to upgrade
	_, err = f.service.UpgradeToNationalID(ctx, student.UserID, "23416790")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyUpgraded)

	_, _, err = f.service.Authenticate(ctx, "23416789", "password123")
	assert.NoError(t, err)
}

func TestRegisterStudent_NationalIDInvalidFormat(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	for _, id := range []string{"", "12345", "12345678901", "23A16789"} {
		_, err := f.service.RegisterStudent(ctx, registerNationalIDRequest(id))
		assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifierFormat, "national ID %q", id)
	}
}

func TestRegisterStudent_VerifierUnavailable(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	f.verifier.setErr("SA2024001", errors.New("registry unreachable"))

	student, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	// The background check runs and errors out, the stored status stays put
	assert.Eventually(t, func() bool {
		return f.verifier.callCount() > 0
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := f.students.FindByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationUnverified, stored.VerificationStatus)
}

func TestRegisterStudent_ConcurrentDuplicate(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
		}(i)
	}
	wg.Wait()

	var succeeded, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperrors.ErrDuplicateIdentifier):
			duplicates++
		default:
			t.Fatalf("unexpected registration error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, duplicates)
}

func TestAuthenticate(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	_, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	student, tokens, err := f.service.Authenticate(ctx, "sa2024001", "password123")
	require.NoError(t, err)
	assert.Equal(t, "SA2024001", *student.NemisNumber)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	_, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	_, _, err = f.service.Authenticate(ctx, "SA2024001", "not-the-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthenticate_UnknownIdentifier(t *testing.T) {
	f := newIdentityFixture(t, false)

	// Unknown identifiers report invalid credentials, not account existence
	_, _, err := f.service.Authenticate(context.Background(), "SA9999999", "password123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthenticate_RequireVerifiedLogin(t *testing.T) {
	f := newIdentityFixture(t, true)
	ctx := context.Background()

	f.verifier.set("SA2024001", verification.Result{Verified: false, Reason: "not in registry"})

	student, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stored, err := f.students.FindByID(ctx, student.ID)
		return err == nil && stored.VerificationStatus == models.VerificationFailed
	}, 2*time.Second, 10*time.Millisecond)

	_, _, err = f.service.Authenticate(ctx, "SA2024001", "password123")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotVerified)

	// The registry catches up, the next verification flips FAILED to VERIFIED
	f.verifier.set("SA2024001", verification.Result{Verified: true})
	status, err := f.service.ApplyVerification(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, status)

	_, _, err = f.service.Authenticate(ctx, "SA2024001", "password123")
	assert.NoError(t, err)
}

func TestUpgradeToNationalID(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	registered, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	upgraded, err := f.service.UpgradeToNationalID(ctx, registered.UserID, "23416789")
	require.NoError(t, err)

	// The national ID becomes active but the NEMIS number is retained
	assert.Equal(t, models.CredentialNationalID, upgraded.ActiveCredential)
	require.NotNil(t, upgraded.NationalID)
	assert.Equal(t, "23416789", *upgraded.NationalID)
	require.NotNil(t, upgraded.NemisNumber)
	assert.Equal(t, "SA2024001", *upgraded.NemisNumber)
	assert.NotNil(t, upgraded.UpgradedAt)
	assert.Equal(t, "23416789", upgraded.User.Username)

	// Both identifiers keep working for login
	_, _, err = f.service.Authenticate(ctx, "23416789", "password123")
	assert.NoError(t, err)
	_, _, err = f.service.Authenticate(ctx, "SA2024001", "password123")
	assert.NoError(t, err)
}

func TestUpgradeToNationalID_OnlyOnce(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	registered, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	_, err = f.service.UpgradeToNationalID(ctx, registered.UserID, "23416789")
	require.NoError(t, err)

	_, err = f.service.UpgradeToNationalID(ctx, registered.UserID, "23416790")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyUpgraded)
}

func TestUpgradeToNationalID_ConcurrentAttempts(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	registered, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	ids := []string{"23416789", "23416790"}
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.service.UpgradeToNationalID(ctx, registered.UserID, id)
		}(i, id)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperrors.ErrAlreadyUpgraded):
			rejected++
		default:
			t.Fatalf("unexpected upgrade error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	// Exactly one national ID stuck and the username mirrors it
	stored, err := f.students.FindByID(ctx, registered.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.NationalID)
	assert.Contains(t, ids, *stored.NationalID)
	assert.Equal(t, *stored.NationalID, stored.User.Username)
}

func TestUpgradeToNationalID_DuplicateNationalID(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	first, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)
	_, err = f.service.UpgradeToNationalID(ctx, first.UserID, "23416789")
	require.NoError(t, err)

	second, err := f.service.RegisterStudent(ctx, registerRequest("SA2024002"))
	require.NoError(t, err)

	_, err = f.service.UpgradeToNationalID(ctx, second.UserID, "23416789")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateIdentifier)
}

func TestUpgradeToNationalID_InvalidFormat(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	registered, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	for _, id := range []string{"", "12345", "12345678901", "23A16789"} {
		_, err = f.service.UpgradeToNationalID(ctx, registered.UserID, id)
		assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifierFormat, "national ID %q", id)
	}
}

func TestUpgradeToNationalID_UnknownAccount(t *testing.T) {
	f := newIdentityFixture(t, false)

	_, err := f.service.UpgradeToNationalID(context.Background(), 404, "23416789")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestApplyVerification_Idempotent(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	registered, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	status, err := f.service.ApplyVerification(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, status)

	// Verifying again leaves the account verified
	status, err = f.service.ApplyVerification(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, status)
}

func TestApplyVerification_VerifiedNeverDowngraded(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	registered, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	// Let the signup check finish first
	assert.Eventually(t, func() bool {
		stored, err := f.students.FindByID(ctx, registered.ID)
		return err == nil && stored.VerificationStatus == models.VerificationVerified
	}, 2*time.Second, 10*time.Millisecond)

	// A later failed registry answer does not undo the verification
	f.verifier.set("SA2024001", verification.Result{Verified: false, Reason: "record missing"})

	status, err := f.service.ApplyVerification(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, status)

	stored, err := f.students.FindByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationVerified, stored.VerificationStatus)
}

func TestRefreshToken_Rotation(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	_, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	_, tokens, err := f.service.Authenticate(ctx, "SA2024001", "password123")
	require.NoError(t, err)

	rotated, err := f.service.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The old token is dead after rotation
	_, err = f.service.RefreshToken(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestChangePassword(t *testing.T) {
	f := newIdentityFixture(t, false)
	ctx := context.Background()

	registered, err := f.service.RegisterStudent(ctx, registerRequest("SA2024001"))
	require.NoError(t, err)

	err = f.service.ChangePassword(ctx, registered.UserID, "wrong-password", "newpassword1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	err = f.service.ChangePassword(ctx, registered.UserID, "password123", "newpassword1")
	require.NoError(t, err)

	_, _, err = f.service.Authenticate(ctx, "SA2024001", "password123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, _, err = f.service.Authenticate(ctx, "SA2024001", "newpassword1")
	assert.NoError(t, err)
}
