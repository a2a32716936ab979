package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/app/models/dto"
	"github.com/jmwangi/bursaryhub/internal/pkg/apperrors"
)

type applicationFixture struct {
	service  *ApplicationService
	students *memStudentRepo
	apps     *memApplicationRepo
	profiles *memSiteProfileRepo
	notifier *recordingNotifier
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()

	students := newMemStudentRepo()
	apps := newMemApplicationRepo()
	profiles := &memSiteProfileRepo{}
	notifier := &recordingNotifier{}

	service := NewApplicationService(apps, students, profiles, notifier, zerolog.Nop())

	return &applicationFixture{
		service:  service,
		students: students,
		apps:     apps,
		profiles: profiles,
		notifier: notifier,
	}
}

// seedStudent creates a verified student with a constituency
func (f *applicationFixture) seedStudent(t *testing.T, nemis string, constituencyID int64) *models.StudentAccount {
	t.Helper()

	user := &models.User{
		Username: nemis,
		Password: "hash",
		FullName: "Amina Wanjiru",
		Phone:    "+254712345678",
		RoleType: models.RoleStudent,
		IsActive: true,
	}
	student := &models.StudentAccount{
		NemisNumber:        &nemis,
		ActiveCredential:   models.CredentialNEMIS,
		VerificationStatus: models.VerificationVerified,
		Institution:        "Maralal High School",
		Category:           models.CategoryBoarding,
		ConstituencyID:     &constituencyID,
	}
	require.NoError(t, f.students.CreateWithUser(context.Background(), user, student))
	return student
}

func applicationRequest() *dto.CreateApplicationRequest {
	return &dto.CreateApplicationRequest{
		BursaryType:     models.BursaryConstituency,
		FeesRequired:    50000,
		FeesPaid:        20000,
		AmountRequested: 30000,
		Guardians: []dto.GuardianRequest{
			{Name: "Mary Wanjiru", Relationship: "mother", Income: 8000},
		},
		Siblings: []dto.SiblingRequest{
			{Name: "Brian Wanjiru", School: "Maralal Primary", ClassLevel: "Class 7"},
		},
	}
}

func TestSubmitApplication(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	student := f.seedStudent(t, "SA2024001", 7)

	app, err := f.service.Submit(ctx, student.UserID, applicationRequest())
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, student.ID, app.StudentID)
	// The constituency is copied from the student record
	assert.Equal(t, int64(7), app.ConstituencyID)
	assert.Len(t, app.Guardians, 1)
	assert.Len(t, app.Siblings, 1)
}

func TestSubmitApplication_RequiresVerification(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	student := f.seedStudent(t, "SA2024001", 7)
	require.NoError(t, f.students.SetVerificationStatus(ctx, student.ID, models.VerificationUnverified))

	_, err := f.service.Submit(ctx, student.UserID, applicationRequest())
	assert.ErrorIs(t, err, apperrors.ErrAccountNotVerified)
}

func TestSubmitApplication_OnePendingPerFund(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	student := f.seedStudent(t, "SA2024001", 7)

	_, err := f.service.Submit(ctx, student.UserID, applicationRequest())
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, student.UserID, applicationRequest())
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// A different fund is still open
	countyReq := applicationRequest()
	countyReq.BursaryType = models.BursaryCounty
	_, err = f.service.Submit(ctx, student.UserID, countyReq)
	assert.NoError(t, err)
}

func TestSubmitApplication_DeadlinePassed(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	past := time.Now().Add(-24 * time.Hour)
	f.profiles.profile = &models.SiteProfile{
		ID:                  1,
		CountyName:          "Samburu",
		ApplicationDeadline: &past,
		IsActive:            true,
	}

	student := f.seedStudent(t, "SA2024001", 7)

	_, err := f.service.Submit(ctx, student.UserID, applicationRequest())
	assert.ErrorIs(t, err, apperrors.ErrApplicationsClosed)
}

func TestSubmitApplication_AmountChecks(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	student := f.seedStudent(t, "SA2024001", 7)

	req := applicationRequest()
	req.FeesPaid = 60000
	_, err := f.service.Submit(ctx, student.UserID, req)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	req = applicationRequest()
	req.AmountRequested = 40000 // balance is only 30000
	_, err = f.service.Submit(ctx, student.UserID, req)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestGetApplication_OwnershipEnforced(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	owner := f.seedStudent(t, "SA2024001", 7)
	other := f.seedStudent(t, "SA2024002", 7)

	app, err := f.service.Submit(ctx, owner.UserID, applicationRequest())
	require.NoError(t, err)

	_, err = f.service.Get(ctx, other.UserID, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	got, err := f.service.Get(ctx, owner.UserID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, got.ID)
}

func TestListMine(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	student := f.seedStudent(t, "SA2024001", 7)

	_, err := f.service.Submit(ctx, student.UserID, applicationRequest())
	require.NoError(t, err)

	apps, err := f.service.ListMine(ctx, student.UserID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}
