package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/app/models/dto"
	"github.com/jmwangi/bursaryhub/internal/pkg/apperrors"
)

type officerFixture struct {
	service  *OfficerService
	officers *memOfficerRepo
	apps     *memApplicationRepo
	students *memStudentRepo
	notifier *recordingNotifier
}

func newOfficerFixture(t *testing.T) *officerFixture {
	t.Helper()

	officers := newMemOfficerRepo()
	apps := newMemApplicationRepo()
	students := newMemStudentRepo()
	notifier := &recordingNotifier{}

	service := NewOfficerService(officers, apps, students, notifier, zerolog.Nop())

	return &officerFixture{
		service:  service,
		officers: officers,
		apps:     apps,
		students: students,
		notifier: notifier,
	}
}

// seedOfficer creates an officer scoped to a constituency and fund
func (f *officerFixture) seedOfficer(t *testing.T, constituencyID int64, bursaryType models.BursaryType) *models.OfficerProfile {
	t.Helper()

	user := &models.User{
		Username: "officer1",
		Password: "hash",
		FullName: "John Lekupe",
		RoleType: models.RoleOfficer,
		IsActive: true,
	}
	officer := &models.OfficerProfile{
		ConstituencyID: constituencyID,
		BursaryType:    bursaryType,
	}
	require.NoError(t, f.officers.CreateWithUser(context.Background(), user, officer))
	return officer
}

// seedApplication inserts a pending application directly
func (f *officerFixture) seedApplication(t *testing.T, constituencyID int64, bursaryType models.BursaryType) *models.BursaryApplication {
	t.Helper()

	nemis := fmt.Sprintf("SA2024%03d", len(f.students.students)+1)
	user := &models.User{Username: nemis, Phone: "+254712345678", RoleType: models.RoleStudent, IsActive: true}
	student := &models.StudentAccount{
		NemisNumber:        &nemis,
		ActiveCredential:   models.CredentialNEMIS,
		VerificationStatus: models.VerificationVerified,
		ConstituencyID:     &constituencyID,
	}
	require.NoError(t, f.students.CreateWithUser(context.Background(), user, student))

	app := &models.BursaryApplication{
		StudentID:       student.ID,
		ConstituencyID:  constituencyID,
		BursaryType:     bursaryType,
		FeesRequired:    50000,
		FeesPaid:        20000,
		AmountRequested: 30000,
	}
	require.NoError(t, f.apps.Create(context.Background(), app, nil, nil))
	return app
}

func TestReviewApplication_Approve(t *testing.T) {
	f := newOfficerFixture(t)
	ctx := context.Background()

	officer := f.seedOfficer(t, 7, models.BursaryConstituency)
	app := f.seedApplication(t, 7, models.BursaryConstituency)

	amount := 25000.0
	reviewed, err := f.service.Review(ctx, officer.UserID, app.ID, &dto.ReviewApplicationRequest{
		Status:        models.ApplicationApproved,
		AmountAwarded: &amount,
		Feedback:      "fees balance confirmed with the school",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationApproved, reviewed.Status)
	require.NotNil(t, reviewed.AmountAwarded)
	assert.Equal(t, 25000.0, *reviewed.AmountAwarded)

	// The decision lands in the activity trail
	logs, err := f.service.ListActivity(ctx, officer.UserID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActionReviewApplication, logs[0].Action)
}

func TestReviewApplication_ScopeEnforced(t *testing.T) {
	f := newOfficerFixture(t)
	ctx := context.Background()

	officer := f.seedOfficer(t, 7, models.BursaryConstituency)

	// Wrong constituency
	otherConstituency := f.seedApplication(t, 8, models.BursaryConstituency)
	_, err := f.service.Review(ctx, officer.UserID, otherConstituency.ID, &dto.ReviewApplicationRequest{
		Status: models.ApplicationRejected,
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// Wrong fund
	otherFund := f.seedApplication(t, 7, models.BursaryCounty)
	_, err = f.service.Review(ctx, officer.UserID, otherFund.ID, &dto.ReviewApplicationRequest{
		Status: models.ApplicationRejected,
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestReviewApplication_OnlyPending(t *testing.T) {
	f := newOfficerFixture(t)
	ctx := context.Background()

	officer := f.seedOfficer(t, 7, models.BursaryConstituency)
	app := f.seedApplication(t, 7, models.BursaryConstituency)

	_, err := f.service.Review(ctx, officer.UserID, app.ID, &dto.ReviewApplicationRequest{
		Status:   models.ApplicationRejected,
		Feedback: "incomplete guardian details",
	})
	require.NoError(t, err)

	// A decided application cannot be reviewed again
	_, err = f.service.Review(ctx, officer.UserID, app.ID, &dto.ReviewApplicationRequest{
		Status: models.ApplicationApproved,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestReviewApplication_ApprovalNeedsAmount(t *testing.T) {
	f := newOfficerFixture(t)
	ctx := context.Background()

	officer := f.seedOfficer(t, 7, models.BursaryConstituency)
	app := f.seedApplication(t, 7, models.BursaryConstituency)

	_, err := f.service.Review(ctx, officer.UserID, app.ID, &dto.ReviewApplicationRequest{
		Status: models.ApplicationApproved,
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	tooMuch := 40000.0
	_, err = f.service.Review(ctx, officer.UserID, app.ID, &dto.ReviewApplicationRequest{
		Status:        models.ApplicationApproved,
		AmountAwarded: &tooMuch,
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestListForReview_ScopedToOfficer(t *testing.T) {
	f := newOfficerFixture(t)
	ctx := context.Background()

	officer := f.seedOfficer(t, 7, models.BursaryConstituency)
	f.seedApplication(t, 7, models.BursaryConstituency)
	f.seedApplication(t, 8, models.BursaryConstituency)
	f.seedApplication(t, 7, models.BursaryCounty)

	apps, total, err := f.service.ListForReview(ctx, officer.UserID, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, apps, 1)
	assert.Equal(t, int64(7), apps[0].ConstituencyID)
	assert.Equal(t, models.BursaryConstituency, apps[0].BursaryType)
}
