package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmwangi/bursaryhub/internal/app/models"
	"github.com/jmwangi/bursaryhub/internal/pkg/apperrors"
)

func TestSiteService_SetDeadline(t *testing.T) {
	repo := &memSiteProfileRepo{profile: &models.SiteProfile{
		ID:         1,
		CountyName: "Samburu",
		IsActive:   true,
	}}
	svc := NewSiteService(repo, zerolog.Nop())

	deadline := time.Now().Add(30 * 24 * time.Hour)
	profile, err := svc.SetDeadline(context.Background(), &deadline)
	require.NoError(t, err)
	require.NotNil(t, profile.ApplicationDeadline)
	assert.WithinDuration(t, deadline, *profile.ApplicationDeadline, time.Second)

	stored, err := svc.Profile(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored.ApplicationDeadline)

	// Clearing the deadline reopens the window indefinitely.
	profile, err = svc.SetDeadline(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, profile.ApplicationDeadline)
}

func TestSiteService_NoActiveProfile(t *testing.T) {
	svc := NewSiteService(&memSiteProfileRepo{}, zerolog.Nop())

	_, err := svc.Profile(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	deadline := time.Now()
	_, err = svc.SetDeadline(context.Background(), &deadline)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
