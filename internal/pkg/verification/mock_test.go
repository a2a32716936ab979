package verification

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmwangi/bursaryhub/internal/app/models"
)

func TestMockVerifier_KnownCounty(t *testing.T) {
	v := NewMockVerifier("samburu", zerolog.Nop())

	tests := []struct {
		name       string
		credential models.CredentialType
		identifier string
		verified   bool
	}{
		{"national ID with county prefix", models.CredentialNationalID, "23416789", true},
		{"national ID from another county", models.CredentialNationalID, "13416789", false},
		{"nemis with county prefix", models.CredentialNEMIS, "SA2024001", true},
		{"nemis lowercase prefix accepted", models.CredentialNEMIS, "sa2024001", true},
		{"nemis from another county", models.CredentialNEMIS, "NA2024001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := v.Verify(context.Background(), tt.credential, tt.identifier)
			require.NoError(t, err)
			assert.Equal(t, tt.verified, result.Verified)
			if !tt.verified {
				assert.NotEmpty(t, result.Reason)
			}
		})
	}
}

func TestMockVerifier_UnknownCountyFallsBackToFormat(t *testing.T) {
	v := NewMockVerifier("turkana", zerolog.Nop())

	result, err := v.Verify(context.Background(), models.CredentialNationalID, "987654")
	require.NoError(t, err)
	assert.True(t, result.Verified)

	result, err = v.Verify(context.Background(), models.CredentialNationalID, "12345")
	require.NoError(t, err)
	assert.False(t, result.Verified)

	result, err = v.Verify(context.Background(), models.CredentialNationalID, "98765A")
	require.NoError(t, err)
	assert.False(t, result.Verified)

	result, err = v.Verify(context.Background(), models.CredentialNEMIS, "AB12")
	require.NoError(t, err)
	assert.True(t, result.Verified)

	result, err = v.Verify(context.Background(), models.CredentialNEMIS, "AB1")
	require.NoError(t, err)
	assert.False(t, result.Verified)

	// Long enough but not alphanumeric
	result, err = v.Verify(context.Background(), models.CredentialNEMIS, "AB 12")
	require.NoError(t, err)
	assert.False(t, result.Verified)

	result, err = v.Verify(context.Background(), models.CredentialNEMIS, "AB-12!")
	require.NoError(t, err)
	assert.False(t, result.Verified)
}

func TestFormatVerifier(t *testing.T) {
	v := NewFormatVerifier()

	result, err := v.Verify(context.Background(), models.CredentialNationalID, "34216789")
	require.NoError(t, err)
	assert.True(t, result.Verified)

	result, err = v.Verify(context.Background(), models.CredentialNEMIS, "NEMIS2024")
	require.NoError(t, err)
	assert.True(t, result.Verified)
}
