package verification

import (
	"context"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/jmwangi/bursaryhub/internal/app/models"
)

// countyRule models the per-county registry conventions used by the mock:
// national IDs issued in the county start with IDPrefix and NEMIS numbers
// start with NemisPrefix.
type countyRule struct {
	IDPrefix    string
	NemisPrefix string
}

var countyRules = map[string]countyRule{
	"samburu": {IDPrefix: "2", NemisPrefix: "SA"},
	"nairobi": {IDPrefix: "1", NemisPrefix: "NA"},
}

// MockVerifier simulates the national registries for development and
// county pilots. Counties with known conventions check prefixes; anything
// else falls back to length and character-class checks.
type MockVerifier struct {
	county string
	logger zerolog.Logger
}

// NewMockVerifier creates a mock verifier scoped to the given county
func NewMockVerifier(county string, logger zerolog.Logger) *MockVerifier {
	return &MockVerifier{
		county: strings.ToLower(strings.TrimSpace(county)),
		logger: logger.With().Str("component", "mock_verifier").Logger(),
	}
}

// Verify applies the county's registry conventions to the identifier
func (v *MockVerifier) Verify(_ context.Context, credential models.CredentialType, identifier string) (Result, error) {
	rule, known := countyRules[v.county]

	var result Result
	switch credential {
	case models.CredentialNationalID:
		if known {
			result = checkPrefix(identifier, rule.IDPrefix, "national ID not issued in "+v.county)
		} else {
			result = checkNationalIDFallback(identifier)
		}
	case models.CredentialNEMIS:
		if known {
			result = checkPrefix(strings.ToUpper(identifier), rule.NemisPrefix, "NEMIS number not registered in "+v.county)
		} else {
			result = checkNemisFallback(identifier)
		}
	default:
		result = Result{Verified: false, Reason: "unknown credential type"}
	}

	v.logger.Debug().
		Str("credential", string(credential)).
		Bool("verified", result.Verified).
		Msg("Registry check completed")

	return result, nil
}

// FormatVerifier accepts any identifier that passes basic format checks.
// Used when no registry connection is configured.
type FormatVerifier struct{}

// NewFormatVerifier creates a format-only verifier
func NewFormatVerifier() *FormatVerifier {
	return &FormatVerifier{}
}

// Verify applies length and character-class checks only
func (v *FormatVerifier) Verify(_ context.Context, credential models.CredentialType, identifier string) (Result, error) {
	switch credential {
	case models.CredentialNationalID:
		return checkNationalIDFallback(identifier), nil
	case models.CredentialNEMIS:
		return checkNemisFallback(identifier), nil
	}
	return Result{Verified: false, Reason: "unknown credential type"}, nil
}

func checkPrefix(identifier, prefix, reason string) Result {
	if strings.HasPrefix(identifier, prefix) {
		return Result{Verified: true}
	}
	return Result{Verified: false, Reason: reason}
}

func checkNationalIDFallback(identifier string) Result {
	if len(identifier) < 6 {
		return Result{Verified: false, Reason: "national ID too short"}
	}
	for _, r := range identifier {
		if !unicode.IsDigit(r) {
			return Result{Verified: false, Reason: "national ID must be numeric"}
		}
	}
	return Result{Verified: true}
}

func checkNemisFallback(identifier string) Result {
	if len(identifier) < 4 {
		return Result{Verified: false, Reason: "NEMIS number too short"}
	}
	for _, r := range identifier {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return Result{Verified: false, Reason: "NEMIS number must be letters and digits"}
		}
	}
	return Result{Verified: true}
}
