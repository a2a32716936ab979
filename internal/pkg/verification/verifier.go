// Package verification checks student identifiers against the national
// registries (NEMIS for learner numbers, the civil registry for national
// IDs). Deployments without registry access fall back to format checks.
package verification

import (
	"context"

	"github.com/jmwangi/bursaryhub/internal/app/models"
)

// Result is the outcome of a registry check
type Result struct {
	Verified bool
	// Reason is set when Verified is false, suitable for operator logs
	Reason string
}

// Verifier checks whether an identifier exists in the relevant registry.
// Implementations must be safe for concurrent use.
type Verifier interface {
	Verify(ctx context.Context, credential models.CredentialType, identifier string) (Result, error)
}
