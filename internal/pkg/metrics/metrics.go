// Package metrics exposes Prometheus counters for the identity and
// application workflows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

var (
	// RegistrationsTotal counts student registrations by outcome
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bursaryhub_registrations_total",
		Help: "Student registrations by outcome.",
	}, []string{"outcome"})

	// LoginsTotal counts login attempts by outcome
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bursaryhub_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	// VerificationsTotal counts registry verification results
	VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bursaryhub_verifications_total",
		Help: "Registry verification checks by result.",
	}, []string{"result"})

	// UpgradesTotal counts credential upgrades by outcome
	UpgradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bursaryhub_credential_upgrades_total",
		Help: "NEMIS to national ID credential upgrades by outcome.",
	}, []string{"outcome"})

	// ApplicationsTotal counts bursary application submissions
	ApplicationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bursaryhub_applications_total",
		Help: "Bursary application submissions by outcome.",
	}, []string{"outcome"})
)

// Outcome label values
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Handler returns the Prometheus scrape endpoint as a gin handler
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
