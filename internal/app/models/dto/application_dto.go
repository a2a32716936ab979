package dto

import (
	"time"

	"github.com/jmwangi/bursaryhub/internal/app/models"
)

// GuardianRequest represents a guardian attached to an application
type GuardianRequest struct {
	Name         string  `json:"name" binding:"required"`
	Relationship string  `json:"relationship" binding:"required"`
	IDNumber     string  `json:"idNumber"`
	Occupation   string  `json:"occupation"`
	Income       float64 `json:"income" binding:"min=0"`
	Phone        string  `json:"phone"`
}

// SiblingRequest represents a sibling attached to an application
type SiblingRequest struct {
	Name       string `json:"name" binding:"required"`
	School     string `json:"school"`
	ClassLevel string `json:"classLevel"`
}

// CreateApplicationRequest represents a new bursary application submission
type CreateApplicationRequest struct {
	BursaryType     models.BursaryType `json:"bursaryType" binding:"required,oneof=COUNTY CONSTITUENCY"`
	WardID          *int64             `json:"wardId"`
	FeesRequired    float64            `json:"feesRequired" binding:"required,gt=0"`
	FeesPaid        float64            `json:"feesPaid" binding:"min=0"`
	AmountRequested float64            `json:"amountRequested" binding:"required,gt=0"`
	Guardians       []GuardianRequest  `json:"guardians" binding:"omitempty,dive"`
	Siblings        []SiblingRequest   `json:"siblings" binding:"omitempty,dive"`
}

// ApplicationResponse represents a bursary application as returned by the API
type ApplicationResponse struct {
	ID              int64                    `json:"id"`
	StudentID       int64                    `json:"studentId"`
	BursaryType     models.BursaryType       `json:"bursaryType"`
	WardID          *int64                   `json:"wardId,omitempty"`
	FeesRequired    float64                  `json:"feesRequired"`
	FeesPaid        float64                  `json:"feesPaid"`
	AmountRequested float64                  `json:"amountRequested"`
	AmountAwarded   *float64                 `json:"amountAwarded,omitempty"`
	Status          models.ApplicationStatus `json:"status"`
	Feedback        string                   `json:"feedback,omitempty"`
	DateApplied     time.Time                `json:"dateApplied"`
	Guardians       []models.Guardian        `json:"guardians,omitempty"`
	Siblings        []models.Sibling         `json:"siblings,omitempty"`
}

// NewApplicationResponse maps an application aggregate onto its API shape
func NewApplicationResponse(app *models.BursaryApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:              app.ID,
		StudentID:       app.StudentID,
		BursaryType:     app.BursaryType,
		WardID:          app.WardID,
		FeesRequired:    app.FeesRequired,
		FeesPaid:        app.FeesPaid,
		AmountRequested: app.AmountRequested,
		AmountAwarded:   app.AmountAwarded,
		Status:          app.Status,
		Feedback:        app.Feedback,
		DateApplied:     app.DateApplied,
		Guardians:       app.Guardians,
		Siblings:        app.Siblings,
	}
}
