package dto

import (
	"time"

	"github.com/jmwangi/bursaryhub/internal/app/models"
)

// ReviewApplicationRequest represents an officer's decision on an application
type ReviewApplicationRequest struct {
	Status        models.ApplicationStatus `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	AmountAwarded *float64                 `json:"amountAwarded" binding:"omitempty,gt=0"`
	Feedback      string                   `json:"feedback"`
}

// CreateOfficerRequest registers a review officer under a constituency
type CreateOfficerRequest struct {
	Username       string             `json:"username" binding:"required,min=3"`
	Password       string             `json:"password" binding:"required,min=8"`
	FullName       string             `json:"fullName" binding:"required"`
	Phone          string             `json:"phone" binding:"required"`
	Email          string             `json:"email" binding:"omitempty,email"`
	ConstituencyID int64              `json:"constituencyId" binding:"required,min=1"`
	BursaryType    models.BursaryType `json:"bursaryType" binding:"required,oneof=COUNTY CONSTITUENCY"`
	IsManager      bool               `json:"isManager"`
	Designation    string             `json:"designation"`
}

// OfficerResponse represents an officer profile as returned by the API
type OfficerResponse struct {
	UserID         int64              `json:"userId"`
	FullName       string             `json:"fullName"`
	Username       string             `json:"username"`
	ConstituencyID int64              `json:"constituencyId"`
	BursaryType    models.BursaryType `json:"bursaryType"`
	IsManager      bool               `json:"isManager"`
	Designation    string             `json:"designation,omitempty"`
}

// ActivityLogResponse represents a single officer activity entry
type ActivityLogResponse struct {
	ID          int64                `json:"id"`
	OfficerID   int64                `json:"officerId"`
	Action      models.OfficerAction `json:"action"`
	Description string               `json:"description,omitempty"`
	Timestamp   time.Time            `json:"timestamp"`
}

// NewOfficerResponse maps an officer profile onto its API shape
func NewOfficerResponse(officer *models.OfficerProfile) OfficerResponse {
	resp := OfficerResponse{
		UserID:         officer.UserID,
		ConstituencyID: officer.ConstituencyID,
		BursaryType:    officer.BursaryType,
		IsManager:      officer.IsManager,
		Designation:    officer.Designation,
	}
	if officer.User != nil {
		resp.FullName = officer.User.FullName
		resp.Username = officer.User.Username
	}
	return resp
}
