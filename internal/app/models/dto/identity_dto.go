package dto

import (
	"time"

	"github.com/jmwangi/bursaryhub/internal/app/models"
)

// RegisterStudentRequest represents a new student registration. Minors
// register with a NEMIS number; adults may register directly with their
// National ID, which then starts out as the active credential. The precise
// per-type format rules are enforced in the service.
type RegisterStudentRequest struct {
	Identifier     string                `json:"identifier" binding:"required,min=4,max=20,alphanum"`
	IdentifierType models.CredentialType `json:"identifierType" binding:"required,oneof=NEMIS NATIONAL_ID"`
	Password       string                `json:"password" binding:"required,min=8"`
	FullName       string                `json:"fullName" binding:"required"`
	Phone          string                `json:"phone" binding:"required"`
	Email          string                `json:"email" binding:"omitempty,email"`
	County         string                `json:"county" binding:"required"`

	Institution    string                 `json:"institution" binding:"required"`
	Course         string                 `json:"course"`
	YearOfStudy    string                 `json:"yearOfStudy"`
	Category       models.StudentCategory `json:"category" binding:"required,oneof=BOARDING DAY COLLEGE UNIVERSITY"`
	ConstituencyID *int64                 `json:"constituencyId"`
}

// LoginRequest represents login credentials. Identifier accepts either a
// NEMIS number or a National ID; the account is resolved by matching both
// columns so a student can keep signing in with the credential they know.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// UpgradeCredentialRequest attaches a National ID to a NEMIS-registered account
type UpgradeCredentialRequest struct {
	NationalID string `json:"nationalId" binding:"required,min=6,max=10,numeric"`
}

// ChangePasswordRequest represents a password change for the logged-in user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// StudentAccountResponse represents a student account as returned by the API
type StudentAccountResponse struct {
	ID                 int64                     `json:"id"`
	NemisNumber        *string                   `json:"nemisNumber,omitempty"`
	NationalID         *string                   `json:"nationalId,omitempty"`
	ActiveCredential   models.CredentialType     `json:"activeCredential"`
	VerificationStatus models.VerificationStatus `json:"verificationStatus"`
	FullName           string                    `json:"fullName"`
	Phone              string                    `json:"phone"`
	Email              string                    `json:"email,omitempty"`
	Institution        string                    `json:"institution"`
	Course             string                    `json:"course,omitempty"`
	YearOfStudy        string                    `json:"yearOfStudy,omitempty"`
	Category           models.StudentCategory    `json:"category"`
	ConstituencyID     *int64                    `json:"constituencyId,omitempty"`
	CreatedAt          time.Time                 `json:"createdAt"`
	UpgradedAt         *time.Time                `json:"upgradedAt,omitempty"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token   TokenResponse          `json:"token"`
	Account StudentAccountResponse `json:"account"`
}

// NewStudentAccountResponse maps a student aggregate onto its API shape
func NewStudentAccountResponse(student *models.StudentAccount) StudentAccountResponse {
	resp := StudentAccountResponse{
		ID:                 student.ID,
		NemisNumber:        student.NemisNumber,
		NationalID:         student.NationalID,
		ActiveCredential:   student.ActiveCredential,
		VerificationStatus: student.VerificationStatus,
		Institution:        student.Institution,
		Course:             student.Course,
		YearOfStudy:        student.YearOfStudy,
		Category:           student.Category,
		ConstituencyID:     student.ConstituencyID,
		CreatedAt:          student.CreatedAt,
		UpgradedAt:         student.UpgradedAt,
	}
	if student.User != nil {
		resp.FullName = student.User.FullName
		resp.Phone = student.User.Phone
		resp.Email = student.User.Email
	}
	return resp
}
