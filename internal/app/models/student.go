package models

import (
	"time"
)

// StudentAccount defines the student identity record based on the 'students'
// table. Exactly one of NemisNumber/NationalID is the active login
// credential; both may be populated after an upgrade, and each is globally
// unique when present.
type StudentAccount struct {
	ID                 int64              `json:"id" db:"id"`
	UserID             int64              `json:"userId" db:"user_id"`
	NemisNumber        *string            `json:"nemisNumber,omitempty" db:"nemis_number"`
	NationalID         *string            `json:"nationalId,omitempty" db:"national_id"`
	ActiveCredential   CredentialType     `json:"activeCredential" db:"active_credential"`
	VerificationStatus VerificationStatus `json:"verificationStatus" db:"verification_status"`
	Institution        string             `json:"institution" db:"institution"`
	Course             string             `json:"course,omitempty" db:"course"`
	YearOfStudy        string             `json:"yearOfStudy,omitempty" db:"year_of_study"`
	Category           StudentCategory    `json:"category" db:"category"`
	ConstituencyID     *int64             `json:"constituencyId,omitempty" db:"constituency_id"`
	CreatedAt          time.Time          `json:"createdAt" db:"created_at"`
	UpgradedAt         *time.Time         `json:"upgradedAt,omitempty" db:"upgraded_at"`

	// Relations (populated when needed)
	User         *User         `json:"user,omitempty"`
	Constituency *Constituency `json:"constituency,omitempty"`
}

// ActiveIdentifier returns the value of whichever credential is active.
func (s *StudentAccount) ActiveIdentifier() string {
	if s.ActiveCredential == CredentialNationalID && s.NationalID != nil {
		return *s.NationalID
	}
	if s.NemisNumber != nil {
		return *s.NemisNumber
	}
	return ""
}

// Upgraded reports whether the account has completed the one-way
// NEMIS -> national ID upgrade.
func (s *StudentAccount) Upgraded() bool {
	return s.ActiveCredential == CredentialNationalID
}
