package models

import (
	"time"
)

// BursaryApplication defines a funding request based on the
// 'bursary_applications' table. Constituency is copied from the student at
// submission time and never editable afterwards.
type BursaryApplication struct {
	ID              int64             `json:"id" db:"id"`
	StudentID       int64             `json:"studentId" db:"student_id"`
	ConstituencyID  int64             `json:"constituencyId" db:"constituency_id"`
	WardID          *int64            `json:"wardId,omitempty" db:"ward_id"`
	BursaryType     BursaryType       `json:"bursaryType" db:"bursary_type"`
	FeesRequired    float64           `json:"feesRequired" db:"fees_required"`
	FeesPaid        float64           `json:"feesPaid" db:"fees_paid"`
	AmountRequested float64           `json:"amountRequested" db:"amount_requested"`
	AmountAwarded   *float64          `json:"amountAwarded,omitempty" db:"amount_awarded"`
	Status          ApplicationStatus `json:"status" db:"status"`
	Feedback        string            `json:"feedback,omitempty" db:"feedback"`
	DateApplied     time.Time         `json:"dateApplied" db:"date_applied"`

	// Relations (populated when needed)
	Student      *StudentAccount `json:"student,omitempty"`
	Constituency *Constituency   `json:"constituency,omitempty"`
	Guardians    []Guardian      `json:"guardians,omitempty"`
	Siblings     []Sibling       `json:"siblings,omitempty"`
}

// Guardian defines a parent/guardian attached to a student
type Guardian struct {
	ID           int64   `json:"id" db:"id"`
	StudentID    int64   `json:"studentId" db:"student_id"`
	Name         string  `json:"name" db:"name"`
	Relationship string  `json:"relationship" db:"relationship"`
	IDNumber     string  `json:"idNumber,omitempty" db:"id_number"`
	Occupation   string  `json:"occupation,omitempty" db:"occupation"`
	Income       float64 `json:"income" db:"income"`
	Phone        string  `json:"phone" db:"phone"`
}

// Sibling defines another school-going child in the student's family
type Sibling struct {
	ID         int64  `json:"id" db:"id"`
	StudentID  int64  `json:"studentId" db:"student_id"`
	Name       string `json:"name" db:"name"`
	School     string `json:"school" db:"school"`
	ClassLevel string `json:"classLevel" db:"class_level"`
}
