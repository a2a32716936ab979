package models

import (
	"time"
)

// OfficerProfile defines a review officer based on the 'officer_profiles'
// table. Officers only see applications in their constituency and fund.
type OfficerProfile struct {
	ID             int64       `json:"id" db:"id"`
	UserID         int64       `json:"userId" db:"user_id"`
	ConstituencyID int64       `json:"constituencyId" db:"constituency_id"`
	BursaryType    BursaryType `json:"bursaryType" db:"bursary_type"`
	IsManager      bool        `json:"isManager" db:"is_manager"` // managers may manage other officers
	Designation    string      `json:"designation,omitempty" db:"designation"`

	User         *User         `json:"user,omitempty"`
	Constituency *Constituency `json:"constituency,omitempty"`
}

// OfficerAction enumerates auditable officer activities
type OfficerAction string

const (
	ActionLogin             OfficerAction = "LOGIN"
	ActionReviewApplication OfficerAction = "REVIEW_APPLICATION"
	ActionChangeStatus      OfficerAction = "CHANGE_STATUS"
	ActionAddOfficer        OfficerAction = "ADD_OFFICER"
	ActionEditOfficer       OfficerAction = "EDIT_OFFICER"
)

// OfficerActivityLog records a single officer action for audit
type OfficerActivityLog struct {
	ID          int64         `json:"id" db:"id"`
	OfficerID   int64         `json:"officerId" db:"officer_id"`
	Action      OfficerAction `json:"action" db:"action"`
	Description string        `json:"description,omitempty" db:"description"`
	Timestamp   time.Time     `json:"timestamp" db:"created_at"`
}
