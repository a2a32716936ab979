package models

import (
	"time"
)

// SiteProfile holds per-constituency branding and the application deadline,
// based on the 'site_profiles' table. One row is active at a time.
type SiteProfile struct {
	ID                  int64      `json:"id" db:"id"`
	CountyName          string     `json:"countyName" db:"county_name"`
	ConstituencyID      *int64     `json:"constituencyId,omitempty" db:"constituency_id"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty" db:"application_deadline"`
	IsActive            bool       `json:"isActive" db:"is_active"`

	Constituency *Constituency `json:"constituency,omitempty"`
}

// IsApplicationOpen reports whether new applications are still accepted.
// A missing deadline means the window never closes.
func (p *SiteProfile) IsApplicationOpen(now time.Time) bool {
	if p.ApplicationDeadline == nil {
		return true
	}
	return !now.After(*p.ApplicationDeadline)
}
