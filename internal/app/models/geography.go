package models

// County defines a county based on the 'counties' table
type County struct {
	ID   int64  `json:"id" db:"id" example:"1"`
	Name string `json:"name" db:"name" example:"Samburu"`
}

// Constituency defines a constituency within a county
type Constituency struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name" example:"Samburu West"`
	CountyID int64  `json:"countyId" db:"county_id"`

	County *County `json:"county,omitempty"`
}

// Ward defines a ward within a constituency
type Ward struct {
	ID             int64  `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	ConstituencyID int64  `json:"constituencyId" db:"constituency_id"`
}
