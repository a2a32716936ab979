package models

// RoleType defines the user role tier
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleOfficer RoleType = "OFFICER"
	RoleAdmin   RoleType = "ADMIN"
)

// CredentialType tags which identifier is the active login credential
type CredentialType string

const (
	CredentialNEMIS      CredentialType = "NEMIS"
	CredentialNationalID CredentialType = "NATIONAL_ID"
)

// VerificationStatus is the outcome of external identity verification
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "UNVERIFIED"
	VerificationVerified   VerificationStatus = "VERIFIED"
	VerificationFailed     VerificationStatus = "FAILED"
)

// BursaryType separates the county fund from the NG-CDF constituency fund
type BursaryType string

const (
	BursaryCounty       BursaryType = "COUNTY"
	BursaryConstituency BursaryType = "CONSTITUENCY"
)

// ApplicationStatus is the review state of a bursary application
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// StudentCategory classifies the institution the student attends
type StudentCategory string

const (
	CategoryBoarding   StudentCategory = "BOARDING"
	CategoryDay        StudentCategory = "DAY"
	CategoryCollege    StudentCategory = "COLLEGE"
	CategoryUniversity StudentCategory = "UNIVERSITY"
)
