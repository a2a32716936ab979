package models

import (
	"time"
)

// User defines the login account behind both students and officers, based on
// the 'users' table. Username always mirrors the active credential for
// students (NEMIS number or national ID) and is a plain username for
// officers.
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`
	Username    string     `json:"username" db:"username" example:"34216789"`
	Password    string     `json:"-" db:"password"` // bcrypt hash, excluded from JSON
	FullName    string     `json:"fullName" db:"full_name" example:"Amina Wanjiru"`
	Phone       string     `json:"phone" db:"phone" example:"+254712345678"`
	Email       string     `json:"email,omitempty" db:"email"`
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"STUDENT"`
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
}
