package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user within a company
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// User represents a user belonging to exactly one company. A user may carry
// a local password hash, a Supabase identity, or both; SupabaseUID is set
// the first time the user signs in through Supabase and is unique once set.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	CompanyID    uuid.UUID `json:"company_id" db:"company_id"`
	Role         UserRole  `json:"role" db:"role"`
	Active       bool      `json:"active" db:"active"`
	SupabaseUID  *string   `json:"-" db:"supabase_uid"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(email string, companyID uuid.UUID, role UserRole) *User {
	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		CompanyID: companyID,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasSupabaseIdentity returns true once the user is linked to a Supabase subject
func (u *User) HasSupabaseIdentity() bool {
	return u.SupabaseUID != nil && *u.SupabaseUID != ""
}
