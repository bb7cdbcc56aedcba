package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the tenant isolation boundary. Every user and every stored
// ServiceTrade credential belongs to exactly one company.
type Company struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Company model
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a new Company instance
func NewCompany(name string) *Company {
	now := time.Now()
	return &Company{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
