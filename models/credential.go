package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceTradeCredential holds the stored ServiceTrade login for a company.
// One row per company, upsert semantics.
type ServiceTradeCredential struct {
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Username  string    `json:"username" db:"username"`
	Secret    string    `json:"-" db:"secret"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the ServiceTradeCredential model
func (ServiceTradeCredential) TableName() string {
	return "servicetrade_credentials"
}
