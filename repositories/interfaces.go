package repositories

import (
	"context"

	"github.com/claraconfirms/backend/models"
	"github.com/google/uuid"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles user data operations.
// Lookup methods return (nil, nil) when no matching row exists; errors are
// reserved for store faults.
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email (unique system-wide)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetBySupabaseUID retrieves a user by linked Supabase subject
	GetBySupabaseUID(ctx context.Context, uid string) (*models.User, error)

	// LinkSupabaseUID sets the Supabase subject on an existing user
	LinkSupabaseUID(ctx context.Context, userID uuid.UUID, uid string) error

	// UpdatePasswordHash replaces the stored password hash
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error

	// GetByCompanyID retrieves all users for a company
	GetByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*models.User, error)

	// Update updates a user's mutable fields (email, role, active)
	Update(ctx context.Context, user *models.User) error

	// Delete deletes a user
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) UserRepository
}

// CompanyRepository handles company data operations
type CompanyRepository interface {
	// Create creates a new company
	Create(ctx context.Context, company *models.Company) error

	// GetByID retrieves a company by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)

	// Update updates a company
	Update(ctx context.Context, company *models.Company) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) CompanyRepository
}

// CredentialRepository handles stored ServiceTrade credentials
type CredentialRepository interface {
	// GetByCompanyID retrieves the stored credential for a company,
	// (nil, nil) when none is stored
	GetByCompanyID(ctx context.Context, companyID uuid.UUID) (*models.ServiceTradeCredential, error)

	// Upsert inserts or overwrites the credential for a company
	Upsert(ctx context.Context, cred *models.ServiceTradeCredential) error

	// Delete removes the stored credential for a company
	Delete(ctx context.Context, companyID uuid.UUID) error

	// WithTx returns a new repository instance bound to the transaction
	WithTx(tx Transaction) CredentialRepository
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users       UserRepository
	Companies   CompanyRepository
	Credentials CredentialRepository
}
