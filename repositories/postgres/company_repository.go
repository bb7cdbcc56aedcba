package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/claraconfirms/backend/models"
	"github.com/claraconfirms/backend/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompanyRepository implements the repositories.CompanyRepository interface
type CompanyRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *DB, logger *zap.Logger) repositories.CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new company
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		company.ID,
		company.Name,
		company.CreatedAt,
		company.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	r.logger.Debug("company created", zap.String("id", company.ID.String()), zap.String("name", company.Name))
	return nil
}

// GetByID retrieves a company by ID, (nil, nil) when missing
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	query := `SELECT id, name, created_at, updated_at FROM companies WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	company := &models.Company{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.CreatedAt,
		&company.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return company, nil
}

// Update updates a company
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	query := `UPDATE companies SET name = $1, updated_at = $2 WHERE id = $3`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, company.Name, time.Now(), company.ID); err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}

	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *CompanyRepository) WithTx(tx repositories.Transaction) repositories.CompanyRepository {
	return &CompanyRepository{
		db:     r.db,
		logger: r.logger,
	}
}
