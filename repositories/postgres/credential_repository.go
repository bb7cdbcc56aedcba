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

// CredentialRepository implements the repositories.CredentialRepository interface
type CredentialRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *DB, logger *zap.Logger) repositories.CredentialRepository {
	return &CredentialRepository{
		db:     db,
		logger: logger,
	}
}

// GetByCompanyID retrieves the stored ServiceTrade credential for a company,
// (nil, nil) when none is stored
func (r *CredentialRepository) GetByCompanyID(ctx context.Context, companyID uuid.UUID) (*models.ServiceTradeCredential, error) {
	query := `
		SELECT company_id, username, secret, updated_at
		FROM servicetrade_credentials
		WHERE company_id = $1
	`

	executor := GetExecutor(ctx, r.db)
	cred := &models.ServiceTradeCredential{}

	err := executor.QueryRowContext(ctx, query, companyID).Scan(
		&cred.CompanyID,
		&cred.Username,
		&cred.Secret,
		&cred.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	return cred, nil
}

// Upsert inserts or overwrites the credential for a company
func (r *CredentialRepository) Upsert(ctx context.Context, cred *models.ServiceTradeCredential) error {
	query := `
		INSERT INTO servicetrade_credentials (company_id, username, secret, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id)
		DO UPDATE SET username = EXCLUDED.username, secret = EXCLUDED.secret, updated_at = EXCLUDED.updated_at
	`

	cred.UpdatedAt = time.Now()

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query,
		cred.CompanyID,
		cred.Username,
		cred.Secret,
		cred.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}

	r.logger.Debug("credential upserted", zap.String("company_id", cred.CompanyID.String()))
	return nil
}

// Delete removes the stored credential for a company
func (r *CredentialRepository) Delete(ctx context.Context, companyID uuid.UUID) error {
	query := `DELETE FROM servicetrade_credentials WHERE company_id = $1`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, companyID); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *CredentialRepository) WithTx(tx repositories.Transaction) repositories.CredentialRepository {
	return &CredentialRepository{
		db:     r.db,
		logger: r.logger,
	}
}
