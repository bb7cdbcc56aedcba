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

const userColumns = "id, email, company_id, role, active, supabase_uid, password_hash, created_at, updated_at"

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, company_id, role, active, supabase_uid, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.CompanyID,
		user.Role,
		user.Active,
		user.SupabaseUID,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug("user created", zap.String("id", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// GetByID retrieves a user by ID, (nil, nil) when missing
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByEmail retrieves a user by email, (nil, nil) when missing
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(ctx, query, email)
}

// GetBySupabaseUID retrieves a user by linked Supabase subject, (nil, nil) when missing
func (r *UserRepository) GetBySupabaseUID(ctx context.Context, uid string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE supabase_uid = $1`
	return r.scanOne(ctx, query, uid)
}

// LinkSupabaseUID sets the Supabase subject on an existing user
func (r *UserRepository) LinkSupabaseUID(ctx context.Context, userID uuid.UUID, uid string) error {
	query := `UPDATE users SET supabase_uid = $1, updated_at = $2 WHERE id = $3`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, uid, time.Now(), userID); err != nil {
		return fmt.Errorf("failed to link supabase uid: %w", err)
	}

	r.logger.Debug("supabase uid linked", zap.String("user_id", userID.String()))
	return nil
}

// UpdatePasswordHash replaces the stored password hash
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, hash, time.Now(), userID); err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	return nil
}

// GetByCompanyID retrieves all users for a company
func (r *UserRepository) GetByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE company_id = $1 ORDER BY created_at`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := scanUser(rows, user); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// Update updates a user's mutable fields
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $1, role = $2, active = $3, updated_at = $4
		WHERE id = $5
	`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query,
		user.Email,
		user.Role,
		user.Active,
		time.Now(),
		user.ID,
	); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// Delete deletes a user
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

// WithTx returns a new repository instance bound to the transaction
func (r *UserRepository) WithTx(tx repositories.Transaction) repositories.UserRepository {
	return &UserRepository{
		db:     r.db,
		logger: r.logger,
	}
}

func (r *UserRepository) scanOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	executor := GetExecutor(ctx, r.db)
	user := &models.User{}

	err := scanUser(executor.QueryRowContext(ctx, query, arg), user)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// rowScanner covers *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner, user *models.User) error {
	return row.Scan(
		&user.ID,
		&user.Email,
		&user.CompanyID,
		&user.Role,
		&user.Active,
		&user.SupabaseUID,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}
