package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/claraconfirms/backend/models"
	"github.com/claraconfirms/backend/repositories"
	"github.com/claraconfirms/backend/servicetrade"
)

// MockUserRepository is a mock for repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetBySupabaseUID(ctx context.Context, uid string) (*models.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) LinkSupabaseUID(ctx context.Context, userID uuid.UUID, uid string) error {
	return m.Called(ctx, userID, uid).Error(0)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	return m.Called(ctx, userID, hash).Error(0)
}

func (m *MockUserRepository) GetByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*models.User, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) WithTx(tx repositories.Transaction) repositories.UserRepository {
	return m
}

// MockCompanyRepository is a mock for repositories.CompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) Update(ctx context.Context, company *models.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *MockCompanyRepository) WithTx(tx repositories.Transaction) repositories.CompanyRepository {
	return m
}

// MockCredentialRepository is a mock for repositories.CredentialRepository
type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) GetByCompanyID(ctx context.Context, companyID uuid.UUID) (*models.ServiceTradeCredential, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceTradeCredential), args.Error(1)
}

func (m *MockCredentialRepository) Upsert(ctx context.Context, cred *models.ServiceTradeCredential) error {
	return m.Called(ctx, cred).Error(0)
}

func (m *MockCredentialRepository) Delete(ctx context.Context, companyID uuid.UUID) error {
	return m.Called(ctx, companyID).Error(0)
}

func (m *MockCredentialRepository) WithTx(tx repositories.Transaction) repositories.CredentialRepository {
	return m
}

// fakeTransaction satisfies repositories.Transaction without a database
type fakeTransaction struct {
	ctx context.Context
}

func (t *fakeTransaction) Commit() error            { return nil }
func (t *fakeTransaction) Rollback() error          { return nil }
func (t *fakeTransaction) Context() context.Context { return t.ctx }

// fakeTxManager runs the function inline without a database
type fakeTxManager struct {
	err error
}

func (m *fakeTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return &fakeTransaction{ctx: ctx}, nil
}

func (m *fakeTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	if m.err != nil {
		return m.err
	}
	return fn(ctx, &fakeTransaction{ctx: ctx})
}

// MockSessionService is a mock for SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) GetSession(ctx context.Context, companyID uuid.UUID) (string, error) {
	args := m.Called(ctx, companyID)
	return args.String(0), args.Error(1)
}

func (m *MockSessionService) Request(ctx context.Context, companyID uuid.UUID, method, path string, body []byte, creds *servicetrade.Credentials) (*servicetrade.Response, error) {
	args := m.Called(ctx, companyID, method, path, body, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*servicetrade.Response), args.Error(1)
}

func (m *MockSessionService) Logout(ctx context.Context, companyID uuid.UUID) {
	m.Called(ctx, companyID)
}

// MockInvalidator is a mock for IdentityInvalidator
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) Invalidate(supabaseUID string) {
	m.Called(supabaseUID)
}
