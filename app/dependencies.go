package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/claraconfirms/backend/auth"
	"github.com/claraconfirms/backend/config"
	"github.com/claraconfirms/backend/middleware"
	"github.com/claraconfirms/backend/repositories"
	"github.com/claraconfirms/backend/repositories/postgres"
	"github.com/claraconfirms/backend/services/identity"
	"github.com/claraconfirms/backend/servicetrade"
	"github.com/claraconfirms/backend/supabase"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users       repositories.UserRepository
	Companies   repositories.CompanyRepository
	Credentials repositories.CredentialRepository
	TxManager   repositories.TransactionManager

	// Auth
	Tokens           *auth.TokenService
	SupabaseVerifier *supabase.Verifier
	IdentityResolver *identity.Resolver
	AuthMiddleware   *middleware.AuthMiddleware

	// ServiceTrade integration
	Sessions *servicetrade.SessionManager
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initAuth(cfg)
	deps.initServiceTrade(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection and repository factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := d.DB.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Companies = repos.Companies
	d.Credentials = repos.Credentials
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initAuth wires both trust roots and the identity resolution layer
func (d *Dependencies) initAuth(cfg *config.Config) {
	d.Tokens = auth.NewTokenService(cfg.Auth)
	d.SupabaseVerifier = supabase.NewVerifier(cfg.Auth.SupabaseJWTSecret)

	cache := identity.NewCache(cfg.Identity.CacheSize, cfg.Identity.CacheTTL)
	d.IdentityResolver = identity.NewResolver(d.Users, cache, d.Logger)

	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Tokens, d.SupabaseVerifier, d.IdentityResolver, d.Logger)

	if cfg.SupabaseEnabled() {
		d.Logger.Info("supabase sign-in enabled")
	} else {
		d.Logger.Warn("supabase sign-in disabled, SUPABASE_JWT_SECRET not set")
	}
}

// initServiceTrade wires the ServiceTrade client and session manager
func (d *Dependencies) initServiceTrade(cfg *config.Config) {
	client := servicetrade.NewClient(servicetrade.ClientConfig{
		BaseURL: cfg.ServiceTrade.BaseURL,
		Timeout: cfg.ServiceTrade.Timeout,
	}, d.Logger)
	d.Sessions = servicetrade.NewSessionManager(client, d.Logger)
}

// Close releases all held resources
func (d *Dependencies) Close() error {
	if d.RepoFactory != nil {
		return d.RepoFactory.Close()
	}
	return nil
}
