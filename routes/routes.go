package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/claraconfirms/backend/app"
	"github.com/claraconfirms/backend/handlers"
	"github.com/claraconfirms/backend/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Companies, deps.TxManager, deps.Tokens, deps.Logger)
	userHandler := handlers.NewUserHandler(deps.Users, deps.IdentityResolver, deps.Logger)
	serviceTradeHandler := handlers.NewServiceTradeHandler(deps.Credentials, deps.Sessions, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/refresh", authHandler.HandleRefresh)
		})

		// Profile endpoints
		r.Route("/users/me", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Get("/", userHandler.HandleMe)
			r.Put("/password", userHandler.HandleChangePassword)
		})

		// Company-scoped endpoints
		r.Route("/companies/{companyID}", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)
			r.Use(deps.AuthMiddleware.RequireCompanyMatch("companyID"))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.HandleListCompanyUsers)
				r.Get("/{userID}", userHandler.HandleGetUser)

				r.Group(func(r chi.Router) {
					r.Use(deps.AuthMiddleware.RequireRole("admin"))
					r.Post("/", userHandler.HandleCreateUser)
					r.Put("/{userID}", userHandler.HandleUpdateUser)
					r.Delete("/{userID}", userHandler.HandleDeleteUser)
				})
			})

			r.Route("/servicetrade", func(r chi.Router) {
				r.Get("/session", serviceTradeHandler.HandleSessionStatus)
				r.Post("/proxy", serviceTradeHandler.HandleProxy)

				r.Group(func(r chi.Router) {
					r.Use(deps.AuthMiddleware.RequireRole("admin"))
					r.Put("/credentials", serviceTradeHandler.HandleUpsertCredentials)
					r.Delete("/credentials", serviceTradeHandler.HandleDeleteCredentials)
				})
			})
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
