package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/bookswap/bookswap-api/internal/config"
	"github.com/bookswap/bookswap-api/internal/platform/postgres"
	"github.com/bookswap/bookswap-api/internal/service/auth"
	"github.com/bookswap/bookswap-api/internal/service/exchange"
	"github.com/bookswap/bookswap-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore    store.UserStore
	bookStore    store.BookStore
	requestStore store.RequestStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordHasher   auth.PasswordHasher
	passwordVerifier auth.PasswordVerifier
	exchangeService  exchange.Service
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts the configuration, logger, and database connection
// that must be established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordHasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.bookStore = postgres.NewPostgresBookStore(db, logger)
	app.requestStore = postgres.NewPostgresRequestStore(db, logger)

	app.exchangeService, err = exchange.NewService(
		db,
		app.requestStore,
		app.bookStore,
		app.userStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create exchange service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
