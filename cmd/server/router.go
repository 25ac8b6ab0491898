package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bookswap/bookswap-api/internal/api"
	apiMiddleware "github.com/bookswap/bookswap-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It uses the application's services to create handlers.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordHasher,
		app.passwordVerifier,
		app.config.Auth,
	)
	userHandler := api.NewUserHandler(app.userStore, app.passwordHasher)
	bookHandler := api.NewBookHandler(app.bookStore, app.requestStore)
	requestHandler := api.NewRequestHandler(app.exchangeService)
	adminHandler := api.NewAdminHandler(
		app.userStore,
		app.bookStore,
		app.requestStore,
		app.exchangeService,
	)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Current user profile
			r.Get("/users/me", userHandler.Me)
			r.Put("/users/me", userHandler.UpdateMe)

			// Book listings
			r.Post("/books", bookHandler.Create)
			r.Get("/books", bookHandler.List)
			r.Get("/books/{id}", bookHandler.Get)
			r.Put("/books/{id}", bookHandler.Update)
			r.Delete("/books/{id}", bookHandler.Delete)

			// Transfer request lifecycle
			r.Post("/requests", requestHandler.Create)
			r.Get("/requests", requestHandler.List)
			r.Get("/requests/{id}", requestHandler.Get)
			r.Put("/requests/{id}", requestHandler.UpdateStatus)
			r.Post("/requests/{id}/rate", requestHandler.Rate)
			r.Delete("/requests/{id}", requestHandler.Delete)

			// Admin moderation
			r.Route("/admin", func(r chi.Router) {
				r.Use(authMiddleware.RequireAdmin)
				r.Get("/users", adminHandler.ListUsers)
				r.Put("/users/{id}/deactivate", adminHandler.DeactivateUser)
				r.Get("/requests", adminHandler.ListRequests)
				r.Put("/requests/{id}/cancel", adminHandler.CancelRequest)
				r.Delete("/books/{id}", adminHandler.DeleteBook)
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
