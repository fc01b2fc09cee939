// Package server wires the application together: database, services,
// handlers, middleware, and routes. It is the composition root; nothing
// outside this package and main constructs concrete dependencies.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/citewall/internal/auth"
	"github.com/sakif/citewall/internal/handler"
	"github.com/sakif/citewall/internal/middleware"
	"github.com/sakif/citewall/internal/model"
	sqliteRepo "github.com/sakif/citewall/internal/repository/sqlite"
	"github.com/sakif/citewall/internal/service"
)

// Config holds everything the server needs to start.
type Config struct {
	Port                int
	DBPath              string
	JWTSecret           string
	DiscordClientID     string
	DiscordClientSecret string
	DiscordCallbackURL  string
	CookieSecure        bool
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain:
//
//	sqlite.DB → services → handlers → routes
//
// Each layer receives only the interfaces it needs; handlers never touch the
// database and services never touch HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, builds the services and handlers, and
// registers every route.
//
// Route map:
//
//	GET    /auth/discord/login          → start the Discord OAuth flow
//	GET    /auth/discord/callback       → complete it, set the session cookie
//	POST   /auth/register               → local account registration
//	POST   /auth/login                  → local account login
//	POST   /auth/logout                 → clear the session cookie
//
//	GET    /api/citations               → paginated list
//	GET    /api/citations/search        → title/author substring search
//	GET    /api/citations/random        → random sample
//	GET    /api/citations/{id}          → single citation
//	GET    /api/humors                  → humor categories
//	GET    /api/humors/{id}             → single category
//
//	POST   /api/citations               → create (auth)
//	PUT    /api/citations/{id}          → update (auth, author only)
//	DELETE /api/citations/{id}          → delete (auth, author only)
//	POST   /api/citations/{id}/like     → like (auth)
//	DELETE /api/citations/{id}/like     → unlike (auth)
//	POST   /api/citations/{id}/favorite → favorite (auth)
//	DELETE /api/citations/{id}/favorite → unfavorite (auth)
//	GET    /api/me                      → own profile (auth)
//
//	/api/admin/users[...]               → user CRUD (auth + ROLE_ADMIN)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	discord := auth.NewDiscordProvider(
		s.config.DiscordClientID,
		s.config.DiscordClientSecret,
		s.config.DiscordCallbackURL,
	)

	citationService := service.NewCitationService(s.db, s.db, s.logger)
	engagementService := service.NewEngagementService(s.db, s.db, s.logger)
	humorService := service.NewHumorService(s.db)
	userService := service.NewUserService(s.db, s.db, s.db, s.logger)
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)

	citationHandler := handler.NewCitationHandler(citationService, engagementService, s.logger)
	humorHandler := handler.NewHumorHandler(humorService)
	userHandler := handler.NewUserHandler(userService, s.logger)
	authHandler := handler.NewAuthHandler(authService, discord, s.logger, s.config.CookieSecure)

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/discord/login", authHandler.HandleDiscordLogin)
		r.Get("/discord/callback", authHandler.HandleDiscordCallback)
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		// Public reads. Logged-in readers are still identified so request
		// logs carry the actor. The fixed segments must be registered
		// before the {id} wildcard or chi would try to look up a citation
		// named "search".
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))

			r.Get("/citations", citationHandler.HandleList)
			r.Get("/citations/search", citationHandler.HandleSearch)
			r.Get("/citations/random", citationHandler.HandleRandom)
			r.Get("/citations/{id}", citationHandler.HandleGetByID)
			r.Get("/humors", humorHandler.HandleList)
			r.Get("/humors/{id}", humorHandler.HandleGetByID)
		})

		// Authenticated writes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Post("/citations", citationHandler.HandleCreate)
			r.Put("/citations/{id}", citationHandler.HandleUpdate)
			r.Delete("/citations/{id}", citationHandler.HandleDelete)

			r.Post("/citations/{id}/like", citationHandler.HandleLike)
			r.Delete("/citations/{id}/like", citationHandler.HandleUnlike)
			r.Post("/citations/{id}/favorite", citationHandler.HandleFavorite)
			r.Delete("/citations/{id}/favorite", citationHandler.HandleUnfavorite)

			r.Get("/me", userHandler.HandleMe)

			// Admin surface.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(model.RoleAdmin))

				r.Get("/admin/users", userHandler.HandleList)
				r.Post("/admin/users", userHandler.HandleCreate)
				r.Get("/admin/users/{id}", userHandler.HandleGetByID)
				r.Put("/admin/users/{id}", userHandler.HandleUpdate)
				r.Delete("/admin/users/{id}", userHandler.HandleDelete)
			})
		})
	})

	return nil
}

// Handler exposes the assembled router. Tests mount it on an httptest server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database connection. Start calls this on shutdown; tests
// that use Handler directly must call it themselves.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30 seconds,
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
