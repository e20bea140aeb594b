// Package app wires the application: repositories, middleware and routes.
package app

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"threadboard/internal/auth"
	"threadboard/internal/config"
	"threadboard/internal/database"
	"threadboard/internal/handlers"
	"threadboard/internal/middleware"
	"threadboard/internal/repository"
)

// App holds the application dependencies.
type App struct {
	config         *config.Config
	db             *database.DB
	router         *chi.Mux
	userRepo       *repository.UserRepository
	threadRepo     *repository.ThreadRepository
	sessionManager *auth.SessionManager
	authMiddleware *middleware.AuthMiddleware
	csrfGuard      *middleware.CSRFGuard
	authHandler    *handlers.AuthHandler
	threadHandler  *handlers.ThreadHandler
	uploadHandler  *handlers.UploadHandler
}

// New creates the application with all dependencies wired.
func New(cfg *config.Config, db *database.DB) *App {
	userRepo := repository.NewUserRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	sessionManager := auth.NewSessionManager(db)

	app := &App{
		config:         cfg,
		db:             db,
		userRepo:       userRepo,
		threadRepo:     threadRepo,
		sessionManager: sessionManager,
		authMiddleware: middleware.NewAuthMiddleware(sessionManager, userRepo),
		csrfGuard:      middleware.NewCSRFGuard(sessionManager, cfg.SecretKey, cfg.CSRFExemptPaths),
		authHandler:    handlers.NewAuthHandler(userRepo, sessionManager, cfg.SessionMaxAge),
		threadHandler:  handlers.NewThreadHandler(threadRepo),
		uploadHandler:  handlers.NewUploadHandler(cfg.UploadDir, cfg.MaxUploadSize),
	}

	app.setupRouter()
	return app
}

// Router returns the HTTP handler for the application.
func (app *App) Router() http.Handler {
	return app.router
}

func (app *App) setupRouter() {
	r := chi.NewRouter()

	// Chi middleware (aliased as chimw to avoid conflict with our middleware package)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Compress(5))

	// Security headers for all responses
	r.Use(middleware.SecurityHeaders)

	// Load session and user for all routes; the CSRF guard reads the
	// session from the request context, so ordering matters here
	r.Use(app.authMiddleware.LoadSession)
	r.Use(app.csrfGuard.Handler)

	// Health check
	r.Get("/health", app.handleHealth)

	// Public routes
	r.Get("/", handlers.Home)
	r.Get("/threads", app.threadHandler.List)

	// Auth routes (redirect if already authenticated)
	// Rate limited to prevent brute force attacks
	r.Group(func(r chi.Router) {
		r.Use(app.authMiddleware.RedirectIfAuthenticated)
		r.Use(middleware.LimitAuth)
		r.Get("/login", app.authHandler.LoginPage)
		r.Post("/login", app.authHandler.Login)
		r.Get("/register", app.authHandler.RegisterPage)
		r.Post("/register", app.authHandler.Register)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(app.authMiddleware.RequireAuth)
		r.Get("/main", handlers.Main)
		r.Get("/threads/new", app.threadHandler.NewForm)
		r.Post("/threads", app.threadHandler.Create)
	})

	// Upload routes: exempt from CSRF validation, authenticated by the
	// handlers themselves, strictly rate limited
	r.Group(func(r chi.Router) {
		r.Use(middleware.LimitStrict)
		r.Post("/upload-image", app.uploadHandler.UploadImage)
		r.Post("/upload-video", app.uploadHandler.UploadVideo)
	})

	// Logout (needs to be accessible when logged in)
	r.Post("/logout", app.authHandler.Logout)

	app.router = r
}

// handleHealth returns the server health status.
func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}
