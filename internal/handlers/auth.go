package handlers

import (
	"log"
	"net/http"
	"strings"

	"threadboard/internal/auth"
	"threadboard/internal/middleware"
	"threadboard/internal/models"
	"threadboard/internal/repository"
	"threadboard/internal/sanitize"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// AuthHandler handles authentication routes.
type AuthHandler struct {
	userRepo       *repository.UserRepository
	sessionManager *auth.SessionManager
	cookieMaxAge   int
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	userRepo *repository.UserRepository,
	sessionManager *auth.SessionManager,
	cookieMaxAge int,
) *AuthHandler {
	return &AuthHandler{
		userRepo:       userRepo,
		sessionManager: sessionManager,
		cookieMaxAge:   cookieMaxAge,
	}
}

// LoginPage renders the login page.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	render(w, "login.html", http.StatusOK, map[string]any{
		"Title": "Login",
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLoginError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	// Usernames are stored sanitized, so sanitize before lookup
	username := sanitize.Username(r.FormValue("username"))
	password := r.FormValue("password")

	// Validate input
	if username == "" || password == "" {
		h.renderLoginError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	// Find user
	user, err := h.userRepo.GetByUsername(username)
	if err != nil {
		log.Printf("Login error finding user: %v", err)
		h.renderLoginError(w, http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}

	if user == nil || !auth.CheckPassword(password, user.PasswordHash) {
		h.renderLoginError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	// Create session
	session, err := h.sessionManager.Create(user.ID)
	if err != nil {
		log.Printf("Login error creating session: %v", err)
		h.renderLoginError(w, http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}

	// Set session cookie
	middleware.SetSessionCookie(w, session.ID, h.cookieMaxAge)

	http.Redirect(w, r, "/main", http.StatusSeeOther)
}

// RegisterPage renders the registration page.
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	render(w, "register.html", http.StatusOK, map[string]any{
		"Title": "Register",
	})
}

// Register handles the registration form submission.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderRegisterError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	// Validate input
	var errs middleware.ValidationErrors
	if !middleware.ValidateRequired(username) {
		errs.Add("username", "Username is required")
	}
	if !middleware.ValidateRequired(email) {
		errs.Add("email", "Email is required")
	} else if !middleware.ValidateEmail(email) {
		errs.Add("email", "Email is invalid")
	}
	if !middleware.ValidateRequired(password) {
		errs.Add("password", "Password is required")
	} else if !middleware.ValidateLength(password, MinPasswordLength, 128) {
		errs.Add("password", "Password must be at least 8 characters")
	}
	if errs.HasErrors() {
		h.renderRegisterError(w, http.StatusBadRequest, errs.Error())
		return
	}

	// Usernames are stored in their sanitized form
	username = sanitize.Username(username)
	if username == "" {
		h.renderRegisterError(w, http.StatusBadRequest, "Username must contain letters or digits")
		return
	}

	// Check if username is taken
	exists, err := h.userRepo.UsernameExists(username)
	if err != nil {
		log.Printf("Register error checking username: %v", err)
		h.renderRegisterError(w, http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}
	if exists {
		h.renderRegisterError(w, http.StatusConflict, "This username is already taken")
		return
	}

	// Hash password
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		log.Printf("Register error hashing password: %v", err)
		h.renderRegisterError(w, http.StatusInternalServerError, "An error occurred. Please try again.")
		return
	}

	// Create user
	user := &models.User{
		Username:     username,
		Email:        sanitize.Text(email),
		PasswordHash: passwordHash,
	}

	if _, err := h.userRepo.Create(user); err != nil {
		// The UNIQUE constraint may fire on racing registrations
		log.Printf("Register error creating user: %v", err)
		h.renderRegisterError(w, http.StatusConflict, "This username is already taken")
		return
	}

	// Registration does not log the user in; they authenticate explicitly
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout handles user logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Get session cookie
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil {
		// Delete session from database
		h.sessionManager.Delete(cookie.Value)
	}

	// Clear session cookie
	middleware.ClearSessionCookie(w)

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// renderLoginError renders the login page with an error message.
func (h *AuthHandler) renderLoginError(w http.ResponseWriter, status int, errMsg string) {
	render(w, "login.html", status, map[string]any{
		"Title": "Login",
		"Error": errMsg,
	})
}

// renderRegisterError renders the register page with an error message.
func (h *AuthHandler) renderRegisterError(w http.ResponseWriter, status int, errMsg string) {
	render(w, "register.html", status, map[string]any{
		"Title": "Register",
		"Error": errMsg,
	})
}
