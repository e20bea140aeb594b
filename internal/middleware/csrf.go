package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"

	"threadboard/internal/auth"
)

const (
	// CSRFFormField is the form field checked for the submitted token.
	CSRFFormField = "csrf_token"

	// CSRFHeader is the header checked when no form field is submitted.
	CSRFHeader = "X-CSRF-Token"

	// csrfTokenBytes is the entropy of a generated token.
	csrfTokenBytes = 32

	// csrfTokenContextKey is the context key for the request's token.
	csrfTokenContextKey ContextKey = "csrf_token"
)

// Methods whose semantics imply a server-side state change. Safe methods
// (GET, HEAD, OPTIONS, TRACE) are never validated.
var stateMutatingMethods = map[string]bool{
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// CSRFGuard implements the synchronizer-token pattern: a per-session secret
// issued lazily on the first request that carries a session, exposed to
// handlers via CSRFToken, and required back on state-mutating requests.
//
// Requests without a session are exempt - sessionless callers are assumed
// to authenticate by other means and are a trusted boundary, not defended
// here. Exempt path prefixes (upload endpoints doing their own auth checks)
// also skip validation.
type CSRFGuard struct {
	sessions    *auth.SessionManager
	secretKey   string // reserved for signed tokens; plain random tokens don't use it
	exemptPaths []string
}

// NewCSRFGuard creates a CSRFGuard. When secretKey is empty a random secret
// is generated. When exemptPaths is nil the default upload endpoints are
// exempted.
func NewCSRFGuard(sm *auth.SessionManager, secretKey string, exemptPaths []string) *CSRFGuard {
	if secretKey == "" {
		secretKey = randomSecret()
	}
	if exemptPaths == nil {
		exemptPaths = []string{"/upload-image", "/upload-video"}
	}
	return &CSRFGuard{
		sessions:    sm,
		secretKey:   secretKey,
		exemptPaths: exemptPaths,
	}
}

// Handler wraps next with CSRF protection. next is invoked exactly once,
// except when validation fails, in which case the request is rejected with
// 403 and never reaches next.
func (g *CSRFGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := GetSession(r)

		// Issue a token lazily for any request carrying a session,
		// including GET. The token lives for the session's lifetime.
		if session != nil && session.CSRFToken == "" {
			token, err := generateCSRFToken()
			if err != nil {
				http.Error(w, "failed to generate CSRF token", http.StatusInternalServerError)
				return
			}
			if err := g.sessions.SetCSRFToken(session.ID, token); err != nil {
				log.Printf("CSRF token store error: %v", err)
				http.Error(w, "failed to store CSRF token", http.StatusInternalServerError)
				return
			}
			session.CSRFToken = token
		}

		// Expose the token to handlers and templates on every request.
		token := ""
		if session != nil {
			token = session.CSRFToken
		}
		r = r.WithContext(context.WithValue(r.Context(), csrfTokenContextKey, token))

		if !stateMutatingMethods[r.Method] {
			next.ServeHTTP(w, r)
			return
		}

		// Exempt paths implement their own authentication checks.
		if g.isExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		// No session capability: nothing to validate against.
		if session == nil {
			next.ServeHTTP(w, r)
			return
		}

		submitted := submittedCSRFToken(r)
		if submitted == "" || session.CSRFToken == "" ||
			subtle.ConstantTimeCompare([]byte(submitted), []byte(session.CSRFToken)) != 1 {
			http.Error(w, "CSRF token validation failed", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CSRFToken returns the token attached to the request context, or "" when
// the request carries no session.
func CSRFToken(r *http.Request) string {
	token, ok := r.Context().Value(csrfTokenContextKey).(string)
	if !ok {
		return ""
	}
	return token
}

// isExempt reports whether the path starts with an exempt prefix.
func (g *CSRFGuard) isExempt(path string) bool {
	for _, prefix := range g.exemptPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// submittedCSRFToken extracts the client token. The form field wins over
// the header when both are present. Body parse failures are swallowed and
// read as "no token submitted" - the comparison then fails closed.
func submittedCSRFToken(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data") {
		if v := r.PostFormValue(CSRFFormField); v != "" {
			return v
		}
	}
	return r.Header.Get(CSRFHeader)
}

// generateCSRFToken returns a URL-safe token with csrfTokenBytes of entropy.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating csrf token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// randomSecret generates fallback secret key material.
func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failure at startup is not recoverable
		panic("csrf: generating secret key: " + err.Error())
	}
	return hex.EncodeToString(b)
}
