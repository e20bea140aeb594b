package middleware

import (
	"net/http"
	"strings"
)

// Paths serving user-specific or credential content that must never be
// cached by browsers or intermediaries.
var sensitivePathPrefixes = []string{"/login", "/register", "/threads", "/create", "/edit", "/main"}

// SecurityHeaders adds security-related HTTP headers to responses.
// These headers help protect against common web vulnerabilities:
// clickjacking, XSS, MIME sniffing, Spectre-class leaks and unwanted
// browser feature access.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent clickjacking by disallowing embedding in iframes
		w.Header().Set("X-Frame-Options", "DENY")

		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Control referrer information sent with requests
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Restrict permissions/features the browser can use
		w.Header().Set("Permissions-Policy",
			"camera=(), microphone=(), geolocation=(), payment=(), usb=(), "+
				"magnetometer=(), accelerometer=(), gyroscope=()")

		// Cross-origin isolation (Spectre mitigation)
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")

		// Content Security Policy - strict, no unsafe-inline
		csp := "default-src 'self'; " +
			"script-src 'self'; " +
			"style-src 'self'; " +
			"img-src 'self' data:; " +
			"font-src 'self'; " +
			"connect-src 'self'; " +
			"frame-ancestors 'none'; " +
			"form-action 'self'; " +
			"base-uri 'self'; " +
			"object-src 'none'; " +
			"frame-src 'none'; " +
			"media-src 'self'; " +
			"manifest-src 'self'; " +
			"worker-src 'self'"
		w.Header().Set("Content-Security-Policy", csp)

		// Never cache login, registration or user-specific pages
		if isSensitivePath(r.URL.Path) {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate, private")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}

		// Strict-Transport-Security is intentionally not set: the server
		// runs behind plain HTTP in local development.

		next.ServeHTTP(w, r)
	})
}

// isSensitivePath reports whether the path starts with a sensitive prefix.
func isSensitivePath(path string) bool {
	for _, prefix := range sensitivePathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
