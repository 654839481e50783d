package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/catalog-connector/internal"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuth guards write routes with HTTP basic auth against a bcrypt hash.
func AdminAuth(username, passwordHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(user), []byte(username)) != 1 ||
				bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(pass)) != nil {
				logger.Warn("admin authentication failed",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr)

				w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
				status, body := internal.ErrInvalidCredentials.ToHTTPResponse()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_ = json.NewEncoder(w).Encode(body)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
