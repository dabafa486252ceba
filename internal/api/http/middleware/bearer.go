package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dtroode/regbot/internal/logger"
)

const bearerPrefix = "Bearer "

// RequireBearer rejects requests whose Authorization header does not carry
// the static secret. An empty secret rejects everything.
func RequireBearer(secret string, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok || secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				logger.Warn("bearer token mismatch", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
