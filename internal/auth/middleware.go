package auth

import (
	"encoding/json"
	"net/http"
)

// HeaderAPIKey is the request header carrying the shared secret.
const HeaderAPIKey = "X-API-Key"

// Middleware returns an HTTP middleware that rejects requests whose
// X-API-Key header does not match the configured secret. The response is
// identical for absent, malformed, and wrong keys.
func Middleware(comparator *Comparator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !comparator.Authorize(r.Header.Get(HeaderAPIKey)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
