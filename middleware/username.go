package middleware

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
)

type contextKey string

const UsernameKey contextKey = "username"

// Usernames end up in file names and table keys, so only a conservative
// character set is allowed.
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// UsernameMiddleware extracts the username identifying the tracker session.
// There is no authentication layer: this is a personal tool and the username
// is just the key that selects whose log to open, from the X-Username header
// or a ?username= query parameter.
func UsernameMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := r.Header.Get("X-Username")
		if username == "" {
			username = r.URL.Query().Get("username")
		}
		if username == "" {
			respondWithError(w, http.StatusBadRequest, "Username required: set the X-Username header")
			return
		}
		if !usernameRe.MatchString(username) {
			respondWithError(w, http.StatusBadRequest, "Invalid username: letters, digits, '.', '_' and '-' only")
			return
		}

		ctx := context.WithValue(r.Context(), UsernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUsername extracts the session username from context.
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write([]byte(fmt.Sprintf(`{"error": "%s"}`, message)))
}
