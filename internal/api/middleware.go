// Package api implements the venue directory REST API using chi.
package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthMiddleware returns middleware that validates a Bearer token on
// moderation routes. If enabled is false, all requests pass through.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="moderation"`)
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// VoterHeader carries the anonymous voter identity.
const VoterHeader = "X-Voter-ID"

type voterKey struct{}

// RequireVoter rejects requests without a voter identity and stores the
// trimmed id in the request context.
func RequireVoter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		voter := strings.TrimSpace(r.Header.Get(VoterHeader))
		if voter == "" {
			writeJSON(w, http.StatusBadRequest, errorBody(VoterHeader+" header is required"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), voterKey{}, voter)))
	})
}

func voterFrom(ctx context.Context) string {
	v, _ := ctx.Value(voterKey{}).(string)
	return v
}
