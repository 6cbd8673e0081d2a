package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/patchworkhq/hearth/internal/auth"
	"github.com/patchworkhq/hearth/internal/store"
)

// RequireAuth validates the bearer token and populates AuthContext.
// Missing/invalid credentials fail with 401; a valid user without a
// household fails with 403. No partial context ever reaches handlers.
func RequireAuth(tokens *auth.TokenManager, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			email, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			user, err := users.GetByEmail(email)
			if err != nil || user == nil {
				writeAuthError(w, http.StatusUnauthorized, "unknown user")
				return
			}
			if user.HouseholdID == nil {
				writeAuthError(w, http.StatusForbidden, "user has no household")
				return
			}

			ac := auth.AuthContext{
				UserID:      user.ID,
				HouseholdID: *user.HouseholdID,
				Email:       user.Email,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
