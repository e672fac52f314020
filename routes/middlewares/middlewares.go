package middlewares

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/mbolis/agriquest/httpx"
)

const AdminRole = "admin"

// Admin checks for the 'admin' role in the bearer token signed with secret.
func Admin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), RequireRole(AdminRole)).Handler(next)
	}
}

// RequireRole lets the request through when the token claims carry role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)
			if !HasRole(claims, role) {
				httpx.WriteError(w, http.StatusForbidden, http.StatusText(http.StatusForbidden))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func HasRole(claims map[string]string, role string) bool {
	rolesClaim, ok := claims["roles"]
	if !ok {
		return false
	}
	for _, r := range strings.Split(rolesClaim, ",") {
		if strings.TrimSpace(r) == role {
			return true
		}
	}
	return false
}
