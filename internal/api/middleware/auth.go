package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Senpai-Sama7/Astro-sub000/internal/api/presenter"
)

const rolesKey = "operator_roles"

// RolesCtx retrieves the roles of the authenticated operator from the
// context. Empty outside of OperatorAuth-protected routes.
func RolesCtx(ctx context.Context) []string {
	roles, ok := ctx.Value(rolesKey).([]string)
	if !ok {
		return nil
	}
	return roles
}

// OperatorAuth checks for a valid operator session token and stores its
// roles claim in the request context. Which capabilities those roles
// actually grant is decided downstream by the policy store.
func OperatorAuth(signingKey []byte) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			tokenStr := strings.TrimPrefix(auth, "Bearer ")

			if tokenStr == "" {
				presenter.Error(w, r, "login required", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method")
				}
				return signingKey, nil
			})
			if err != nil || !token.Valid {
				presenter.Error(w, r, "invalid session token", http.StatusUnauthorized)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				presenter.Error(w, r, "invalid claims", http.StatusUnauthorized)
				return
			}

			rawRoles, ok := claims["roles"].([]any)
			if !ok {
				presenter.Error(w, r, "invalid claims", http.StatusUnauthorized)
				return
			}

			var roles []string
			for _, roleAny := range rawRoles {
				if roleStr, ok := roleAny.(string); ok {
					roles = append(roles, roleStr)
				}
			}
			if len(roles) == 0 {
				presenter.Error(w, r, "insufficient privileges", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), rolesKey, roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
