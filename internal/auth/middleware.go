package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coparently/coparently/internal"
	"github.com/coparently/coparently/pkg/logger"
)

// Middleware rejects requests without a valid bearer token and stores the
// caller's parent id in the request context.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r)
		if token == "" {
			writeUnauthorized(w, "missing bearer token")
			return
		}

		claims, err := v.ValidateToken(token)
		if err != nil {
			writeUnauthorized(w, err.Error())
			return
		}

		ctx := internal.ContextWithUserID(r.Context(), claims.UserID)
		ctx = logger.With(ctx, "userID", claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return authHeader[7:]
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    http.StatusUnauthorized,
		"message": message,
	})
}
