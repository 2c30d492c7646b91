package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cartline/cartline-backend/api/responses"
	pkgerrors "github.com/cartline/cartline-backend/pkg/errors"
	"github.com/cartline/cartline-backend/pkg/logger"
)

// RequireSelf lets a request through only when the authenticated user is the
// one named by the param path segment. It must run after Auth.
func RequireSelf(param string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := UserIDFromContext(ctx)
			if userID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}
			if !strings.EqualFold(strings.TrimSpace(chi.URLParam(r, param)), userID) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "access to another user's resources is forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
