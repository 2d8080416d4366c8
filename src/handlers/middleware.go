// backend/src/handlers/middleware.go
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/username/atlasfolio/backend/src/logger"
	"github.com/username/atlasfolio/backend/src/models"
)

type contextKey string

const (
	requestIDContextKey contextKey = "requestID"
	orgRoleContextKey   contextKey = "orgRole"
)

// ContextualLoggerMiddleware attaches a request-scoped logger with a
// generated requestID to the context.
func ContextualLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		ctxLogger := logger.L.With(slog.String("requestID", requestID))

		ctx := logger.ToContext(r.Context(), ctxLogger)
		ctx = context.WithValue(ctx, requestIDContextKey, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OrgRoleMiddleware reads the advisory X-Org-Role header into the context.
// The role is supplied by the surrounding UI and is not a security
// boundary; it only gates settings writes.
func OrgRoleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := models.OrgRole(r.Header.Get("X-Org-Role"))
		if role == "" {
			role = models.RoleViewer
		}
		ctx := context.WithValue(r.Context(), orgRoleContextKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOrgRoleFromContext returns the advisory role set by OrgRoleMiddleware.
func GetOrgRoleFromContext(ctx context.Context) models.OrgRole {
	if role, ok := ctx.Value(orgRoleContextKey).(models.OrgRole); ok {
		return role
	}
	return models.RoleViewer
}

// RequireOwnerRole rejects requests whose advisory role is not OWNER.
func RequireOwnerRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetOrgRoleFromContext(r.Context()) != models.RoleOwner {
			sendJSONError(w, "owner role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
