package auth

import (
	"encoding/json"
	"net/http"

	"github.com/Jox86/sipp-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity headers stamped by the authenticating gateway in front of the API.
// Session management is an external collaborator; requests arriving here are
// already authenticated.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserName = "X-User-Name"
	HeaderUserMail = "X-User-Email"
	HeaderUserRole = "X-User-Role"
)

// Middleware resolves the caller identity from gateway headers
type Middleware struct {
	logger *zap.Logger
}

// NewMiddleware creates a new identity middleware
func NewMiddleware(logger *zap.Logger) *Middleware {
	return &Middleware{logger: logger}
}

// RequireUser rejects requests without a resolvable identity and places the
// UserContext in the request context for everything downstream.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get(HeaderUserID))
		if err != nil {
			m.unauthorized(w, "missing or invalid user identity")
			return
		}

		role := domain.UserRole(r.Header.Get(HeaderUserRole))
		if !role.IsValid() {
			m.unauthorized(w, "missing or invalid user role")
			return
		}

		userCtx := &UserContext{
			UserID:      userID,
			DisplayName: r.Header.Get(HeaderUserName),
			Email:       r.Header.Get(HeaderUserMail),
			Role:        role,
		}

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequireRole restricts a route to the given roles
func (m *Middleware) RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				m.unauthorized(w, "authentication required")
				return
			}
			if !userCtx.HasAnyRole(roles...) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(domain.ErrorResponse{
					Error:   "Forbidden",
					Message: "insufficient role for this operation",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{
		Error:   "Unauthorized",
		Message: message,
	})
}
