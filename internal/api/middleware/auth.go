package middleware

import (
	"book_review_api/internal/common"
	"book_review_api/internal/common/security"
	"book_review_api/internal/domain/model"
	"book_review_api/internal/domain/repository"
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const principalCtxKey contextKey = "principal"

// Auth turns the token that jwtauth.Verifier extracted from the
// Authorization header into an authenticated principal. The token's user
// must still exist; a valid token for a deleted account is refused.
type Auth struct {
	users repository.UserRepository
}

func NewAuth(users repository.UserRepository) *Auth {
	return &Auth{users: users}
}

func (a *Auth) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil {
			switch {
			case errors.Is(err, jwtauth.ErrNoTokenFound):
				common.RespondError(w, http.StatusUnauthorized, "Authorization token required")
			case errors.Is(err, jwtauth.ErrExpired):
				common.RespondError(w, http.StatusUnauthorized, "Token expired.")
			default:
				common.RespondError(w, http.StatusUnauthorized, "Invalid token.")
			}
			return
		}

		if token == nil {
			common.RespondError(w, http.StatusUnauthorized, "Authorization token required")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondError(w, http.StatusUnauthorized, "Invalid token.")
			return
		}

		user, err := a.users.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				common.RespondError(w, http.StatusUnauthorized, "Invalid token. User not found.")
			} else {
				common.RespondError(w, http.StatusInternalServerError, "Server error during authentication.")
			}
			return
		}

		ctx := context.WithValue(r.Context(), principalCtxKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFromContext returns the authenticated user set by Authenticator.
func PrincipalFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(principalCtxKey).(*model.User)
	return user, ok
}
