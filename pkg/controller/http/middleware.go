package http

import (
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
)

// bearerToken extracts the credential from an "Authorization: Bearer" header
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authMiddleware validates authentication for protected requests
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Without an auth use case every request is the anonymous user
			if authUC == nil {
				ctx := auth.ContextWithToken(r.Context(), auth.NewAnonymousUser())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token, err := authUC.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				handleError(w, r, goerr.Wrap(usecase.ErrUnauthenticated, "authentication failed", goerr.V("reason", err.Error())))
				return
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			ctx = logging.With(ctx, logging.From(ctx).With("user", token.Sub))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAdmin rejects authenticated callers without the ADMIN role
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.TokenFromContext(r.Context())
		if err != nil {
			handleError(w, r, goerr.Wrap(usecase.ErrUnauthenticated, "no authenticated user"))
			return
		}
		if !token.IsAdmin() {
			handleError(w, r, goerr.Wrap(usecase.ErrForbidden, "admin role required", goerr.V("user", token.Sub)))
			return
		}
		next.ServeHTTP(w, r)
	})
}
