package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
	"github.com/secmon-lab/releaseboard/pkg/utils/errutil"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type userMeResponse struct {
	Sub       string     `json:"sub"`
	Email     string     `json:"email,omitempty"`
	Name      string     `json:"name,omitempty"`
	Role      types.Role `json:"role"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	NoAuthn   bool       `json:"noAuthn"`
}

// writeJSON writes data as a JSON response with the given status code
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// authMeHandler returns the identity the request was authenticated as
func authMeHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.TokenFromContext(r.Context())
		if err != nil {
			handleError(w, r, usecase.ErrUnauthenticated)
			return
		}

		resp := userMeResponse{
			Sub:     token.Sub,
			Email:   token.Email,
			Name:    token.Name,
			Role:    token.Role,
			NoAuthn: authUC.IsNoAuthn(),
		}
		if !token.ExpiresAt.IsZero() {
			resp.ExpiresAt = &token.ExpiresAt
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}
