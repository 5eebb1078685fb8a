package usecase

import (
	"context"

	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
)

// NoAuthnUseCase accepts every request as a fixed user (for development/testing)
type NoAuthnUseCase struct {
	user *auth.Token
}

// NewNoAuthnUseCase creates a NoAuthnUseCase. A nil user means the anonymous
// ADMIN identity.
func NewNoAuthnUseCase(user *auth.Token) *NoAuthnUseCase {
	if user == nil {
		user = auth.NewAnonymousUser()
	}
	return &NoAuthnUseCase{user: user}
}

// Authenticate ignores the bearer token and returns the configured user
func (uc *NoAuthnUseCase) Authenticate(ctx context.Context, bearer string) (*auth.Token, error) {
	user := *uc.user
	return &user, nil
}

func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
