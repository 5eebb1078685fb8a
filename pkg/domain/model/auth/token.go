package auth

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// AnonymousUserID is the identity used when authentication is disabled
const AnonymousUserID = "anonymous"

var ErrNoToken = goerr.New("no auth token in context")

// Token is the verified identity of the caller
type Token struct {
	Sub       string
	Email     string `masq:"secret"`
	Name      string
	Role      types.Role
	ExpiresAt time.Time
}

// NewToken creates a USER-role token for the given identity
func NewToken(sub, email, name string) *Token {
	return &Token{
		Sub:   sub,
		Email: email,
		Name:  name,
		Role:  types.RoleUser,
	}
}

// NewAnonymousUser returns the identity used in no-authn mode. It carries the
// ADMIN role so admin endpoints stay reachable during local development.
func NewAnonymousUser() *Token {
	return &Token{
		Sub:  AnonymousUserID,
		Name: "Anonymous",
		Role: types.RoleAdmin,
	}
}

func (x *Token) IsAdmin() bool {
	return x != nil && x.Role.IsAdmin()
}

type tokenCtxKey struct{}

// ContextWithToken stores the caller identity in ctx
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

// TokenFromContext returns the caller identity, or ErrNoToken
func TokenFromContext(ctx context.Context) (*Token, error) {
	token, ok := ctx.Value(tokenCtxKey{}).(*Token)
	if !ok || token == nil {
		return nil, ErrNoToken
	}
	return token, nil
}

// ActorID returns the subject of the caller, or empty if unauthenticated
func ActorID(ctx context.Context) string {
	token, err := TokenFromContext(ctx)
	if err != nil {
		return ""
	}
	return token.Sub
}
