package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

func TestTokenContext(t *testing.T) {
	_, err := auth.TokenFromContext(context.Background())
	gt.Bool(t, errors.Is(err, auth.ErrNoToken)).True()
	gt.Value(t, auth.ActorID(context.Background())).Equal("")

	ctx := auth.ContextWithToken(context.Background(), auth.NewToken("U1", "u1@example.com", "User One"))
	token, err := auth.TokenFromContext(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, token.Sub).Equal("U1")
	gt.Value(t, token.Role).Equal(types.RoleUser)
	gt.Bool(t, token.IsAdmin()).False()
	gt.Value(t, auth.ActorID(ctx)).Equal("U1")
}

func TestAnonymousUserIsAdmin(t *testing.T) {
	token := auth.NewAnonymousUser()
	gt.Value(t, token.Sub).Equal(auth.AnonymousUserID)
	gt.Bool(t, token.IsAdmin()).True()
}
