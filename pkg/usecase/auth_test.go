package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
)

func TestJWTAuthUseCase(t *testing.T) {
	clk := clock.NewFixed(baseTime)
	uc, err := usecase.NewJWTAuthUseCase([]byte("test-secret"), usecase.WithIssuer("releaseboard"), usecase.WithAuthClock(clk))
	gt.NoError(t, err).Required()
	gt.Bool(t, uc.IsNoAuthn()).False()

	admin := &auth.Token{Sub: "U1", Email: "ops@example.com", Name: "Ops", Role: types.RoleAdmin}
	signed, err := uc.IssueToken(admin, time.Hour)
	gt.NoError(t, err).Required()

	t.Run("valid token", func(t *testing.T) {
		token, err := uc.Authenticate(context.Background(), signed)
		gt.NoError(t, err).Required()
		gt.Value(t, token.Sub).Equal("U1")
		gt.Value(t, token.Email).Equal("ops@example.com")
		gt.Value(t, token.Name).Equal("Ops")
		gt.Bool(t, token.IsAdmin()).True()
	})

	t.Run("missing role is a user", func(t *testing.T) {
		s, err := uc.IssueToken(auth.NewToken("U2", "", ""), time.Hour)
		gt.NoError(t, err).Required()
		token, err := uc.Authenticate(context.Background(), s)
		gt.NoError(t, err).Required()
		gt.Value(t, token.Role).Equal(types.RoleUser)
	})

	t.Run("empty bearer", func(t *testing.T) {
		_, err := uc.Authenticate(context.Background(), "")
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := usecase.NewJWTAuthUseCase([]byte("another-secret"), usecase.WithIssuer("releaseboard"), usecase.WithAuthClock(clk))
		gt.NoError(t, err).Required()
		_, err = other.Authenticate(context.Background(), signed)
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
	})

	t.Run("expired", func(t *testing.T) {
		later, err := usecase.NewJWTAuthUseCase([]byte("test-secret"), usecase.WithIssuer("releaseboard"),
			usecase.WithAuthClock(clock.NewFixed(baseTime.Add(2*time.Hour))))
		gt.NoError(t, err).Required()
		_, err = later.Authenticate(context.Background(), signed)
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := uc.Authenticate(context.Background(), "not.a.jwt")
		gt.Error(t, err).Is(usecase.ErrUnauthenticated)
	})

	t.Run("empty secret", func(t *testing.T) {
		_, err := usecase.NewJWTAuthUseCase(nil)
		gt.Value(t, err).NotNil()
	})
}
