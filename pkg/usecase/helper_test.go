package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/repository/memory"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
)

var baseTime = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

type fixture struct {
	uc    *usecase.UseCases
	repo  *memory.Memory
	clock *clock.Fixed
}

func newFixture(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()
	clk := clock.NewFixed(baseTime)
	repo := memory.New(memory.WithClock(clk))
	opts = append([]usecase.Option{usecase.WithClock(clk), usecase.WithSyncDispatch()}, opts...)
	return &fixture{
		uc:    usecase.New(repo, opts...),
		repo:  repo,
		clock: clk,
	}
}

func asUser(sub string) context.Context {
	return auth.ContextWithToken(context.Background(), auth.NewToken(sub, sub+"@example.com", sub))
}

// seedRelease creates a product and a release with the given status
func (f *fixture) seedRelease(t *testing.T, code string, status types.ReleaseStatus) {
	t.Helper()
	ctx := asUser("admin")
	_, err := f.uc.Product.GetProduct(ctx, "prod")
	if err != nil {
		_, err = f.uc.Product.CreateProduct(ctx, "prod", "Product", "")
		gt.NoError(t, err).Required()
	}
	_, err = f.uc.Release.CreateRelease(ctx, usecase.CreateReleaseInput{
		Code:        code,
		ProductCode: "prod",
		Status:      status,
	})
	gt.NoError(t, err).Required()
}

// seedFeature creates a feature as creator under the release
func (f *fixture) seedFeature(t *testing.T, creator string, in usecase.FeatureInput) {
	t.Helper()
	if in.ProductCode == "" {
		in.ProductCode = "prod"
	}
	if in.Title == "" {
		in.Title = "Feature " + in.Code
	}
	_, err := f.uc.Feature.CreateFeature(asUser(creator), in)
	gt.NoError(t, err).Required()
}

func ptr[T any](v T) *T {
	return &v
}
