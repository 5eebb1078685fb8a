package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
)

type ProductUseCase struct {
	repo  interfaces.Repository
	clock clock.Clock
}

func (uc *ProductUseCase) CreateProduct(ctx context.Context, code, name, description string) (*model.Product, error) {
	if err := types.ValidateCode("product", code); err != nil {
		return nil, invalidFrom(err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("product name is required")
	}

	now := uc.clock.Now()
	created, err := uc.repo.Product().Create(ctx, &model.Product{
		Code:        code,
		Name:        name,
		Description: description,
		CreatedBy:   auth.ActorID(ctx),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create product", goerr.V("code", code))
	}
	return created, nil
}

func (uc *ProductUseCase) GetProduct(ctx context.Context, code string) (*model.Product, error) {
	p, err := uc.repo.Product().Get(ctx, code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get product", goerr.V("code", code))
	}
	return p, nil
}

func (uc *ProductUseCase) ListProducts(ctx context.Context) ([]*model.Product, error) {
	products, err := uc.repo.Product().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list products")
	}
	return products, nil
}

func (uc *ProductUseCase) DeleteProduct(ctx context.Context, code string) error {
	if err := uc.repo.Product().Delete(ctx, code); err != nil {
		return goerr.Wrap(err, "failed to delete product", goerr.V("code", code))
	}
	return nil
}
