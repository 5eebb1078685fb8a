package sql

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	row := productFromModel(product)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicated(err) {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "product already exists", goerr.V("code", product.Code))
		}
		return nil, goerr.Wrap(err, "failed to create product", goerr.V("code", product.Code))
	}
	return row.toModel(), nil
}

func (r *productRepository) Get(ctx context.Context, code string) (*model.Product, error) {
	var row productRow
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "product not found", goerr.V("code", code))
		}
		return nil, goerr.Wrap(err, "failed to get product", goerr.V("code", code))
	}
	return row.toModel(), nil
}

func (r *productRepository) List(ctx context.Context) ([]*model.Product, error) {
	var rows []productRow
	if err := r.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list products")
	}

	products := make([]*model.Product, 0, len(rows))
	for i := range rows {
		products = append(products, rows[i].toModel())
	}
	return products, nil
}

func (r *productRepository) Delete(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).Where("code = ?", code).Delete(&productRow{})
	if res.Error != nil {
		return goerr.Wrap(res.Error, "failed to delete product", goerr.V("code", code))
	}
	if res.RowsAffected == 0 {
		return goerr.Wrap(ErrNotFound, "product not found", goerr.V("code", code))
	}
	return nil
}
