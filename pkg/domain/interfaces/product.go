package interfaces

import (
	"context"

	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

// ProductRepository defines the interface for Product data access
type ProductRepository interface {
	// Create fails with ErrAlreadyExists if the code is taken
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	Get(ctx context.Context, code string) (*model.Product, error)
	List(ctx context.Context) ([]*model.Product, error)
	Delete(ctx context.Context, code string) error
}
