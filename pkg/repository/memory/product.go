package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

type productRepository struct {
	st *store
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.products[product.Code]; exists {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "product already exists", goerr.V("code", product.Code))
	}

	created := copyProduct(product)
	stamp(r.st.now(), &created.CreatedAt, &created.UpdatedAt)
	r.st.products[created.Code] = created
	return copyProduct(created), nil
}

func (r *productRepository) Get(ctx context.Context, code string) (*model.Product, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	p, exists := r.st.products[code]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "product not found", goerr.V("code", code))
	}
	return copyProduct(p), nil
}

func (r *productRepository) List(ctx context.Context) ([]*model.Product, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	products := make([]*model.Product, 0, len(r.st.products))
	for _, p := range r.st.products {
		products = append(products, copyProduct(p))
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Code < products[j].Code })
	return products, nil
}

func (r *productRepository) Delete(ctx context.Context, code string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.products[code]; !exists {
		return goerr.Wrap(ErrNotFound, "product not found", goerr.V("code", code))
	}
	delete(r.st.products, code)
	return nil
}
