package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

type productRepository struct {
	client *firestore.Client
	cols   *collections
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	created := *product
	now := r.cols.now()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	if _, err := r.cols.ref(CollectionProducts).Doc(created.Code).Create(ctx, &created); err != nil {
		if isAlreadyExists(err) {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "product already exists", goerr.V("code", created.Code))
		}
		return nil, goerr.Wrap(err, "failed to create product", goerr.V("code", created.Code))
	}
	return &created, nil
}

func (r *productRepository) Get(ctx context.Context, code string) (*model.Product, error) {
	doc, err := r.cols.ref(CollectionProducts).Doc(code).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "product not found", goerr.V("code", code))
		}
		return nil, goerr.Wrap(err, "failed to get product", goerr.V("code", code))
	}

	var p model.Product
	if err := doc.DataTo(&p); err != nil {
		return nil, goerr.Wrap(err, "failed to decode product", goerr.V("code", code))
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context) ([]*model.Product, error) {
	products, err := readAll[model.Product](r.cols.ref(CollectionProducts).Documents(ctx), "products")
	if err != nil {
		return nil, err
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Code < products[j].Code })
	return products, nil
}

func (r *productRepository) Delete(ctx context.Context, code string) error {
	ref := r.cols.ref(CollectionProducts).Doc(code)
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "product not found", goerr.V("code", code))
		}
		return goerr.Wrap(err, "failed to delete product", goerr.V("code", code))
	}
	return nil
}
