package redisstore

import (
	"context"

	"github.com/solarbrone/solar-store/internal/domain/product"
)

var _ product.Store = (*ProductStore)(nil)

// ProductStore implements product.Store on the shared collection key.
type ProductStore struct {
	s *Store
}

// Products returns the product collection store.
func (s *Store) Products() *ProductStore {
	return &ProductStore{s: s}
}

func (p *ProductStore) List(ctx context.Context) ([]product.Product, error) {
	return readCollection[product.Product](ctx, p.s.rdb, keyProducts)
}

func (p *ProductStore) GetByID(ctx context.Context, id string) (*product.Product, error) {
	items, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, product.ErrNotFound
}

func (p *ProductStore) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	items, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Slug == slug {
			return &items[i], nil
		}
	}
	return nil, product.ErrNotFound
}

// Put inserts or replaces by id, then rewrites the collection.
func (p *ProductStore) Put(ctx context.Context, prod *product.Product) error {
	items, err := p.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range items {
		if items[i].ID == prod.ID {
			items[i] = *prod
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, *prod)
	}
	return writeCollection(ctx, p.s.rdb, keyProducts, items)
}

func (p *ProductStore) Delete(ctx context.Context, id string) error {
	items, err := p.List(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	found := false
	for _, it := range items {
		if it.ID == id {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return product.ErrNotFound
	}
	return writeCollection(ctx, p.s.rdb, keyProducts, kept)
}
