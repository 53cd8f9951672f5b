package redisstore

import (
	"context"

	"github.com/solarbrone/solar-store/internal/domain/blog"
)

var _ blog.Store = (*ArticleStore)(nil)

// ArticleStore implements blog.Store on the shared collection key.
type ArticleStore struct {
	s *Store
}

// Articles returns the blog article collection store.
func (s *Store) Articles() *ArticleStore {
	return &ArticleStore{s: s}
}

func (a *ArticleStore) List(ctx context.Context) ([]blog.Article, error) {
	return readCollection[blog.Article](ctx, a.s.rdb, keyArticles)
}

func (a *ArticleStore) GetByID(ctx context.Context, id string) (*blog.Article, error) {
	items, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, blog.ErrNotFound
}

func (a *ArticleStore) GetBySlug(ctx context.Context, slug string) (*blog.Article, error) {
	items, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Slug == slug {
			return &items[i], nil
		}
	}
	return nil, blog.ErrNotFound
}

func (a *ArticleStore) Put(ctx context.Context, art *blog.Article) error {
	items, err := a.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range items {
		if items[i].ID == art.ID {
			items[i] = *art
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, *art)
	}
	return writeCollection(ctx, a.s.rdb, keyArticles, items)
}

func (a *ArticleStore) Delete(ctx context.Context, id string) error {
	items, err := a.List(ctx)
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
		return blog.ErrNotFound
	}
	return writeCollection(ctx, a.s.rdb, keyArticles, kept)
}
