// Package blog models the content articles managed from the back-office.
package blog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested article does not exist.
var ErrNotFound = errors.New("article not found")

// Article is a blog post. Drafts (Published=false) are visible only to the
// back-office.
type Article struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt,omitempty"`
	Body       string    `json:"body"`
	CoverImage string    `json:"coverImage,omitempty"`
	Published  bool      `json:"published"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Store defines persistence for articles. Same wholesale read/rewrite
// contract as the product store.
type Store interface {
	List(ctx context.Context) ([]Article, error)
	GetByID(ctx context.Context, id string) (*Article, error)
	GetBySlug(ctx context.Context, slug string) (*Article, error)
	Put(ctx context.Context, a *Article) error
	Delete(ctx context.Context, id string) error
}
