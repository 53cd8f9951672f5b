package product

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/solarbrone/solar-store/internal/domain/money"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Products are
// created and edited through the back-office; the checkout core treats them
// as read-only.
type Product struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Slug            string            `json:"slug"`
	Description     string            `json:"description"`
	LongDescription string            `json:"longDescription,omitempty"`
	Price           money.Cents       `json:"price"`
	PriceSubtext    string            `json:"priceSubtext,omitempty"`
	Images          []string          `json:"images"`
	Category        string            `json:"category"`
	Specifications  map[string]string `json:"specifications"`
	Featured        bool              `json:"featured,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// Store defines persistence for the product catalog. Implementations read
// and rewrite the collection wholesale; there are no partial-field updates
// at the storage layer.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	Put(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// Slugify derives a URL-safe slug from a product name: lowercase, runs of
// separators collapsed to single hyphens, everything outside [a-z0-9-]
// dropped.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
