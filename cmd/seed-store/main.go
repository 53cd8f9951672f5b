// Command seed-store loads the sample catalog into the Redis document store
// so a fresh deployment has products to show.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/solarbrone/solar-store/internal/domain/money"
	"github.com/solarbrone/solar-store/internal/domain/product"
	"github.com/solarbrone/solar-store/internal/storage/redisstore"
)

type productJSON struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	LongDescription string            `json:"longDescription"`
	Price           money.Cents       `json:"price"`
	PriceSubtext    string            `json:"priceSubtext"`
	Images          []string          `json:"images"`
	Category        string            `json:"category"`
	Specifications  map[string]string `json:"specifications"`
	Featured        bool              `json:"featured"`
}

func main() {
	var (
		redisURL     string
		productsFile string
	)

	flag.StringVar(&redisURL, "redis-url", "", "Redis connection URL (or REDIS_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if redisURL == "" {
		redisURL = os.Getenv("REDIS_URL")
	}
	if redisURL == "" {
		slog.Error("redis URL is required: set --redis-url or REDIS_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, redisURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, redisURL, productsFile string) error {
	slog.Info("connecting to redis")

	store, err := redisstore.New(redisURL)
	if err != nil {
		return errors.Wrap(err, "connect to redis")
	}
	defer func() { _ = store.Close() }()

	if err := store.Ping(ctx); err != nil {
		return errors.Wrap(err, "ping redis")
	}

	return seedProducts(ctx, store, productsFile)
}

// seedProducts upserts by slug so re-running the seeder refreshes content
// instead of duplicating it.
func seedProducts(ctx context.Context, store *redisstore.Store, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var entries []productJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(entries)))

	products := store.Products()
	now := time.Now().UTC()
	for _, e := range entries {
		slug := product.Slugify(e.Name)

		p := &product.Product{
			ID:        uuid.New().String(),
			CreatedAt: now,
		}
		if existing, err := products.GetBySlug(ctx, slug); err == nil {
			p = existing
		} else if !errors.Is(err, product.ErrNotFound) {
			return errors.Wrapf(err, "look up product %s", slug)
		}

		p.Name = e.Name
		p.Slug = slug
		p.Description = e.Description
		p.LongDescription = e.LongDescription
		p.Price = e.Price
		p.PriceSubtext = e.PriceSubtext
		p.Images = e.Images
		p.Category = e.Category
		p.Specifications = e.Specifications
		p.Featured = e.Featured
		p.UpdatedAt = now

		if err := products.Put(ctx, p); err != nil {
			return errors.Wrapf(err, "upsert product %s", slug)
		}

		slog.Info("upserted product", slog.String("slug", slug), slog.String("name", e.Name))
	}

	return nil
}
