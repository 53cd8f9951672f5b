package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/solarbrone/solar-store/internal/domain/money"
	"github.com/solarbrone/solar-store/internal/domain/product"
)

type productRequest struct {
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

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if products == nil {
		products = []product.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

// getProduct looks up by id first, then by slug, so storefront pages can use
// the human-readable URL segment directly.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "id")

	p, err := h.products.GetByID(r.Context(), key)
	if errors.Is(err, product.ErrNotFound) {
		p, err = h.products.GetBySlug(r.Context(), key)
	}
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	slug, err := h.uniqueSlug(r, req.Name, "")
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	now := time.Now().UTC()
	p := &product.Product{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Slug:            slug,
		Description:     req.Description,
		LongDescription: req.LongDescription,
		Price:           req.Price,
		PriceSubtext:    req.PriceSubtext,
		Images:          req.Images,
		Category:        req.Category,
		Specifications:  req.Specifications,
		Featured:        req.Featured,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.products.Put(r.Context(), p); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Price.IsNegative() {
		respondError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	slug := existing.Slug
	if req.Name != existing.Name {
		slug, err = h.uniqueSlug(r, req.Name, existing.ID)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
	}

	existing.Name = req.Name
	existing.Slug = slug
	existing.Description = req.Description
	existing.LongDescription = req.LongDescription
	existing.Price = req.Price
	existing.PriceSubtext = req.PriceSubtext
	existing.Images = req.Images
	existing.Category = req.Category
	existing.Specifications = req.Specifications
	existing.Featured = req.Featured
	existing.UpdatedAt = time.Now().UTC()

	if err := h.products.Put(r.Context(), existing); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, existing)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uniqueSlug derives a slug from name and suffixes -2, -3, ... while another
// product (excluding excludeID) already holds it.
func (h *Handler) uniqueSlug(r *http.Request, name, excludeID string) (string, error) {
	base := product.Slugify(name)
	if base == "" {
		base = "product"
	}

	slug := base
	for n := 2; ; n++ {
		existing, err := h.products.GetBySlug(r.Context(), slug)
		if errors.Is(err, product.ErrNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", err
		}
		if existing.ID == excludeID {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}
