package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/solarbrone/solar-store/internal/domain/blog"
	"github.com/solarbrone/solar-store/internal/domain/product"
)

type articleRequest struct {
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt"`
	Body       string `json:"body"`
	CoverImage string `json:"coverImage"`
	Published  bool   `json:"published"`
}

// listArticles returns published articles to the public and everything to an
// authenticated admin.
func (h *Handler) listArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	if !h.isAdmin(r) {
		published := make([]blog.Article, 0, len(articles))
		for _, a := range articles {
			if a.Published {
				published = append(published, a)
			}
		}
		articles = published
	}
	if articles == nil {
		articles = []blog.Article{}
	}
	respondJSON(w, http.StatusOK, articles)
}

func (h *Handler) getArticle(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "id")

	a, err := h.articles.GetByID(r.Context(), key)
	if errors.Is(err, blog.ErrNotFound) {
		a, err = h.articles.GetBySlug(r.Context(), key)
	}
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if !a.Published && !h.isAdmin(r) {
		respondError(w, http.StatusNotFound, blog.ErrNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *Handler) createArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	now := time.Now().UTC()
	a := &blog.Article{
		ID:         uuid.New().String(),
		Slug:       product.Slugify(req.Title),
		Title:      req.Title,
		Excerpt:    req.Excerpt,
		Body:       req.Body,
		CoverImage: req.CoverImage,
		Published:  req.Published,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.articles.Put(r.Context(), a); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

func (h *Handler) updateArticle(w http.ResponseWriter, r *http.Request) {
	existing, err := h.articles.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	if req.Title != existing.Title {
		existing.Slug = product.Slugify(req.Title)
	}
	existing.Title = req.Title
	existing.Excerpt = req.Excerpt
	existing.Body = req.Body
	existing.CoverImage = req.CoverImage
	existing.Published = req.Published
	existing.UpdatedAt = time.Now().UTC()

	if err := h.articles.Put(r.Context(), existing); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, existing)
}

func (h *Handler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.articles.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
