package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/solarbrone/solar-store/internal/domain/question"
)

const maxQuestionLen = 2000

type askQuestionRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

type updateQuestionRequest struct {
	Answer       string     `json:"answer"`
	ScheduledFor *time.Time `json:"scheduledFor"`
}

// listProductQuestions returns the questions visible on a product page:
// scheduled-for-later entries are held back until due. The path parameter is
// the product slug.
func (h *Handler) listProductQuestions(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "id")

	all, err := h.questions.ListByProduct(r.Context(), slug)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	now := time.Now()
	visible := make([]question.Question, 0, len(all))
	for _, q := range all {
		if q.VisibleAt(now) {
			visible = append(visible, q)
		}
	}
	respondJSON(w, http.StatusOK, visible)
}

func (h *Handler) askQuestion(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "id")

	var req askQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		respondError(w, http.StatusBadRequest, "question text is required")
		return
	}
	if len(body) > maxQuestionLen {
		respondError(w, http.StatusBadRequest, "question text is too long")
		return
	}

	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = "Guest"
	}

	q := &question.Question{
		ID:          uuid.New().String(),
		ProductSlug: slug,
		Author:      author,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.questions.Put(r.Context(), q); err != nil {
		respondDomainError(w, r, err)
		return
	}
	h.metrics.questionsAsked.Add(r.Context(), 1)
	respondJSON(w, http.StatusCreated, q)
}

// createQuestion lets an admin add a pre-answered entry to a product's Q&A,
// e.g. seeding common questions.
func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductSlug  string     `json:"productSlug"`
		Author       string     `json:"author"`
		Body         string     `json:"body"`
		Answer       string     `json:"answer"`
		ScheduledFor *time.Time `json:"scheduledFor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body := strings.TrimSpace(req.Body)
	if req.ProductSlug == "" || body == "" {
		respondError(w, http.StatusBadRequest, "product slug and question text are required")
		return
	}

	author := strings.TrimSpace(req.Author)
	if author == "" {
		author = "Guest"
	}

	q := &question.Question{
		ID:           uuid.New().String(),
		ProductSlug:  req.ProductSlug,
		Author:       author,
		Body:         body,
		Answer:       strings.TrimSpace(req.Answer),
		CreatedAt:    time.Now().UTC(),
		ScheduledFor: req.ScheduledFor,
	}
	if err := h.questions.Put(r.Context(), q); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, q)
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	all, err := h.questions.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if all == nil {
		all = []question.Question{}
	}
	respondJSON(w, http.StatusOK, all)
}

// updateQuestion sets or clears the answer and publication schedule.
func (h *Handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	existing, err := h.questions.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	var req updateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	existing.Answer = strings.TrimSpace(req.Answer)
	existing.ScheduledFor = req.ScheduledFor

	if err := h.questions.Put(r.Context(), existing); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, existing)
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.questions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
