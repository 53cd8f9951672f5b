// Package handler exposes the storefront and back-office API over HTTP.
// Handlers decode the request, delegate to a domain service or store, and map
// errors to the shared status taxonomy in respond.go.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/solarbrone/solar-store/internal/auth"
	"github.com/solarbrone/solar-store/internal/domain/blog"
	"github.com/solarbrone/solar-store/internal/domain/product"
	"github.com/solarbrone/solar-store/internal/domain/question"
	"github.com/solarbrone/solar-store/internal/domain/shipping"
	"github.com/solarbrone/solar-store/internal/paypal"
	"github.com/solarbrone/solar-store/internal/settings"
	"github.com/solarbrone/solar-store/internal/storage/blobdir"
)

// PaymentProvider is the payment order surface the handlers need. Satisfied
// by *paypal.Client; tests substitute a fake.
type PaymentProvider interface {
	CreateOrder(ctx context.Context, req paypal.OrderRequest) (string, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.Confirmation, error)
}

// Handler carries the dependencies shared by all routes.
type Handler struct {
	products  product.Store
	articles  blog.Store
	questions question.Store
	settings  *settings.Service
	shipping  *shipping.Service
	payments  PaymentProvider
	sessions  *auth.Service
	uploads   *blobdir.Store
	metrics   handlerMetrics
}

// New constructs a Handler. uploads may be nil, disabling POST /api/upload.
func New(
	products product.Store,
	articles blog.Store,
	questions question.Store,
	settingsSvc *settings.Service,
	shippingSvc *shipping.Service,
	payments PaymentProvider,
	sessions *auth.Service,
	uploads *blobdir.Store,
) *Handler {
	return &Handler{
		products:  products,
		articles:  articles,
		questions: questions,
		settings:  settingsSvc,
		shipping:  shippingSvc,
		payments:  payments,
		sessions:  sessions,
		uploads:   uploads,
		metrics:   newHandlerMetrics(),
	}
}

// Routes builds the API router. Health endpoints and cross-cutting middleware
// are mounted by the caller.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/shipping/quotes", h.shippingQuotes)
		r.Post("/payment/create-order", h.createPaymentOrder)
		r.Post("/payment/capture-order", h.capturePaymentOrder)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			// {id} accepts either the product id or its slug.
			r.Get("/{id}", h.getProduct)
			r.Get("/{id}/questions", h.listProductQuestions)
			r.Post("/{id}/questions", h.askQuestion)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Post("/", h.createProduct)
				r.Put("/{id}", h.updateProduct)
				r.Delete("/{id}", h.deleteProduct)
			})
		})

		r.Route("/blog", func(r chi.Router) {
			r.Get("/", h.listArticles)
			r.Get("/{id}", h.getArticle)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Post("/", h.createArticle)
				r.Put("/{id}", h.updateArticle)
				r.Delete("/{id}", h.deleteArticle)
			})
		})

		r.Route("/questions", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Get("/", h.listQuestions)
			r.Post("/", h.createQuestion)
			r.Put("/{id}", h.updateQuestion)
			r.Delete("/{id}", h.deleteQuestion)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.login)
			r.Post("/logout", h.logout)
			r.Get("/session", h.session)
		})

		r.Route("/admin/settings", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Get("/", h.getSettings)
			r.Put("/", h.updateSettings)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Post("/upload", h.upload)
		})
	})

	return r
}

// requireAdmin gates back-office routes on a live admin session cookie.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.CookieName)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := h.sessions.Validate(r.Context(), cookie.Value); err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isAdmin reports whether the request carries a live admin session. Public
// read routes use it for visibility filtering; write routes go through
// requireAdmin instead.
func (h *Handler) isAdmin(r *http.Request) bool {
	cookie, err := r.Cookie(auth.CookieName)
	if err != nil {
		return false
	}
	return h.sessions.Validate(r.Context(), cookie.Value) == nil
}
