package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/solarbrone/solar-store/internal/auth"
	"github.com/solarbrone/solar-store/internal/domain/blog"
	"github.com/solarbrone/solar-store/internal/domain/product"
	"github.com/solarbrone/solar-store/internal/domain/question"
	"github.com/solarbrone/solar-store/internal/domain/shipping"
	"github.com/solarbrone/solar-store/internal/paypal"
)

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondDomainError maps domain errors to the status taxonomy: validation
// 400, not found 404, unauthorized 401, provider and storage failures 500
// with a user-safe message. Unexpected errors are logged with full detail;
// the response body never carries internals.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shipping.ErrNegativeSubtotal),
		errors.Is(err, paypal.ErrEmptyItems),
		errors.Is(err, paypal.ErrMissingOrderID):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, product.ErrNotFound),
		errors.Is(err, blog.ErrNotFound),
		errors.Is(err, question.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, auth.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, "unauthorized")

	case errors.Is(err, paypal.ErrMissingCredentials):
		zctx.From(r.Context()).Error("payment provider not configured", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "payment provider not configured")

	default:
		var pErr *paypal.ProviderError
		if errors.As(err, &pErr) {
			zctx.From(r.Context()).Error("payment provider call failed",
				zap.String("op", pErr.Op),
				zap.Int("status", pErr.Status),
				zap.String("detail", pErr.Detail),
			)
			respondJSON(w, http.StatusInternalServerError, errorResponse{
				Error: "payment provider error during " + pErr.Op,
				Hint:  pErr.Hint,
			})
			return
		}
		span := trace.SpanFromContext(r.Context())
		span.RecordError(err)
		span.SetStatus(codes.Error, "internal error")

		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
