package handler

import (
	"encoding/json"
	"net/http"

	"github.com/solarbrone/solar-store/internal/domain/money"
	"github.com/solarbrone/solar-store/internal/domain/shipping"
)

// Subtotal is a pointer so an absent field is distinguishable from an
// explicit zero; a missing subtotal is rejected, never treated as 0.
type quotesRequest struct {
	Subtotal   *money.Cents `json:"subtotal"`
	PostalCode string       `json:"postalCode"`
	Province   string       `json:"province"`
}

type quotesResponse struct {
	Quotes []shipping.Quote `json:"quotes"`
}

func (h *Handler) shippingQuotes(w http.ResponseWriter, r *http.Request) {
	var req quotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Subtotal == nil {
		respondError(w, http.StatusBadRequest, "subtotal is required")
		return
	}

	quotes, err := h.shipping.Quotes(r.Context(), shipping.Request{
		Subtotal:   *req.Subtotal,
		PostalCode: req.PostalCode,
		Province:   req.Province,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, quotesResponse{Quotes: quotes})
}
