package handler

import (
	"encoding/json"
	"net/http"

	"github.com/solarbrone/solar-store/internal/domain/money"
	"github.com/solarbrone/solar-store/internal/paypal"
)

type paymentItemDTO struct {
	Name      string      `json:"name"`
	UnitPrice money.Cents `json:"unitPrice"`
	Quantity  int         `json:"quantity"`
}

// Subtotal is a pointer so an absent field is distinguishable from an
// explicit zero; an order without a subtotal never reaches the provider.
type createOrderRequest struct {
	Items    []paymentItemDTO `json:"items"`
	Subtotal *money.Cents     `json:"subtotal"`
	Shipping money.Cents      `json:"shipping"`
	Tax      money.Cents      `json:"tax"`
}

type createOrderResponse struct {
	OrderID string `json:"orderID"`
}

func (h *Handler) createPaymentOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Subtotal == nil {
		respondError(w, http.StatusBadRequest, "subtotal is required")
		return
	}

	items := make([]paypal.LineItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = paypal.LineItem{
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		}
	}

	orderID, err := h.payments.CreateOrder(r.Context(), paypal.OrderRequest{
		Items:    items,
		Subtotal: *req.Subtotal,
		Shipping: req.Shipping,
		Tax:      req.Tax,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	h.metrics.ordersCreated.Add(r.Context(), 1)
	respondJSON(w, http.StatusOK, createOrderResponse{OrderID: orderID})
}

type captureOrderRequest struct {
	OrderID string `json:"orderID"`
}

type captureOrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderID"`
	PayerID string `json:"payerID,omitempty"`
}

func (h *Handler) capturePaymentOrder(w http.ResponseWriter, r *http.Request) {
	var req captureOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	conf, err := h.payments.CaptureOrder(r.Context(), req.OrderID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	h.metrics.ordersCaptured.Add(r.Context(), 1)
	respondJSON(w, http.StatusOK, captureOrderResponse{
		Success: true,
		OrderID: conf.OrderID,
		PayerID: conf.PayerID,
	})
}
