package handler

import (
	"encoding/json"
	"net/http"

	"github.com/solarbrone/solar-store/internal/settings"
)

type settingsRequest struct {
	ShippingDisabled *bool `json:"shippingDisabled"`
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	current, err := h.settings.Get(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, current)
}

// updateSettings applies only the fields present in the request body, so an
// admin toggling one flag cannot clobber another.
func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := h.settings.Update(r.Context(), func(s *settings.Settings) {
		if req.ShippingDisabled != nil {
			s.ShippingDisabled = *req.ShippingDisabled
		}
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}
