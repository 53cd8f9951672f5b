// Package shipping prices shipping options for a cart. The pricing policy
// is configuration, not code: the same service serves the flat full-service
// rate the store runs in production and a threshold-based tiered policy,
// selected by Config.Policy.
package shipping

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/solarbrone/solar-store/internal/domain/money"
)

// ErrNegativeSubtotal is the validation error for a negative subtotal.
// Missing or negative subtotals are rejected, never coerced to zero.
var ErrNegativeSubtotal = errors.New("subtotal must not be negative")

// Policy selects the pricing rule applied to a quote request.
type Policy string

const (
	// PolicyFlat returns one full-service quote at Config.FlatRate.
	PolicyFlat Policy = "flat"
	// PolicyTiered returns free shipping above Config.FreeThreshold and
	// standard/express tiers below it.
	PolicyTiered Policy = "tiered"
)

// Quote is a priced, named shipping option. Quotes are produced fresh per
// checkout attempt and never persisted.
type Quote struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Price         money.Cents `json:"price"`
	EstimatedDays string      `json:"estimatedDays,omitempty"`
}

// Request carries the inputs to a quote computation. Postal code and
// province are accepted for forward compatibility; the current policies do
// not price by destination.
type Request struct {
	Subtotal   money.Cents
	PostalCode string
	Province   string
}

// Config parameterizes the pricing policies. Rates are minor units.
type Config struct {
	Policy        Policy      `default:"flat" usage:"Shipping pricing policy (flat or tiered)"`
	FlatRate      money.Cents `default:"50000" usage:"Flat full-service rate in cents" flag:"flat-rate"`
	FreeThreshold money.Cents `default:"100000" usage:"Tiered: free shipping at or above this subtotal (cents)" flag:"free-threshold"`
	StandardRate  money.Cents `default:"1500" usage:"Tiered: standard rate in cents" flag:"standard-rate"`
	ExpressRate   money.Cents `default:"3500" usage:"Tiered: express rate in cents" flag:"express-rate"`
}

// DisabledFlag reports whether shipping is globally disabled (test mode).
// Injected rather than looked up ambiently so fixtures can drive it.
type DisabledFlag interface {
	ShippingDisabled(ctx context.Context) (bool, error)
}

// Service computes shipping quotes from subtotal, address, and config.
type Service struct {
	cfg      Config
	disabled DisabledFlag
}

// NewService creates a quote service. disabled may be nil, meaning the
// test-mode flag is never set.
func NewService(cfg Config, disabled DisabledFlag) *Service {
	return &Service{cfg: cfg, disabled: disabled}
}

// Quotes returns the priced options for the request, ordered with the
// recommended default first. The result is never empty: an uncomputable
// request is a validation error, not a silent empty slice.
func (s *Service) Quotes(ctx context.Context, req Request) ([]Quote, error) {
	if req.Subtotal.IsNegative() {
		return nil, ErrNegativeSubtotal
	}

	if s.disabled != nil {
		off, err := s.disabled.ShippingDisabled(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "read shipping-disabled flag")
		}
		if off {
			return []Quote{{
				ID:            "test-mode",
				Name:          "Shipping disabled (test mode)",
				Price:         0,
				EstimatedDays: "N/A",
			}}, nil
		}
	}

	switch s.cfg.Policy {
	case PolicyTiered:
		return s.tiered(req), nil
	default:
		return s.flat(), nil
	}
}

func (s *Service) flat() []Quote {
	return []Quote{{
		ID:            "design-package",
		Name:          "Shipped to your door with full design package within 3 weeks",
		Price:         s.cfg.FlatRate.Clamp(),
		EstimatedDays: "Within 3 weeks",
	}}
}

func (s *Service) tiered(req Request) []Quote {
	if req.Subtotal >= s.cfg.FreeThreshold {
		return []Quote{{
			ID:            "free",
			Name:          "Free shipping",
			Price:         0,
			EstimatedDays: "5-7 business days",
		}}
	}
	return []Quote{
		{
			ID:            "standard",
			Name:          "Standard shipping",
			Price:         s.cfg.StandardRate.Clamp(),
			EstimatedDays: "5-7 business days",
		},
		{
			ID:            "express",
			Name:          "Express shipping",
			Price:         s.cfg.ExpressRate.Clamp(),
			EstimatedDays: "1-2 business days",
		},
	}
}
