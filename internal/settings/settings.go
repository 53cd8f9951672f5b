// Package settings holds the small set of store-wide runtime toggles the
// back-office can flip without a redeploy.
package settings

import (
	"context"

	"github.com/go-faster/errors"
	"golang.org/x/sync/singleflight"
)

// Settings are the persisted store-wide toggles.
type Settings struct {
	// ShippingDisabled puts the shipping quote service into test mode:
	// quotes come back at price zero with a label saying so.
	ShippingDisabled bool `json:"shippingDisabled"`
}

// Store persists the settings document. Get on an empty store returns the
// zero-value defaults, not an error.
type Store interface {
	Get(ctx context.Context) (Settings, error)
	Set(ctx context.Context, s Settings) error
}

// Service wraps a Store with singleflight read deduplication. Settings are
// consulted on every shipping quote request, so concurrent checkouts
// collapse into one storage read.
type Service struct {
	store Store
	sf    singleflight.Group
}

// NewService creates a Service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns the current settings, deduplicating concurrent reads.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	v, err, _ := s.sf.Do("settings", func() (any, error) {
		return s.store.Get(ctx)
	})
	if err != nil {
		return Settings{}, errors.Wrap(err, "read settings")
	}
	return v.(Settings), nil
}

// Update applies partial changes and persists the merged document.
func (s *Service) Update(ctx context.Context, apply func(*Settings)) (Settings, error) {
	current, err := s.store.Get(ctx)
	if err != nil {
		return Settings{}, errors.Wrap(err, "read settings")
	}
	apply(&current)
	if err := s.store.Set(ctx, current); err != nil {
		return Settings{}, errors.Wrap(err, "write settings")
	}
	return current, nil
}

// ShippingDisabled reports the shipping test-mode flag. It satisfies the
// shipping quote service's DisabledFlag dependency.
func (s *Service) ShippingDisabled(ctx context.Context) (bool, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return cfg.ShippingDisabled, nil
}
