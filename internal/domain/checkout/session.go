// Package checkout drives the multi-step checkout: address, shipping,
// payment, completed. A Session lives only as long as the checkout itself;
// navigating away discards it.
package checkout

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/solarbrone/solar-store/internal/domain/cart"
	"github.com/solarbrone/solar-store/internal/domain/money"
	"github.com/solarbrone/solar-store/internal/domain/shipping"
	"github.com/solarbrone/solar-store/internal/paypal"
)

// Step is the checkout state. Cancellation is not a tracked step: an
// abandoned session is simply discarded.
type Step string

const (
	StepAddress   Step = "address"
	StepShipping  Step = "shipping"
	StepPayment   Step = "payment"
	StepCompleted Step = "completed"
)

// Validation and transition errors.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingContact     = errors.New("contact email and address are required")
	ErrNoShippingSelected = errors.New("no shipping option selected")
	ErrNoQuotesAvailable  = errors.New("no shipping options available")
	ErrCompleted          = errors.New("checkout already completed")
	ErrNotInPayment       = errors.New("checkout is not at the payment step")
	ErrNoProviderOrder    = errors.New("no provider order created")
)

// Address holds the contact and shipping fields collected at step one.
// Validation is presence-only: email and the street address must be
// non-empty before advancing.
type Address struct {
	Email      string
	FirstName  string
	LastName   string
	Street     string
	City       string
	Province   string
	PostalCode string
}

func (a Address) complete() bool {
	return a.Email != "" && a.Street != ""
}

// QuoteFetcher supplies shipping quotes for the session's current subtotal
// and address.
type QuoteFetcher interface {
	Quotes(ctx context.Context, req shipping.Request) ([]shipping.Quote, error)
}

// PaymentBridge creates and captures provider-hosted payment orders. In
// production this is the PayPal client; tests substitute a fake.
type PaymentBridge interface {
	CreateOrder(ctx context.Context, req paypal.OrderRequest) (string, error)
	CaptureOrder(ctx context.Context, orderID string) (*paypal.Confirmation, error)
}

// Session is the checkout state machine. It snapshots the cart at creation
// and owns the step transitions; the cart itself is cleared only on
// completion. Not safe for concurrent use: one session serves one buyer.
type Session struct {
	cart    *cart.Cart
	quotes  QuoteFetcher
	bridge  PaymentBridge
	taxRate int // basis points applied to the subtotal, e.g. 500 = 5% GST

	step     Step
	address  Address
	items    []cart.Item
	options  []shipping.Quote
	selected *shipping.Quote
	orderID  string

	// fetch inputs from the last quote request; quotes are re-fetched on
	// re-entering the shipping step only when these changed.
	quotedSubtotal money.Cents
	quotedPostal   string
	quotedProvince string
	fetched        bool
}

// NewSession starts a checkout for a non-empty cart.
func NewSession(c *cart.Cart, quotes QuoteFetcher, bridge PaymentBridge, taxRateBps int) (*Session, error) {
	if c == nil || c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	return &Session{
		cart:    c,
		quotes:  quotes,
		bridge:  bridge,
		taxRate: taxRateBps,
		step:    StepAddress,
		items:   c.Items(),
	}, nil
}

// Step returns the current checkout step.
func (s *Session) Step() Step { return s.step }

// Address returns the fields entered so far. They survive backward
// navigation.
func (s *Session) Address() Address { return s.address }

// SetAddress updates the contact fields. Allowed at any step before
// completion.
func (s *Session) SetAddress(a Address) error {
	if s.step == StepCompleted {
		return ErrCompleted
	}
	s.address = a
	return nil
}

// ShippingOptions returns the quotes fetched on entering the shipping step.
func (s *Session) ShippingOptions() []shipping.Quote { return s.options }

// SelectedShipping returns the chosen quote, or nil before one is chosen.
func (s *Session) SelectedShipping() *shipping.Quote { return s.selected }

// ContinueToShipping advances address -> shipping. It fetches quotes for
// the current subtotal and address and auto-selects the first as the
// default. Zero quotes blocks the advance.
func (s *Session) ContinueToShipping(ctx context.Context) error {
	if s.step == StepCompleted {
		return ErrCompleted
	}
	if !s.address.complete() {
		return ErrMissingContact
	}
	if err := s.refreshQuotes(ctx); err != nil {
		return err
	}
	s.step = StepShipping
	return nil
}

// SelectShipping picks one of the fetched quotes by id.
func (s *Session) SelectShipping(quoteID string) error {
	for i := range s.options {
		if s.options[i].ID == quoteID {
			q := s.options[i]
			s.selected = &q
			return nil
		}
	}
	return errors.Errorf("unknown shipping quote %q", quoteID)
}

// ContinueToPayment advances shipping -> payment. Requires a selection.
func (s *Session) ContinueToPayment() error {
	if s.step == StepCompleted {
		return ErrCompleted
	}
	if s.selected == nil {
		return ErrNoShippingSelected
	}
	s.step = StepPayment
	return nil
}

// Back moves one step backward without losing entered fields or the
// shipping selection. Quotes are re-fetched on the next shipping entry only
// if subtotal or address changed.
func (s *Session) Back(ctx context.Context) error {
	switch s.step {
	case StepPayment:
		if err := s.refreshQuotes(ctx); err != nil {
			return err
		}
		s.step = StepShipping
	case StepShipping:
		s.step = StepAddress
	case StepCompleted:
		return ErrCompleted
	}
	return nil
}

// Subtotal is the snapshot subtotal for this checkout.
func (s *Session) Subtotal() money.Cents {
	var total money.Cents
	for _, it := range s.items {
		total += it.Product.Price.MulQty(it.Quantity)
	}
	return total
}

// Tax is the tax owed on the subtotal at the configured rate.
func (s *Session) Tax() money.Cents {
	// Integer basis-point math; rounding half up at the cent.
	return money.Cents((int64(s.Subtotal())*int64(s.taxRate) + 5000) / 10000)
}

// Total is subtotal + selected shipping + tax. This exact amount is what
// the provider order is created with and what the summary displays.
func (s *Session) Total() money.Cents {
	var ship money.Cents
	if s.selected != nil {
		ship = s.selected.Price
	}
	return money.Sum(s.Subtotal(), ship, s.Tax())
}

// CreateOrder creates the provider-hosted payment order for the session's
// exact amount breakdown and remembers its id for capture. Only valid at
// the payment step.
func (s *Session) CreateOrder(ctx context.Context) (string, error) {
	if s.step != StepPayment {
		return "", ErrNotInPayment
	}
	if s.selected == nil {
		return "", ErrNoShippingSelected
	}

	lines := make([]paypal.LineItem, len(s.items))
	for i, it := range s.items {
		lines[i] = paypal.LineItem{
			Name:      it.Product.Name,
			UnitPrice: it.Product.Price,
			Quantity:  it.Quantity,
		}
	}
	id, err := s.bridge.CreateOrder(ctx, paypal.OrderRequest{
		Items:    lines,
		Subtotal: s.Subtotal(),
		Shipping: s.selected.Price,
		Tax:      s.Tax(),
	})
	if err != nil {
		return "", err
	}
	s.orderID = id
	return id, nil
}

// ConfirmCapture finalizes the previously created provider order. On
// success the session transitions to completed and the cart is cleared. On
// failure the session stays at the payment step with the order id intact so
// the same order can be retried.
func (s *Session) ConfirmCapture(ctx context.Context) (*paypal.Confirmation, error) {
	if s.step != StepPayment {
		return nil, ErrNotInPayment
	}
	if s.orderID == "" {
		return nil, ErrNoProviderOrder
	}

	conf, err := s.bridge.CaptureOrder(ctx, s.orderID)
	if err != nil {
		return nil, err
	}

	s.step = StepCompleted
	s.cart.Clear()
	return conf, nil
}

// OrderID returns the provider order id created for this session, empty
// until CreateOrder succeeds.
func (s *Session) OrderID() string { return s.orderID }

func (s *Session) refreshQuotes(ctx context.Context) error {
	subtotal := s.Subtotal()
	if s.fetched &&
		subtotal == s.quotedSubtotal &&
		s.address.PostalCode == s.quotedPostal &&
		s.address.Province == s.quotedProvince {
		return nil
	}

	quotes, err := s.quotes.Quotes(ctx, shipping.Request{
		Subtotal:   subtotal,
		PostalCode: s.address.PostalCode,
		Province:   s.address.Province,
	})
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		s.options = nil
		s.selected = nil
		return ErrNoQuotesAvailable
	}

	s.options = quotes
	s.fetched = true
	s.quotedSubtotal = subtotal
	s.quotedPostal = s.address.PostalCode
	s.quotedProvince = s.address.Province

	// Keep a still-offered selection across re-fetches; otherwise fall back
	// to the recommended first quote.
	if s.selected != nil {
		if err := s.SelectShipping(s.selected.ID); err == nil {
			return nil
		}
	}
	q := quotes[0]
	s.selected = &q
	return nil
}
