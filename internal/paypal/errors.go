package paypal

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Validation errors. These are raised before any network call is made.
var (
	ErrEmptyItems         = errors.New("order items required")
	ErrMissingOrderID     = errors.New("order id required")
	ErrMissingCredentials = errors.New(
		"PayPal credentials not configured: set SOLAR_PAYPAL_CLIENT_ID and SOLAR_PAYPAL_CLIENT_SECRET")
)

// ErrorKind classifies provider failures by how the caller should react.
type ErrorKind string

const (
	// KindConfig means a deployment problem (bad credentials, wrong
	// live/sandbox mode). Retrying without operator action will not help.
	KindConfig ErrorKind = "config"
	// KindTransient means a network failure, timeout, or provider 5xx.
	// A retry is likely to succeed.
	KindTransient ErrorKind = "transient"
	// KindRejected means the provider processed the request and said no
	// (e.g. order already captured). Not retryable as-is.
	KindRejected ErrorKind = "rejected"
)

// ProviderError is any non-success response or transport failure from the
// payment provider. Detail carries the provider's raw error body; Hint, when
// set, is an actionable remediation note for configuration-class failures.
type ProviderError struct {
	Op     string // "auth", "create order", "capture order"
	Status int    // HTTP status, 0 for transport failures
	Kind   ErrorKind
	Detail string
	Hint   string
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("PayPal %s failed: %s", e.Op, e.Detail)
	if e.Hint != "" {
		msg += " " + e.Hint
	}
	return msg
}

// classifyStatus maps an HTTP status from the provider to an ErrorKind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403 || status == 404:
		return KindConfig
	case status >= 500 || status == 0:
		return KindTransient
	default:
		return KindRejected
	}
}
