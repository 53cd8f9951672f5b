// Package paypal bridges a local cart and shipping selection to a
// provider-hosted payment order: create with an exact amount breakdown,
// then capture after buyer approval. The provider is a black box reachable
// through exactly those two calls plus OAuth.
package paypal

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/solarbrone/solar-store/internal/domain/money"
)

const (
	sandboxAPI = "https://api-m.sandbox.paypal.com"
	liveAPI    = "https://api-m.paypal.com"
)

// Config holds the provider connection settings.
type Config struct {
	Mode         string        `default:"sandbox" usage:"PayPal environment (sandbox or live)"`
	ClientID     string        `usage:"PayPal REST client id" flag:"client-id"`
	ClientSecret string        `usage:"PayPal REST client secret" flag:"client-secret"`
	Currency     string        `default:"CAD" usage:"Store operating currency code"`
	Timeout      time.Duration `default:"15s" usage:"Per-call timeout for provider requests"`
	// BaseURL overrides the provider endpoint. Tests point this at a fake
	// provider; production leaves it empty and Mode picks the endpoint.
	BaseURL string `usage:"Override provider API base URL (testing)" flag:"base-url"`
}

// LineItem is one order line communicated to the provider.
type LineItem struct {
	Name      string
	UnitPrice money.Cents
	Quantity  int
}

// OrderRequest is the input to CreateOrder. Shipping and tax below zero are
// treated as absent. The provider-side invariant: Subtotal must equal the
// sum of UnitPrice x Quantity over Items, or the provider rejects the order.
type OrderRequest struct {
	Items    []LineItem
	Subtotal money.Cents
	Shipping money.Cents
	Tax      money.Cents
}

// Total is the exact amount the buyer will be charged, in minor units.
func (r OrderRequest) Total() money.Cents {
	return money.Sum(r.Subtotal, r.Shipping.Clamp(), r.Tax.Clamp())
}

// Confirmation is the result of a successful capture.
type Confirmation struct {
	OrderID string
	PayerID string
}

// Client talks to the PayPal Orders v2 API. Tokens are fetched per call and
// not cached: create and capture are one-shot operations per checkout, so a
// token cache would add shared state for no measurable gain.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
}

// NewClient creates a provider client from config.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = sandboxAPI
		if cfg.Mode == "live" {
			base = liveAPI
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		cfg:     cfg,
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
	}
}

// CreateOrder creates a provider-hosted payment order and returns its opaque
// id. Validation failures return before any network call.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (string, error) {
	if len(req.Items) == 0 {
		return "", ErrEmptyItems
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	payload := c.encodeOrder(req)
	body, status, err := c.post(ctx, token, "/v2/checkout/orders", payload)
	if err != nil {
		return "", &ProviderError{Op: "create order", Kind: KindTransient, Detail: err.Error()}
	}
	if status < 200 || status >= 300 {
		return "", &ProviderError{
			Op:     "create order",
			Status: status,
			Kind:   classifyStatus(status),
			Detail: string(body),
			Hint:   createHint(status),
		}
	}

	id, err := decodeOrderID(body)
	if err != nil {
		return "", &ProviderError{Op: "create order", Status: status, Kind: KindRejected, Detail: err.Error()}
	}
	return id, nil
}

// CaptureOrder finalizes a previously created, not-yet-captured order.
// Capturing an already-captured order is a provider-side rejection surfaced
// as a ProviderError, never retried blindly here.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*Confirmation, error) {
	if orderID == "" {
		return nil, ErrMissingOrderID
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body, status, err := c.post(ctx, token, "/v2/checkout/orders/"+orderID+"/capture", []byte("{}"))
	if err != nil {
		return nil, &ProviderError{Op: "capture order", Kind: KindTransient, Detail: err.Error()}
	}
	if status < 200 || status >= 300 {
		return nil, &ProviderError{
			Op:     "capture order",
			Status: status,
			Kind:   classifyStatus(status),
			Detail: string(body),
			Hint:   captureHint(status),
		}
	}

	conf, err := decodeCapture(body)
	if err != nil {
		return nil, &ProviderError{Op: "capture order", Status: status, Kind: KindRejected, Detail: err.Error()}
	}
	return conf, nil
}

// accessToken obtains a short-lived bearer token from the client credential
// pair. Credentials stay server-side only.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return "", ErrMissingCredentials
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", errors.Wrap(err, "build auth request")
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.ClientID + ":" + c.cfg.ClientSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &ProviderError{Op: "auth", Kind: KindTransient, Detail: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Op: "auth", Status: resp.StatusCode, Kind: KindTransient, Detail: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{
			Op:     "auth",
			Status: resp.StatusCode,
			Kind:   classifyStatus(resp.StatusCode),
			Detail: string(body),
			Hint:   "Check the configured client id/secret.",
		}
	}

	var token string
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "access_token" {
			var err error
			token, err = d.Str()
			return err
		}
		return d.Skip()
	}); err != nil {
		return "", &ProviderError{Op: "auth", Status: resp.StatusCode, Kind: KindRejected, Detail: err.Error()}
	}
	if token == "" {
		return "", &ProviderError{Op: "auth", Status: resp.StatusCode, Kind: KindRejected, Detail: "no access token in response"}
	}
	return token, nil
}

// post sends a JSON body with bearer auth and returns the raw response.
func (c *Client) post(ctx context.Context, token, path string, payload []byte) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// encodeOrder builds the Orders v2 create payload. All amounts are exact
// 2-fraction-digit decimal strings; zero-valued shipping and tax breakdown
// entries are omitted entirely since the provider rejects them.
func (c *Client) encodeOrder(req OrderRequest) []byte {
	currency := c.cfg.Currency
	shipping := req.Shipping.Clamp()
	tax := req.Tax.Clamp()

	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("intent", func(e *jx.Encoder) { e.Str("CAPTURE") })
		e.Field("purchase_units", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("amount", func(e *jx.Encoder) {
						e.Obj(func(e *jx.Encoder) {
							e.Field("currency_code", func(e *jx.Encoder) { e.Str(currency) })
							e.Field("value", func(e *jx.Encoder) { e.Str(req.Total().String()) })
							e.Field("breakdown", func(e *jx.Encoder) {
								e.Obj(func(e *jx.Encoder) {
									e.Field("item_total", amountField(currency, req.Subtotal))
									if shipping > 0 {
										e.Field("shipping", amountField(currency, shipping))
									}
									if tax > 0 {
										e.Field("tax_total", amountField(currency, tax))
									}
								})
							})
						})
					})
					e.Field("items", func(e *jx.Encoder) {
						e.Arr(func(e *jx.Encoder) {
							for _, item := range req.Items {
								e.Obj(func(e *jx.Encoder) {
									e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
									e.Field("quantity", func(e *jx.Encoder) { e.Str(strconv.Itoa(item.Quantity)) })
									e.Field("unit_amount", amountField(currency, item.UnitPrice))
								})
							}
						})
					})
				})
			})
		})
	})
	return e.Bytes()
}

func amountField(currency string, amount money.Cents) func(e *jx.Encoder) {
	return func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("currency_code", func(e *jx.Encoder) { e.Str(currency) })
			e.Field("value", func(e *jx.Encoder) { e.Str(amount.String()) })
		})
	}
}

func decodeOrderID(body []byte) (string, error) {
	var id string
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "id" {
			var err error
			id, err = d.Str()
			return err
		}
		return d.Skip()
	}); err != nil {
		return "", errors.Wrap(err, "decode order response")
	}
	if id == "" {
		return "", errors.New("no order id in response")
	}
	return id, nil
}

func decodeCapture(body []byte) (*Confirmation, error) {
	var conf Confirmation
	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			var err error
			conf.OrderID, err = d.Str()
			return err
		case "payer":
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key == "payer_id" {
					var err error
					conf.PayerID, err = d.Str()
					return err
				}
				return d.Skip()
			})
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "decode capture response")
	}
	if conf.OrderID == "" {
		return nil, errors.New("no order id in capture response")
	}
	return &conf, nil
}

// createHint distinguishes missing credentials from a live/sandbox mode
// mismatch for configuration-class create failures.
func createHint(status int) string {
	if status == 401 || status == 404 {
		return "Check the PayPal client secret and mode (live vs sandbox)."
	}
	return ""
}

func captureHint(status int) string {
	if status == 404 || status == 422 {
		return "Ensure the configured PayPal mode matches the credentials (live vs sandbox)."
	}
	return ""
}
