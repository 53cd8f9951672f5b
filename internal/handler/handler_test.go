package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarbrone/solar-store/internal/auth"
	"github.com/solarbrone/solar-store/internal/domain/product"
	"github.com/solarbrone/solar-store/internal/domain/question"
	"github.com/solarbrone/solar-store/internal/domain/shipping"
	"github.com/solarbrone/solar-store/internal/paypal"
	"github.com/solarbrone/solar-store/internal/settings"
	"github.com/solarbrone/solar-store/internal/storage/blobdir"
	"github.com/solarbrone/solar-store/internal/storage/memstore"
)

// fakeProvider is an in-process PaymentProvider double. Errors are injected
// per call; successful calls return fixed ids.
type fakeProvider struct {
	createErr   error
	captureErr  error
	createCalls int
	lastCreate  paypal.OrderRequest
}

func (f *fakeProvider) CreateOrder(_ context.Context, req paypal.OrderRequest) (string, error) {
	f.createCalls++
	if len(req.Items) == 0 {
		return "", paypal.ErrEmptyItems
	}
	if f.createErr != nil {
		return "", f.createErr
	}
	f.lastCreate = req
	return "ORDER-1", nil
}

func (f *fakeProvider) CaptureOrder(_ context.Context, orderID string) (*paypal.Confirmation, error) {
	if orderID == "" {
		return nil, paypal.ErrMissingOrderID
	}
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return &paypal.Confirmation{OrderID: orderID, PayerID: "PAYER-1"}, nil
}

type fixture struct {
	store    *memstore.Store
	provider *fakeProvider
	handler  *Handler
	srv      *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	provider := &fakeProvider{}
	settingsSvc := settings.NewService(store.Settings())
	shippingSvc := shipping.NewService(shipping.Config{
		Policy:   shipping.PolicyFlat,
		FlatRate: 50000,
	}, settingsSvc)
	sessions := auth.NewService(auth.Config{
		AdminUser:     "admin",
		AdminPassword: "secret",
		TokenPepper:   "pepper",
		SessionTTL:    time.Hour,
	}, store.Sessions())

	uploads, err := blobdir.New(t.TempDir(), "/uploads")
	require.NoError(t, err)

	h := New(store.Products(), store.Articles(), store.Questions(),
		settingsSvc, shippingSvc, provider, sessions, uploads)

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	return &fixture{store: store, provider: provider, handler: h, srv: srv}
}

func (f *fixture) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.srv.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (f *fixture) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()

	resp := f.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin", "password": "secret"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestShippingQuotes(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/shipping/quotes",
		map[string]any{"subtotal": 34900, "postalCode": "V6B 1A1", "province": "BC"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[quotesResponse](t, resp)
	require.Len(t, body.Quotes, 1)
	assert.Equal(t, "design-package", body.Quotes[0].ID)
	assert.EqualValues(t, 50000, body.Quotes[0].Price)
}

func TestShippingQuotes_NegativeSubtotal(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/shipping/quotes",
		map[string]any{"subtotal": -1}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestShippingQuotes_MissingSubtotal(t *testing.T) {
	f := newFixture(t)

	// An absent subtotal is rejected, not treated as a zero subtotal.
	resp := f.do(t, http.MethodPost, "/api/shipping/quotes",
		map[string]any{"postalCode": "V6B 1A1"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "subtotal is required", decodeBody[errorResponse](t, resp).Error)
}

func TestShippingQuotes_Disabled(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	resp := f.do(t, http.MethodPut, "/api/admin/settings",
		map[string]bool{"shippingDisabled": true}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/shipping/quotes",
		map[string]any{"subtotal": 34900}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[quotesResponse](t, resp)
	require.Len(t, body.Quotes, 1)
	assert.Equal(t, "test-mode", body.Quotes[0].ID)
	assert.EqualValues(t, 0, body.Quotes[0].Price)
}

func TestCreatePaymentOrder(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/payment/create-order", map[string]any{
		"items":    []map[string]any{{"name": "Solar Kit", "unitPrice": 34900, "quantity": 1}},
		"subtotal": 34900,
		"shipping": 4900,
		"tax":      1747,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[createOrderResponse](t, resp)
	assert.Equal(t, "ORDER-1", body.OrderID)
	assert.EqualValues(t, 41547, f.provider.lastCreate.Total())
}

func TestCreatePaymentOrder_EmptyItems(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/payment/create-order", map[string]any{
		"items":    []map[string]any{},
		"subtotal": 0,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreatePaymentOrder_MissingSubtotal(t *testing.T) {
	f := newFixture(t)

	// Priced items with no subtotal: rejected locally, the provider is
	// never called.
	resp := f.do(t, http.MethodPost, "/api/payment/create-order", map[string]any{
		"items": []map[string]any{
			{"name": "Solar Starter Kit", "unitPrice": 34900, "quantity": 1},
		},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "subtotal is required", decodeBody[errorResponse](t, resp).Error)
	assert.Zero(t, f.provider.createCalls)
}

func TestCreatePaymentOrder_ProviderError(t *testing.T) {
	f := newFixture(t)
	f.provider.createErr = &paypal.ProviderError{
		Op:     "create order",
		Status: 401,
		Kind:   paypal.KindConfig,
		Detail: "invalid_client",
		Hint:   "Check the PayPal client secret and mode (live vs sandbox).",
	}

	resp := f.do(t, http.MethodPost, "/api/payment/create-order", map[string]any{
		"items":    []map[string]any{{"name": "Solar Kit", "unitPrice": 34900, "quantity": 1}},
		"subtotal": 34900,
	}, nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody[map[string]string](t, resp)
	assert.NotContains(t, body["error"], "invalid_client")
	assert.Contains(t, body["hint"], "live vs sandbox")
}

func TestCapturePaymentOrder(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/payment/capture-order",
		map[string]string{"orderID": "ORDER-1"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[captureOrderResponse](t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, "ORDER-1", body.OrderID)
	assert.Equal(t, "PAYER-1", body.PayerID)
}

func TestCapturePaymentOrder_MissingID(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/payment/capture-order",
		map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProductCRUD(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	create := map[string]any{
		"name":        "Solar Starter Kit",
		"description": "Everything to get started",
		"price":       34900,
		"category":    "kits",
	}

	// Writes require an admin session.
	resp := f.do(t, http.MethodPost, "/api/products", create, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/products", create, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[product.Product](t, resp)
	assert.Equal(t, "solar-starter-kit", created.Slug)

	// Public read by id and by slug.
	resp = f.do(t, http.MethodGet, "/api/products/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.do(t, http.MethodGet, "/api/products/solar-starter-kit", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Same name gets a collision-suffixed slug.
	resp = f.do(t, http.MethodPost, "/api/products", create, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decodeBody[product.Product](t, resp)
	assert.Equal(t, "solar-starter-kit-2", second.Slug)

	// Update.
	create["price"] = 29900
	resp = f.do(t, http.MethodPut, "/api/products/"+created.ID, create, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[product.Product](t, resp)
	assert.EqualValues(t, 29900, updated.Price)
	assert.Equal(t, "solar-starter-kit", updated.Slug, "slug stable when name unchanged")

	// Delete, then 404.
	resp = f.do(t, http.MethodDelete, "/api/products/"+created.ID, nil, cookie)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = f.do(t, http.MethodGet, "/api/products/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProduct_NegativePrice(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	resp := f.do(t, http.MethodPost, "/api/products",
		map[string]any{"name": "Broken", "price": -100}, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuestions_AskAndVisibility(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	// Public ask; empty author defaults to Guest.
	resp := f.do(t, http.MethodPost, "/api/products/solar-kit/questions",
		map[string]string{"body": "Does it work off-grid?"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	asked := decodeBody[question.Question](t, resp)
	assert.Equal(t, "Guest", asked.Author)

	// Blank body rejected.
	resp = f.do(t, http.MethodPost, "/api/products/solar-kit/questions",
		map[string]string{"body": "   "}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Schedule the question for the future; it disappears from the public list.
	future := time.Now().Add(24 * time.Hour)
	resp = f.do(t, http.MethodPut, "/api/questions/"+asked.ID,
		map[string]any{"answer": "Yes, with the battery bank.", "scheduledFor": future}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/products/solar-kit/questions", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	visible := decodeBody[[]question.Question](t, resp)
	assert.Empty(t, visible)

	// Admin list still sees it.
	resp = f.do(t, http.MethodGet, "/api/questions", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decodeBody[[]question.Question](t, resp)
	assert.Len(t, all, 1)
}

func TestQuestions_AdminCreate(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	// Admin seeds a pre-answered question.
	resp := f.do(t, http.MethodPost, "/api/questions", map[string]string{
		"productSlug": "solar-kit",
		"author":      "Support",
		"body":        "Can the inverter run a fridge?",
		"answer":      "Yes, up to 3000W continuous.",
	}, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[question.Question](t, resp)
	assert.Equal(t, "Support", created.Author)
	assert.NotEmpty(t, created.Answer)

	// Missing product slug rejected.
	resp = f.do(t, http.MethodPost, "/api/questions",
		map[string]string{"body": "orphan question"}, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Not exposed without a session.
	resp = f.do(t, http.MethodPost, "/api/questions",
		map[string]string{"productSlug": "solar-kit", "body": "hi"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Shows up on the product page immediately.
	resp = f.do(t, http.MethodGet, "/api/products/solar-kit/questions", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	visible := decodeBody[[]question.Question](t, resp)
	require.Len(t, visible, 1)
	assert.Equal(t, created.ID, visible[0].ID)
}

func TestBlog_DraftVisibility(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	resp := f.do(t, http.MethodPost, "/api/blog",
		map[string]any{"title": "Sizing Your Array", "body": "...", "published": false}, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	draft := decodeBody[map[string]any](t, resp)

	// Draft hidden from the public list and detail view.
	resp = f.do(t, http.MethodGet, "/api/blog", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[[]map[string]any](t, resp))

	resp = f.do(t, http.MethodGet, "/api/blog/"+draft["id"].(string), nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Admin sees it everywhere.
	resp = f.do(t, http.MethodGet, "/api/blog", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]map[string]any](t, resp), 1)
}

func TestAuth_LoginLogoutSession(t *testing.T) {
	f := newFixture(t)

	// Bad credentials.
	resp := f.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cookie := f.adminCookie(t)

	resp = f.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBody[map[string]bool](t, resp)["authenticated"])

	// Logout revokes the session.
	resp = f.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/auth/session", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeBody[map[string]bool](t, resp)["authenticated"])

	resp = f.do(t, http.MethodPost, "/api/products",
		map[string]any{"name": "X", "price": 1}, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSettings_PartialUpdate(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	resp := f.do(t, http.MethodGet, "/api/admin/settings", nil, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decodeBody[settings.Settings](t, resp).ShippingDisabled)

	resp = f.do(t, http.MethodPut, "/api/admin/settings",
		map[string]bool{"shippingDisabled": true}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBody[settings.Settings](t, resp).ShippingDisabled)

	// An empty body changes nothing.
	resp = f.do(t, http.MethodPut, "/api/admin/settings", map[string]any{}, cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeBody[settings.Settings](t, resp).ShippingDisabled)
}

func TestSettings_RequiresAdmin(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/admin/settings", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpload(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="panel.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)

	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeBody[uploadResponse](t, resp)
	assert.Contains(t, body.URL, "/uploads/")
	assert.Contains(t, body.URL, "panel.png")
}

func TestUpload_BadType(t *testing.T) {
	f := newFixture(t)
	cookie := f.adminCookie(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="notes.txt"`},
		"Content-Type":        {"text/plain"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(cookie)

	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/products/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
