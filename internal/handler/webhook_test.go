package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"photo-paywall-api/internal/config"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type fakeReconcileService struct {
	calls []reconcileCall
	err   error
}

type reconcileCall struct {
	id            string
	merchantOrder bool
}

func (f *fakeReconcileService) HandleNotification(ctx context.Context, id string, merchantOrder bool) error {
	f.calls = append(f.calls, reconcileCall{id: id, merchantOrder: merchantOrder})
	return f.err
}

func (f *fakeReconcileService) ProcessPayment(ctx context.Context, paymentID string) error {
	return f.err
}

func newWebhookTest(mpCfg *config.MercadoPago) (*fakeReconcileService, *WebhookHandler, *echo.Echo) {
	svc := &fakeReconcileService{}
	return svc, NewWebhookHandler(svc, mpCfg), echo.New()
}

func postWebhook(e *echo.Echo, h *WebhookHandler, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h.HandleNotification(e.NewContext(req, rec))
	return rec
}

func TestWebhookHealthcheck(t *testing.T) {
	_, h, e := newWebhookTest(&config.MercadoPago{AccessToken: "tok"})

	req := httptest.NewRequest(http.MethodGet, "/api/mercadopago/webhook", nil)
	rec := httptest.NewRecorder()
	_ = h.Healthcheck(e.NewContext(req, rec))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestWebhookTokenAuth(t *testing.T) {
	svc, h, e := newWebhookTest(&config.MercadoPago{AccessToken: "tok", WebhookToken: "secret"})

	rec := postWebhook(e, h, "/webhook", `{"data":{"id":123}}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d, want 401", rec.Code)
	}

	rec = postWebhook(e, h, "/webhook?token=wrong", `{"data":{"id":123}}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d, want 401", rec.Code)
	}
	if len(svc.calls) != 0 {
		t.Fatal("rejected request must not be processed")
	}

	rec = postWebhook(e, h, "/webhook?token=secret", `{"data":{"id":123}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", rec.Code)
	}
	if len(svc.calls) != 1 || svc.calls[0].id != "123" {
		t.Fatalf("calls = %+v", svc.calls)
	}
}

func TestWebhookMissingAccessToken(t *testing.T) {
	_, h, e := newWebhookTest(&config.MercadoPago{})

	rec := postWebhook(e, h, "/webhook", `{"data":{"id":123}}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestWebhookIdentifierShapes(t *testing.T) {
	cases := []struct {
		name      string
		target    string
		body      string
		wantID    string
		wantOrder bool
	}{
		{"body nested data.id", "/webhook", `{"type":"payment","data":{"id":123}}`, "123", false},
		{"body nested data.id as string", "/webhook", `{"data":{"id":"456"}}`, "456", false},
		{"body top-level id", "/webhook", `{"id":789,"topic":"payment"}`, "789", false},
		{"body resource url", "/webhook", `{"resource":"https://api.mercadopago.com/v1/payments/321","topic":"payment"}`, "321", false},
		{"query data.id", "/webhook?data.id=111", "", "111", false},
		{"query id", "/webhook?id=222", "", "222", false},
		{"query payment_id", "/webhook?payment_id=333", "", "333", false},
		{"query resource", "/webhook?resource=" + url.QueryEscape("https://api.mercadopago.com/v1/payments/444"), "", "444", false},
		{"merchant order topic", "/webhook?topic=merchant_order&id=555", "", "555", true},
		{"merchant order body type", "/webhook", `{"type":"merchant_order","id":666}`, "666", true},
		{"merchant order resource url", "/webhook", `{"topic":"payment","resource":"https://api.mercadopago.com/merchant_orders/777"}`, "777", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, h, e := newWebhookTest(&config.MercadoPago{AccessToken: "tok"})

			rec := postWebhook(e, h, tc.target, tc.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if len(svc.calls) != 1 {
				t.Fatalf("calls = %+v, want exactly one", svc.calls)
			}
			if svc.calls[0].id != tc.wantID {
				t.Errorf("id = %q, want %q", svc.calls[0].id, tc.wantID)
			}
			if svc.calls[0].merchantOrder != tc.wantOrder {
				t.Errorf("merchantOrder = %v, want %v", svc.calls[0].merchantOrder, tc.wantOrder)
			}
		})
	}
}

func TestWebhookGarbageIsNoOpSuccess(t *testing.T) {
	cases := []struct {
		name   string
		target string
		body   string
	}{
		{"empty body", "/webhook", ""},
		{"invalid json", "/webhook", "not json at all"},
		{"no identifier anywhere", "/webhook", `{"action":"payment.updated"}`},
		{"non-numeric id", "/webhook?id=hello", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, h, e := newWebhookTest(&config.MercadoPago{AccessToken: "tok"})

			rec := postWebhook(e, h, tc.target, tc.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (never invite retries for garbage)", rec.Code)
			}
			if len(svc.calls) != 0 {
				t.Fatalf("garbage must not be dispatched, calls = %+v", svc.calls)
			}
		})
	}
}

func TestWebhookAnswers200WhenReconciliationFails(t *testing.T) {
	svc, h, e := newWebhookTest(&config.MercadoPago{AccessToken: "tok"})
	svc.err = context.DeadlineExceeded

	rec := postWebhook(e, h, "/webhook", `{"data":{"id":123}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (retry happens via provider redelivery)", rec.Code)
	}
}

func TestNumericID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"123", "123"},
		{"  123  ", "123"},
		{"https://api.mercadopago.com/v1/payments/987", "987"},
		{"https://api.mercadopago.com/merchant_orders/65?topic=merchant_order", "65"},
		{"payments/abc99", "99"},
		{"abc", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := numericID(tc.in); got != tc.want {
			t.Errorf("numericID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
