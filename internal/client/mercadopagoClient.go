package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"photo-paywall-api/internal/config"
	"photo-paywall-api/internal/model"
	"time"
)

type MercadoPagoClient interface {
	// CreatePreference creates a Checkout Pro preference and returns the
	// hosted checkout URLs.
	CreatePreference(ctx context.Context, pref *model.PreferenceRequest) (*model.Preference, error)
	// GetPayment fetches the authoritative payment record. A non-2xx answer
	// returns (nil, nil): the caller treats it as "retry later" and must not
	// record anything, so the provider's redelivery can finish the job.
	GetPayment(ctx context.Context, paymentID string) (*model.Payment, error)
	// GetMerchantOrder expands an order notification into its payment ids.
	// Same soft-miss semantics as GetPayment.
	GetMerchantOrder(ctx context.Context, orderID string) (*model.MerchantOrder, error)
}

// UpstreamError carries the provider's status and raw body for 502 diagnosis
// on the synchronous checkout path.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("mercadopago error %d: %s", e.StatusCode, e.Body)
}

type mercadoPagoClientImpl struct {
	httpClient  *http.Client
	baseApiURL  string
	accessToken string
}

func NewMercadoPagoClient(mpCfg *config.MercadoPago) MercadoPagoClient {
	return &mercadoPagoClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:  mpCfg.BaseApiURL,
		accessToken: mpCfg.AccessToken,
	}
}

func (c *mercadoPagoClientImpl) CreatePreference(ctx context.Context, pref *model.PreferenceRequest) (*model.Preference, error) {
	body, err := json.Marshal(pref)
	if err != nil {
		return nil, fmt.Errorf("marshal preference payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/checkout/preferences",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago create preference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var result model.Preference
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode preference response: %w", err)
	}

	return &result, nil
}

func (c *mercadoPagoClientImpl) GetPayment(ctx context.Context, paymentID string) (*model.Payment, error) {
	url := fmt.Sprintf("%s/v1/payments/%s", c.baseApiURL, paymentID)

	var payment model.Payment
	ok, err := c.getJSON(ctx, url, &payment)
	if err != nil || !ok {
		return nil, err
	}
	return &payment, nil
}

func (c *mercadoPagoClientImpl) GetMerchantOrder(ctx context.Context, orderID string) (*model.MerchantOrder, error) {
	url := fmt.Sprintf("%s/merchant_orders/%s", c.baseApiURL, orderID)

	var order model.MerchantOrder
	ok, err := c.getJSON(ctx, url, &order)
	if err != nil || !ok {
		return nil, err
	}
	return &order, nil
}

// getJSON performs an authenticated no-store GET. Non-2xx is a soft miss:
// (false, nil), never a hard error.
func (c *mercadoPagoClientImpl) getJSON(ctx context.Context, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("mercadopago get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("mercadopago lookup not ok", "url", url, "status", resp.StatusCode)
		return false, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode mercadopago response: %w", err)
	}
	return true, nil
}
