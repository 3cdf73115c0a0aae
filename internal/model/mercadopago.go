package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Notification is the loosely-typed webhook payload. Mercado Pago delivers
// several shapes (IPN topic+id, webhooks v1 with data.id, resource URLs),
// sometimes as JSON body, sometimes as query parameters only, and ids may be
// numbers or strings. json.Number absorbs both.
type Notification struct {
	ID       json.Number      `json:"id"`
	Type     string           `json:"type"`
	Topic    string           `json:"topic"`
	Action   string           `json:"action"`
	Resource string           `json:"resource"`
	Data     NotificationData `json:"data"`
}

type NotificationData struct {
	ID json.Number `json:"id"`
}

const TopicMerchantOrder = "merchant_order"

// Payment is the authoritative record fetched from GET /v1/payments/{id}.
// Only these fields matter to reconciliation; the rest of the payload is
// deliberately not modeled.
type Payment struct {
	ID                json.Number     `json:"id"`
	Status            string          `json:"status"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
}

const PaymentStatusApproved = "approved"

// MerchantOrder groups multiple payment attempts under one order.
type MerchantOrder struct {
	ID       json.Number            `json:"id"`
	Status   string                 `json:"status"`
	Payments []MerchantOrderPayment `json:"payments"`
}

type MerchantOrderPayment struct {
	ID     json.Number `json:"id"`
	Status string      `json:"status"`
}

// PreferenceRequest is the body for POST /checkout/preferences.
type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	BackURLs          BackURLs         `json:"back_urls"`
	AutoReturn        string           `json:"auto_return,omitempty"`
	ExternalReference string           `json:"external_reference"`
	NotificationURL   string           `json:"notification_url,omitempty"`
}

type PreferenceItem struct {
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CurrencyID string          `json:"currency_id"`
}

type BackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}
