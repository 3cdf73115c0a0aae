package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"photo-paywall-api/internal/config"
	"photo-paywall-api/internal/model"
	"photo-paywall-api/internal/service"
	"strings"

	"github.com/labstack/echo/v4"
)

// WebhookHandler is the notification ingress. After the token check it always
// answers 200: non-retryable failures (unknown photo, amount mismatch) are
// settled via the ledger, and transient ones are retried because no ledger
// row was written — never by making the provider hammer a non-200 endpoint.
type WebhookHandler struct {
	reconcileService service.ReconcileService
	accessToken      string
	webhookToken     string
}

func NewWebhookHandler(reconcileService service.ReconcileService, mpCfg *config.MercadoPago) *WebhookHandler {
	return &WebhookHandler{
		reconcileService: reconcileService,
		accessToken:      mpCfg.AccessToken,
		webhookToken:     strings.TrimSpace(mpCfg.WebhookToken),
	}
}

func (h *WebhookHandler) Healthcheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (h *WebhookHandler) HandleNotification(c echo.Context) error {
	ctx := c.Request().Context()

	if h.webhookToken != "" {
		got := strings.TrimSpace(c.QueryParam("token"))
		if got == "" || got != h.webhookToken {
			return c.JSON(http.StatusUnauthorized, map[string]bool{"ok": false})
		}
	}

	if h.accessToken == "" {
		// Cannot resolve any payment without credentials; this one is on us.
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"ok":    false,
			"error": "MERCADOPAGO_ACCESS_TOKEN missing",
		})
	}

	var notification model.Notification
	if body, err := io.ReadAll(c.Request().Body); err == nil && len(body) > 0 {
		// Garbage bodies are fine, the query parameters may still carry the id.
		_ = json.Unmarshal(body, &notification)
	}

	id, merchantOrder := extractIdentifier(&notification, c.QueryParams())
	if id == "" {
		// Nothing numeric to reconcile; answer ok so the provider stops
		// retrying garbage.
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	}

	if err := h.reconcileService.HandleNotification(ctx, id, merchantOrder); err != nil {
		slog.Error("webhook reconciliation failed", "id", id, "error", err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// extractIdentifier normalizes every known notification shape into one
// candidate id, in fixed priority: body data.id, body id, body resource,
// then the query variants.
func extractIdentifier(n *model.Notification, q url.Values) (string, bool) {
	candidates := []string{
		n.Data.ID.String(),
		n.ID.String(),
		n.Resource,
		q.Get("data.id"),
		q.Get("id"),
		q.Get("payment_id"),
		q.Get("resource"),
	}

	for _, raw := range candidates {
		if id := numericID(raw); id != "" {
			return id, isMerchantOrder(n, q, raw)
		}
	}
	return "", false
}

// numericID reduces a candidate to the trailing digit run of its last path
// segment; plain numeric ids pass through unchanged.
func numericID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw, _, _ = strings.Cut(raw, "?")
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		raw = raw[i+1:]
	}

	end := len(raw)
	start := end
	for start > 0 && raw[start-1] >= '0' && raw[start-1] <= '9' {
		start--
	}
	return raw[start:end]
}

func isMerchantOrder(n *model.Notification, q url.Values, raw string) bool {
	switch model.TopicMerchantOrder {
	case n.Topic, n.Type, q.Get("topic"), q.Get("type"):
		return true
	}
	return strings.Contains(raw, "/merchant_orders/")
}
