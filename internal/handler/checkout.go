package handler

import (
	"errors"
	"net/http"
	"photo-paywall-api/internal/client"
	"photo-paywall-api/internal/dto"
	"photo-paywall-api/internal/model"
	"photo-paywall-api/internal/service"
	"strings"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) CreateCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.PhotoID) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "photoId is required"})
	}

	checkoutURL, err := h.checkoutService.CreateCheckout(ctx, req.PhotoID, model.NormalizeMode(req.Mode))
	if err != nil {
		return checkoutError(c, err)
	}

	return c.JSON(http.StatusOK, &dto.CheckoutResponse{URL: checkoutURL})
}

func checkoutError(c echo.Context, err error) error {
	var upstream *client.UpstreamError

	switch {
	case errors.Is(err, service.ErrPhotoNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "photo not found"})
	case errors.Is(err, service.ErrInvalidPrice):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid price"})
	case errors.Is(err, service.ErrNotConfigured):
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "payments are not available right now"})
	case errors.As(err, &upstream):
		// Surface the provider's raw answer: without it a 502 is undebuggable.
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error":  "payment provider error",
			"detail": upstream.Body,
		})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create checkout"})
	}
}
