package service

import (
	"context"
	"fmt"
	"net/url"
	"photo-paywall-api/internal/client"
	"photo-paywall-api/internal/config"
	"photo-paywall-api/internal/model"
	"photo-paywall-api/internal/repository"
	"strings"

	"github.com/shopspring/decimal"
)

const ProviderStripe = "stripe"

type CheckoutService interface {
	// CreateCheckout resolves the photo, picks the price for the purchase
	// mode and returns the gateway's hosted checkout URL.
	CreateCheckout(ctx context.Context, photoKey string, mode model.PurchaseMode) (string, error)
}

type checkoutServiceImpl struct {
	mpClient     client.MercadoPagoClient
	stripeClient client.StripeClient
	photoRepo    repository.PhotoRepository

	provider     string
	baseURL      string
	currency     string
	accessToken  string
	stripeKey    string
	webhookToken string
}

func NewCheckoutService(
	cfg *config.Config,
	mpClient client.MercadoPagoClient,
	stripeClient client.StripeClient,
	photoRepo repository.PhotoRepository,
) CheckoutService {
	return &checkoutServiceImpl{
		mpClient:     mpClient,
		stripeClient: stripeClient,
		photoRepo:    photoRepo,
		provider:     cfg.CheckoutProvider,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		currency:     cfg.Currency,
		accessToken:  cfg.MercadoPago.AccessToken,
		stripeKey:    cfg.Stripe.SecretKey,
		webhookToken: cfg.MercadoPago.WebhookToken,
	}
}

func (s *checkoutServiceImpl) CreateCheckout(ctx context.Context, photoKey string, mode model.PurchaseMode) (string, error) {
	photo, err := resolvePhoto(ctx, s.photoRepo, strings.TrimSpace(photoKey))
	if err != nil {
		return "", err
	}

	price, err := priceFor(photo, mode)
	if err != nil {
		return "", err
	}

	if s.provider == ProviderStripe {
		return s.createStripeCheckout(ctx, photo, price)
	}
	return s.createPreference(ctx, photo, mode, price)
}

// priceFor picks the configured price for the mode. A download request on a
// photo without a download price degrades to the view price rather than
// failing the purchase.
func priceFor(photo *model.Photo, mode model.PurchaseMode) (decimal.Decimal, error) {
	price := photo.PriceView
	if mode == model.ModeDownload && photo.PriceDownload.IsPositive() {
		price = photo.PriceDownload
	}
	if !price.IsPositive() {
		return decimal.Decimal{}, ErrInvalidPrice
	}
	return price, nil
}

func (s *checkoutServiceImpl) createPreference(ctx context.Context, photo *model.Photo, mode model.PurchaseMode, price decimal.Decimal) (string, error) {
	if s.accessToken == "" {
		return "", ErrNotConfigured
	}

	// Buyers land back on the link they shared, so back URLs carry the
	// public key; the external reference always carries the internal id.
	publicKey := photo.Slug
	if publicKey == "" {
		publicKey = photo.ID
	}

	pref := &model.PreferenceRequest{
		Items: []model.PreferenceItem{
			{
				Title:      photo.Title,
				Quantity:   1,
				UnitPrice:  price,
				CurrencyID: s.currency,
			},
		},
		BackURLs: model.BackURLs{
			Success: fmt.Sprintf("%s/mi-foto/%s?status=success", s.baseURL, publicKey),
			Pending: fmt.Sprintf("%s/mi-foto/%s?status=pending", s.baseURL, publicKey),
			Failure: fmt.Sprintf("%s/mi-foto/%s?status=failure", s.baseURL, publicKey),
		},
		AutoReturn:        "approved",
		ExternalReference: fmt.Sprintf("%s|%s", photo.ID, mode),
	}

	// Mercado Pago rejects plain-http notification URLs, so only announce
	// one when the site runs on https.
	if s.webhookToken != "" && strings.HasPrefix(s.baseURL, "https://") {
		pref.NotificationURL = fmt.Sprintf("%s/api/mercadopago/webhook?token=%s",
			s.baseURL, url.QueryEscape(s.webhookToken))
	}

	result, err := s.mpClient.CreatePreference(ctx, pref)
	if err != nil {
		return "", fmt.Errorf("mercadopago create preference: %w", err)
	}

	if result.InitPoint != "" {
		return result.InitPoint, nil
	}
	return result.SandboxInitPoint, nil
}

func (s *checkoutServiceImpl) createStripeCheckout(ctx context.Context, photo *model.Photo, price decimal.Decimal) (string, error) {
	if s.stripeKey == "" || s.stripeClient == nil {
		return "", ErrNotConfigured
	}

	publicKey := photo.Slug
	if publicKey == "" {
		publicKey = photo.ID
	}

	checkoutURL, err := s.stripeClient.CreateCheckoutSession(ctx,
		photo.Title,
		price,
		strings.ToLower(s.currency),
		fmt.Sprintf("%s/mi-foto/%s?status=success", s.baseURL, publicKey),
		fmt.Sprintf("%s/mi-foto/%s?status=cancel", s.baseURL, publicKey),
	)
	if err != nil {
		return "", fmt.Errorf("stripe checkout: %w", err)
	}
	return checkoutURL, nil
}
