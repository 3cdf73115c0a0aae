package service

import (
	"context"
	"photo-paywall-api/internal/model"
	"photo-paywall-api/internal/repository"
	"testing"

	"github.com/shopspring/decimal"
)

// Full purchase flow: checkout mints the preference and its correlation
// token, the provider later notifies (three times), earnings accrue once.
func TestCheckoutThenWebhookAccruesOnce(t *testing.T) {
	db := newServiceTestDB(t)
	ctx := context.Background()

	mp := &fakeMPClient{payments: map[string]*model.Payment{}, orders: map[string]*model.MerchantOrder{}}
	photos := repository.NewPhotoRepository(db)
	payments := repository.NewPaymentRepository(db)

	checkout := NewCheckoutService(checkoutConfig(), mp, nil, photos)
	reconcile := NewReconcileService(db, mp, photos, payments, repository.NewPaymentCache(nil))

	if err := photos.Create(ctx, &model.Photo{
		ID:        "abc123",
		Title:     "Sunset",
		PriceView: decimal.NewFromInt(120),
	}); err != nil {
		t.Fatalf("seed photo: %v", err)
	}

	if _, err := checkout.CreateCheckout(ctx, "abc123", model.ModeView); err != nil {
		t.Fatalf("create checkout: %v", err)
	}

	pref := mp.createdPrefs[0]
	if !pref.Items[0].UnitPrice.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unit price = %s, want 120", pref.Items[0].UnitPrice)
	}

	// The provider echoes the token back on the payment object.
	mp.payments["888"] = &model.Payment{
		Status:            model.PaymentStatusApproved,
		ExternalReference: pref.ExternalReference,
		TransactionAmount: pref.Items[0].UnitPrice,
	}

	for i := 0; i < 3; i++ {
		if err := reconcile.HandleNotification(ctx, "888", false); err != nil {
			t.Fatalf("webhook delivery %d: %v", i+1, err)
		}
	}

	photo, err := photos.FindByID(ctx, "abc123")
	if err != nil {
		t.Fatalf("reload photo: %v", err)
	}
	if !photo.EarningsView.Equal(decimal.NewFromInt(120)) {
		t.Errorf("earnings view = %s, want 120", photo.EarningsView)
	}
	if photo.PurchasesView != 1 {
		t.Errorf("purchases view = %d, want 1", photo.PurchasesView)
	}
}
