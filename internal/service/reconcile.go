package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"photo-paywall-api/internal/client"
	"photo-paywall-api/internal/model"
	"photo-paywall-api/internal/repository"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReconcileService applies provider payment notifications to the ledger and
// the photo aggregates, exactly once per payment id. It never trusts the
// notification payload: only the payment record fetched from the provider
// counts.
type ReconcileService interface {
	// HandleNotification reconciles one extracted identifier. Merchant-order
	// ids are expanded into their payment ids first; if that expansion fails
	// the id is retried as a direct payment id rather than dropped.
	HandleNotification(ctx context.Context, id string, merchantOrder bool) error
	ProcessPayment(ctx context.Context, paymentID string) error
}

type reconcileServiceImpl struct {
	db          *gorm.DB
	mpClient    client.MercadoPagoClient
	photoRepo   repository.PhotoRepository
	paymentRepo repository.PaymentRepository
	cache       repository.PaymentCache
}

func NewReconcileService(
	db *gorm.DB,
	mpClient client.MercadoPagoClient,
	photoRepo repository.PhotoRepository,
	paymentRepo repository.PaymentRepository,
	cache repository.PaymentCache,
) ReconcileService {
	return &reconcileServiceImpl{
		db:          db,
		mpClient:    mpClient,
		photoRepo:   photoRepo,
		paymentRepo: paymentRepo,
		cache:       cache,
	}
}

var amountEpsilon = decimal.NewFromFloat(0.01)

// amountsMatch absorbs float rounding noise in provider amounts.
func amountsMatch(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(amountEpsilon)
}

// inferMode handles legacy correlation tokens that predate mode encoding:
// only an amount that unambiguously matches the download price selects
// download, everything else is a view purchase.
func inferMode(paid, priceView, priceDownload decimal.Decimal) model.PurchaseMode {
	if priceDownload.IsPositive() &&
		amountsMatch(paid, priceDownload) &&
		!amountsMatch(priceDownload, priceView) {
		return model.ModeDownload
	}
	return model.ModeView
}

func (s *reconcileServiceImpl) HandleNotification(ctx context.Context, id string, merchantOrder bool) error {
	if !merchantOrder {
		return s.ProcessPayment(ctx, id)
	}

	order, err := s.mpClient.GetMerchantOrder(ctx, id)
	if err != nil || order == nil || len(order.Payments) == 0 {
		if err != nil {
			slog.Warn("merchant order lookup failed, retrying id as payment", "id", id, "error", err)
		}
		// A mislabeled topic must not drop a real payment.
		return s.ProcessPayment(ctx, id)
	}

	for _, p := range order.Payments {
		if err := s.ProcessPayment(ctx, p.ID.String()); err != nil {
			return err
		}
	}
	return nil
}

func (s *reconcileServiceImpl) ProcessPayment(ctx context.Context, paymentID string) error {
	payment, err := s.mpClient.GetPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}
	if payment == nil {
		// Provider could not confirm the payment right now. Leave no trace
		// so its redelivery can complete the work.
		return nil
	}

	if payment.Status != model.PaymentStatusApproved {
		// No ledger row either: a later approval notification for this same
		// id must still be able to accrue earnings.
		return nil
	}

	ext := strings.TrimSpace(payment.ExternalReference)
	if ext == "" {
		return nil
	}
	photoKey, modeRaw, hasMode := strings.Cut(ext, "|")
	photoKey = strings.TrimSpace(photoKey)
	if photoKey == "" {
		return nil
	}

	// Fast path before the transactional guard: skip work on obvious
	// redeliveries.
	if s.cache.Seen(ctx, paymentID) {
		return nil
	}
	exists, err := s.paymentRepo.Exists(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("ledger lookup %s: %w", paymentID, err)
	}
	if exists {
		s.cache.MarkSeen(ctx, paymentID)
		return nil
	}

	paid := payment.TransactionAmount

	photo, err := resolvePhoto(ctx, s.photoRepo, photoKey)
	if err != nil {
		if errors.Is(err, ErrPhotoNotFound) {
			return s.recordPhotoNotFound(ctx, paymentID, payment, ext, paid)
		}
		return err
	}

	finalMode := model.NormalizeMode(modeRaw)
	if !hasMode || modeRaw == "" {
		finalMode = inferMode(paid, photo.PriceView, photo.PriceDownload)
	}

	expected := photo.PriceView
	if finalMode == model.ModeDownload {
		expected = photo.PriceDownload
	}
	// A zero expected price cannot be validated (free or promotional item);
	// that is a deliberate skip, not a loophole.
	matches := !expected.IsPositive() || amountsMatch(paid, expected)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := s.paymentRepo.CreateIfAbsent(ctx, tx, &model.PaymentRecord{
			PaymentID:         paymentID,
			Status:            payment.Status,
			ExternalReference: ext,
			Mode:              string(finalMode),
			Amount:            paid,
			AmountMatched:     matches,
		})
		if err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		if !inserted {
			// Lost the race against a concurrent delivery of the same id.
			return nil
		}
		if !matches {
			slog.Warn("paid amount does not match catalog price",
				"payment_id", paymentID,
				"photo_id", photo.ID,
				"mode", finalMode,
				"paid", paid,
				"expected", expected)
			return nil
		}
		return s.photoRepo.ApplyPayment(ctx, tx, photo.ID, finalMode, paid)
	})
	if err != nil {
		return fmt.Errorf("reconcile payment %s: %w", paymentID, err)
	}

	s.cache.MarkSeen(ctx, paymentID)

	slog.Info("payment reconciled",
		"payment_id", paymentID,
		"photo_id", photo.ID,
		"mode", finalMode,
		"amount", paid,
		"amount_matched", matches)
	return nil
}

// recordPhotoNotFound still consumes the idempotency slot so a redelivery of
// the same broken notification does not repeat the futile lookup.
func (s *reconcileServiceImpl) recordPhotoNotFound(ctx context.Context, paymentID string, payment *model.Payment, ext string, paid decimal.Decimal) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.paymentRepo.CreateIfAbsent(ctx, tx, &model.PaymentRecord{
			PaymentID:         paymentID,
			Status:            payment.Status,
			ExternalReference: ext,
			Amount:            paid,
			Note:              model.NotePhotoNotFound,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("record unmatched payment %s: %w", paymentID, err)
	}

	s.cache.MarkSeen(ctx, paymentID)
	slog.Warn("payment references unknown photo", "payment_id", paymentID, "external_reference", ext)
	return nil
}
