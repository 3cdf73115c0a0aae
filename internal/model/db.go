package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseMode string

const (
	ModeView     PurchaseMode = "view"
	ModeDownload PurchaseMode = "download"
)

// NormalizeMode defaults anything that is not an explicit download to view.
func NormalizeMode(raw string) PurchaseMode {
	if raw == string(ModeDownload) {
		return ModeDownload
	}
	return ModeView
}

type Photo struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	CreatorID string `gorm:"size:64;index"`
	// Slug is NOT unique: creators can reuse slugs and moderation may hide
	// one of the duplicates, so slug resolution lives in the repository.
	Slug     string `gorm:"size:128;index"`
	Title    string `gorm:"size:256"`
	ImageURL string `gorm:"size:512"`
	Hidden   bool   `gorm:"not null;default:false"`

	PriceView     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PriceDownload decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Aggregates only move through the webhook reconciliation transaction.
	EarningsView      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	EarningsDownload  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PurchasesView     int64           `gorm:"not null;default:0"`
	PurchasesDownload int64           `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentRecord is the idempotency ledger: at most one row per provider
// payment id, inserted exactly once and never updated. Existence of the row
// is the only signal that a payment was already handled.
type PaymentRecord struct {
	PaymentID         string          `gorm:"primaryKey;size:64;not null"`
	Status            string          `gorm:"size:32"`
	ExternalReference string          `gorm:"size:256"`
	Mode              string          `gorm:"size:16"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2)"`
	AmountMatched     bool
	Note              string `gorm:"size:64"`
	CreatedAt         time.Time
}

const NotePhotoNotFound = "photo_not_found"
