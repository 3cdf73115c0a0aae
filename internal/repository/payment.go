package repository

import (
	"context"
	"photo-paywall-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Exists(ctx context.Context, paymentID string) (bool, error)
	// CreateIfAbsent is the one true idempotency guard: an insert that loses
	// to a concurrent delivery of the same payment id reports false and the
	// caller must apply no further effects. Exists() calls elsewhere are only
	// a fast path in front of this.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, record *model.PaymentRecord) (bool, error)
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Exists(ctx context.Context, paymentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PaymentRecord{}).
		Where("payment_id = ?", paymentID).
		Count(&count).Error

	return count > 0, err
}

func (r *paymentRepoImpl) CreateIfAbsent(ctx context.Context, tx *gorm.DB, record *model.PaymentRecord) (bool, error) {
	result := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
