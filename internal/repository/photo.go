package repository

import (
	"context"
	"photo-paywall-api/internal/model"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PhotoRepository interface {
	Create(ctx context.Context, photo *model.Photo) error
	// FindByID looks up by primary key. It does NOT filter hidden photos:
	// already-shared direct links keep resolving after moderation hides a
	// slug (slug discovery is where hiding takes effect).
	FindByID(ctx context.Context, id string) (*model.Photo, error)
	// FindBySlug resolves slug collisions deterministically: hidden photos
	// are excluded, the most recently created match wins.
	FindBySlug(ctx context.Context, slug string) (*model.Photo, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*model.Photo, error)
	SetHidden(ctx context.Context, id, creatorID string, hidden bool) error
	// ApplyPayment increments the mode's earnings and purchase count inside
	// the caller's transaction, via in-database expressions so concurrent
	// approved payments for the same photo never lose updates.
	ApplyPayment(ctx context.Context, tx *gorm.DB, photoID string, mode model.PurchaseMode, amount decimal.Decimal) error
}

type photoRepoImpl struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) PhotoRepository {
	return &photoRepoImpl{
		db: db,
	}
}

func (r *photoRepoImpl) Create(ctx context.Context, photo *model.Photo) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *photoRepoImpl) FindByID(ctx context.Context, id string) (*model.Photo, error) {
	var photo model.Photo
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&photo).Error

	if err != nil {
		return nil, err
	}

	return &photo, nil
}

func (r *photoRepoImpl) FindBySlug(ctx context.Context, slug string) (*model.Photo, error) {
	var photo model.Photo
	err := r.db.WithContext(ctx).
		Where("slug = ? AND hidden = ?", slug, false).
		Order("created_at DESC").
		First(&photo).Error

	if err != nil {
		return nil, err
	}

	return &photo, nil
}

func (r *photoRepoImpl) ListByCreator(ctx context.Context, creatorID string) ([]*model.Photo, error) {
	var photos []*model.Photo
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&photos).Error

	if err != nil {
		return nil, err
	}

	return photos, nil
}

func (r *photoRepoImpl) SetHidden(ctx context.Context, id, creatorID string, hidden bool) error {
	result := r.db.WithContext(ctx).Model(&model.Photo{}).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Updates(map[string]interface{}{
			"hidden":     hidden,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *photoRepoImpl) ApplyPayment(ctx context.Context, tx *gorm.DB, photoID string, mode model.PurchaseMode, amount decimal.Decimal) error {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	switch mode {
	case model.ModeDownload:
		updates["earnings_download"] = gorm.Expr("earnings_download + ?", amount)
		updates["purchases_download"] = gorm.Expr("purchases_download + 1")
	default:
		updates["earnings_view"] = gorm.Expr("earnings_view + ?", amount)
		updates["purchases_view"] = gorm.Expr("purchases_view + 1")
	}

	result := tx.WithContext(ctx).Model(&model.Photo{}).
		Where("id = ?", photoID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
