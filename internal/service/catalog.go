package service

import (
	"context"
	"errors"
	"fmt"
	"photo-paywall-api/internal/model"
	"photo-paywall-api/internal/repository"

	"gorm.io/gorm"
)

// resolvePhoto maps a public identifier to a photo: direct id first, then
// slug. The slug fallback also covers old correlation tokens that stored a
// slug instead of the internal id; new tokens always carry the id.
func resolvePhoto(ctx context.Context, photos repository.PhotoRepository, key string) (*model.Photo, error) {
	photo, err := photos.FindByID(ctx, key)
	if err == nil {
		return photo, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find photo by id: %w", err)
	}

	photo, err = photos.FindBySlug(ctx, key)
	if err == nil {
		return photo, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPhotoNotFound
	}
	return nil, fmt.Errorf("find photo by slug: %w", err)
}
