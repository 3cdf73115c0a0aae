package service

import (
	"context"
	"fmt"
	"photo-paywall-api/internal/dto"
	"photo-paywall-api/internal/model"
	"photo-paywall-api/internal/repository"
	"strings"

	"github.com/google/uuid"
)

// PhotoService backs the creator panel. It never touches earnings: aggregates
// only move through the webhook reconciliation path.
type PhotoService interface {
	Create(ctx context.Context, creatorID string, req *dto.CreatePhotoRequest) (*model.Photo, error)
	List(ctx context.Context, creatorID string) ([]*model.Photo, error)
	SetHidden(ctx context.Context, creatorID, photoID string, hidden bool) error
}

type photoServiceImpl struct {
	photoRepo repository.PhotoRepository
}

func NewPhotoService(photoRepo repository.PhotoRepository) PhotoService {
	return &photoServiceImpl{
		photoRepo: photoRepo,
	}
}

func (s *photoServiceImpl) Create(ctx context.Context, creatorID string, req *dto.CreatePhotoRequest) (*model.Photo, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !req.PriceView.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if req.PriceDownload.IsNegative() {
		return nil, ErrInvalidPrice
	}

	photo := &model.Photo{
		ID:            uuid.NewString(),
		CreatorID:     creatorID,
		Slug:          strings.TrimSpace(req.Slug),
		Title:         strings.TrimSpace(req.Title),
		ImageURL:      req.ImageURL,
		PriceView:     req.PriceView,
		PriceDownload: req.PriceDownload,
	}

	if err := s.photoRepo.Create(ctx, photo); err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}
	return photo, nil
}

func (s *photoServiceImpl) List(ctx context.Context, creatorID string) ([]*model.Photo, error) {
	photos, err := s.photoRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

func (s *photoServiceImpl) SetHidden(ctx context.Context, creatorID, photoID string, hidden bool) error {
	return s.photoRepo.SetHidden(ctx, photoID, creatorID, hidden)
}
