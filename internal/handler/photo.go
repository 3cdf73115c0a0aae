package handler

import (
	"errors"
	"net/http"
	"photo-paywall-api/internal/dto"
	"photo-paywall-api/internal/service"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type PhotoHandler struct {
	photoService service.PhotoService
}

func NewPhotoHandler(photoService service.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

func creatorIDFromContext(c echo.Context) (string, error) {
	creatorID, _ := c.Get("user_id").(string)
	if creatorID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing creator identity")
	}
	return creatorID, nil
}

func (h *PhotoHandler) CreatePhoto(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, err := creatorIDFromContext(c)
	if err != nil {
		return err
	}

	var req dto.CreatePhotoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	photo, err := h.photoService.Create(ctx, creatorID, &req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, photo)
}

func (h *PhotoHandler) ListPhotos(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, err := creatorIDFromContext(c)
	if err != nil {
		return err
	}

	photos, err := h.photoService.List(ctx, creatorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not list photos"})
	}

	return c.JSON(http.StatusOK, photos)
}

func (h *PhotoHandler) SetHidden(c echo.Context) error {
	ctx := c.Request().Context()

	creatorID, err := creatorIDFromContext(c)
	if err != nil {
		return err
	}

	var req dto.SetHiddenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.photoService.SetHidden(ctx, creatorID, c.Param("id"), req.Hidden); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "photo not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not update photo"})
	}

	return c.JSON(http.StatusOK, map[string]bool{"hidden": req.Hidden})
}
