package dto

import "github.com/shopspring/decimal"

type CheckoutRequest struct {
	PhotoID string `json:"photoId"`
	Mode    string `json:"mode"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type CreatePhotoRequest struct {
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	ImageURL      string          `json:"imageUrl"`
	PriceView     decimal.Decimal `json:"priceView"`
	PriceDownload decimal.Decimal `json:"priceDownload"`
}

type SetHiddenRequest struct {
	Hidden bool `json:"hidden"`
}
