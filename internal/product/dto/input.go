package dto

import "github.com/fekuna/superfume-sync/internal/model"

type CreateProductInput struct {
	Name        string       `json:"name" validate:"required"`
	Brand       string       `json:"brand" validate:"required"`
	Price       int64        `json:"price" validate:"min=0"`
	Description string       `json:"description"`
	ImageURI    *string      `json:"image_uri"`
	Gender      model.Gender `json:"gender" validate:"omitempty,oneof=Masculine Feminine Unisex"`
	Category    string       `json:"category"`
	Notes       string       `json:"notes"`
	Profile     string       `json:"profile"`
	Size        string       `json:"size"`
	Stock       int          `json:"stock" validate:"min=0"`
}

type UpdateProductInput struct {
	ID          int64        `json:"id" validate:"required"`
	Name        string       `json:"name" validate:"required"`
	Brand       string       `json:"brand" validate:"required"`
	Price       int64        `json:"price" validate:"min=0"`
	Description string       `json:"description"`
	ImageURI    *string      `json:"image_uri"`
	Gender      model.Gender `json:"gender" validate:"omitempty,oneof=Masculine Feminine Unisex"`
	Category    string       `json:"category"`
	Notes       string       `json:"notes"`
	Profile     string       `json:"profile"`
	Size        string       `json:"size"`
	Stock       int          `json:"stock" validate:"min=0"`
	IsAvailable bool         `json:"is_available"`
}
