package dto

import "github.com/fekuna/superfume-sync/internal/model"

type ProductFilters struct {
	OnlyAvailable bool
	SearchQuery   string // substring of name or brand
	Category      string
	Gender        model.Gender
	SortBy        string // name, price, brand, updated_at
	SortOrder     string // asc, desc
	Page          int
	PageSize      int
}
