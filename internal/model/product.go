package model

import "strings"

type Gender string

const (
	GenderMasculine Gender = "Masculine"
	GenderFeminine  Gender = "Feminine"
	GenderUnisex    Gender = "Unisex"
)

const DefaultCategory = "General"

// ParseGender maps the labels used by the backend and older app builds onto
// the canonical enum. Anything unknown is Unisex.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "masculine", "masculino", "hombre", "male", "m":
		return GenderMasculine
	case "feminine", "femenino", "mujer", "female", "f":
		return GenderFeminine
	default:
		return GenderUnisex
	}
}

func (g Gender) Valid() bool {
	return g == GenderMasculine || g == GenderFeminine || g == GenderUnisex
}

type Product struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Brand       string  `db:"brand" json:"brand"`
	Price       int64   `db:"price" json:"price"` // minor currency units
	Description string  `db:"description" json:"description"`
	ImageURI    *string `db:"image_uri" json:"image_uri"`
	Gender      Gender  `db:"gender" json:"gender"`
	Category    string  `db:"category" json:"category"`
	Notes       string  `db:"notes" json:"notes"`
	Profile     string  `db:"profile" json:"profile"`
	Size        string  `db:"size" json:"size"`
	Stock       int     `db:"stock" json:"stock"`
	IsAvailable bool    `db:"is_available" json:"is_available"`
	UpdatedAt   int64   `db:"updated_at" json:"updated_at"` // unix millis
}

// Normalize applies the row invariants before a write: stock is never
// negative, zero stock is never available, enum and category get defaults.
func (p *Product) Normalize() {
	if p.Stock < 0 {
		p.Stock = 0
	}
	if p.Stock == 0 {
		p.IsAvailable = false
	}
	if !p.Gender.Valid() {
		p.Gender = ParseGender(string(p.Gender))
	}
	if strings.TrimSpace(p.Category) == "" {
		p.Category = DefaultCategory
	}
}
