package usecase

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fekuna/superfume-sync/internal/model"
	"github.com/fekuna/superfume-sync/internal/remote"
)

// fromDTO translates a backend perfume into the local row.
func fromDTO(d remote.PerfumeDTO, now time.Time) *model.Product {
	p := &model.Product{
		ID:          d.ID,
		Name:        d.Nombre,
		Brand:       d.Marca,
		Price:       priceFromRemote(d.Precio),
		Description: deref(d.Descripcion),
		ImageURI:    d.ImagenURL,
		Gender:      model.GenderUnisex,
		Category:    model.DefaultCategory,
		Notes:       deref(d.Notas),
		Profile:     deref(d.Perfil),
		Stock:       d.Stock,
		IsAvailable: d.Stock > 0,
		UpdatedAt:   now.UnixMilli(),
	}
	if d.Genero != nil {
		p.Gender = model.ParseGender(*d.Genero)
	}
	if c := strings.TrimSpace(deref(d.Fragancia)); c != "" {
		p.Category = c
	}
	p.Normalize()
	return p
}

func toRequest(p *model.Product) remote.PerfumeRequest {
	return remote.PerfumeRequest{
		Nombre:      p.Name,
		Marca:       p.Brand,
		Precio:      decimal.NewFromInt(p.Price).InexactFloat64(),
		Stock:       p.Stock,
		Descripcion: p.Description,
		ImagenURL:   p.ImageURI,
		Genero:      string(p.Gender),
		Fragancia:   p.Category,
		Notas:       p.Notes,
		Perfil:      p.Profile,
	}
}

// priceFromRemote rounds half away from zero to whole currency units.
func priceFromRemote(v float64) int64 {
	price := decimal.NewFromFloat(v).Round(0).IntPart()
	if price < 0 {
		return 0
	}
	return price
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
