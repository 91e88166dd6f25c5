package product

import (
	"context"

	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/model"
	"github.com/fekuna/superfume-sync/internal/product/dto"
)

type Repository interface {
	Upsert(ctx context.Context, p *model.Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Delete(ctx context.Context, id int64) error
	UpdateStock(ctx context.Context, id int64, stock int) error

	// ReplaceID moves a locally created product onto the id the server
	// assigned, carrying cart lines along.
	ReplaceID(ctx context.Context, oldID, newID int64) error

	WatchAvailable(ctx context.Context) (*live.Subscription[[]model.Product], error)
	WatchSearch(ctx context.Context, text string) (*live.Subscription[[]model.Product], error)
	WatchByCategory(ctx context.Context, category string) (*live.Subscription[[]model.Product], error)
	WatchByGender(ctx context.Context, gender model.Gender) (*live.Subscription[[]model.Product], error)
	WatchAll(ctx context.Context) (*live.Subscription[[]model.Product], error)
}
