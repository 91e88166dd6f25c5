package product

import (
	"context"

	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/model"
	"github.com/fekuna/superfume-sync/internal/product/dto"
)

type UseCase interface {
	// Catalog queries emit the locally cached state first and start a
	// background refresh from the backend.
	AvailableProducts(ctx context.Context) (*live.Subscription[[]model.Product], error)
	SearchProducts(ctx context.Context, text string) (*live.Subscription[[]model.Product], error)
	ProductsByCategory(ctx context.Context, category string) (*live.Subscription[[]model.Product], error)
	ProductsByGender(ctx context.Context, gender model.Gender) (*live.Subscription[[]model.Product], error)
	AllProducts(ctx context.Context) (*live.Subscription[[]model.Product], error)

	ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)

	Refresh(ctx context.Context) error
	RefreshProduct(ctx context.Context, id int64) error

	// Admin ops
	CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UpdateStock(ctx context.Context, id int64, stock int) error

	// Wait blocks until background refreshes started so far have finished.
	Wait()
}
