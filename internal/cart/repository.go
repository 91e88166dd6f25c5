package cart

import (
	"context"

	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/model"
)

type Repository interface {
	// Upsert stores the line for (UserID, ProductID), replacing its quantity
	// when one already exists.
	Upsert(ctx context.Context, line *model.CartLine) (int64, error)
	GetLine(ctx context.Context, userID, productID int64) (*model.CartLine, error)
	ListForUser(ctx context.Context, userID int64) ([]model.CartLine, error)

	// ListItemsForUser joins lines with their products. Lines whose product
	// is not stored locally are left out.
	ListItemsForUser(ctx context.Context, userID int64) ([]model.CartItem, error)

	DeleteLine(ctx context.Context, userID, productID int64) error
	ClearForUser(ctx context.Context, userID int64) error

	WatchForUser(ctx context.Context, userID int64) (*live.Subscription[[]model.CartLine], error)
	WatchItemsForUser(ctx context.Context, userID int64) (*live.Subscription[[]model.CartItem], error)
}
