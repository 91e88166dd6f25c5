package cart

import (
	"context"

	"github.com/fekuna/superfume-sync/internal/cart/dto"
	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/model"
)

type UseCase interface {
	AddToCart(ctx context.Context, userID, productID int64, quantity int) error
	// UpdateQuantity sets the quantity of a line; zero or less removes it.
	// A line that does not exist is left alone.
	UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error
	RemoveFromCart(ctx context.Context, userID, productID int64) error
	ClearCart(ctx context.Context, userID int64) error

	ComputeTotals(ctx context.Context, userID int64) (*dto.Totals, error)
	WatchCart(ctx context.Context, userID int64) (*live.Subscription[[]model.CartItem], error)
	WatchTotals(ctx context.Context, userID int64) (*live.Subscription[dto.Totals], error)

	// Checkout pushes the local cart to the server, places the order and
	// pays it. The local cart is cleared only when all of that succeeded.
	Checkout(ctx context.Context, userID int64, paymentMethod string) (*dto.CheckoutResult, error)
}
