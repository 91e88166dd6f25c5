package cart

import (
	"context"

	"github.com/fekuna/superfume-sync/internal/model"
	"github.com/fekuna/superfume-sync/internal/remote"
)

// ProductReader resolves the products cart lines refer to.
type ProductReader interface {
	GetByID(ctx context.Context, id int64) (*model.Product, error)
}

// Gateway is the checkout side of the backend.
type Gateway interface {
	GetCart(ctx context.Context, userID int64) (*remote.CartDTO, error)
	ClearCart(ctx context.Context, cartID int64) error
	AddCartItem(ctx context.Context, cartID int64, req remote.CartItemRequest) (*remote.CartDTO, error)
	CreateOrder(ctx context.Context, cartID int64) (*remote.OrderDTO, error)
	CreatePayment(ctx context.Context, req remote.PaymentRequest) (*remote.PaymentDTO, error)
}
