package remote

import (
	"context"
	"net/http"
)

// GetCart returns the server side cart of a user, creating it when needed.
func (c *Client) GetCart(ctx context.Context, userID int64) (*CartDTO, error) {
	var out CartDTO
	if err := c.do(ctx, http.MethodGet, expand(c.routes.CartByUser, userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddCartItem(ctx context.Context, cartID int64, req CartItemRequest) (*CartDTO, error) {
	var out CartDTO
	if err := c.do(ctx, http.MethodPost, expand(c.routes.CartItems, cartID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*CartDTO, error) {
	var out CartDTO
	req := CartQuantityRequest{Cantidad: quantity}
	if err := c.do(ctx, http.MethodPut, expand(c.routes.CartItem, itemID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCartItem(ctx context.Context, itemID int64) error {
	return c.do(ctx, http.MethodDelete, expand(c.routes.CartItem, itemID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context, cartID int64) error {
	return c.do(ctx, http.MethodDelete, expand(c.routes.Cart, cartID), nil, nil)
}
