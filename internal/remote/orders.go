package remote

import (
	"context"
	"net/http"
)

func (c *Client) CreateOrder(ctx context.Context, cartID int64) (*OrderDTO, error) {
	var out OrderDTO
	if err := c.do(ctx, http.MethodPost, c.routes.Orders, OrderRequest{CarritoID: cartID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*OrderDTO, error) {
	var out OrderDTO
	if err := c.do(ctx, http.MethodGet, expand(c.routes.Order, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOrdersByUser(ctx context.Context, userID int64) ([]OrderDTO, error) {
	var out []OrderDTO
	if err := c.do(ctx, http.MethodGet, expand(c.routes.OrdersByUser, userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (*OrderDTO, error) {
	var out OrderDTO
	req := OrderStatusRequest{Estado: status}
	if err := c.do(ctx, http.MethodPatch, expand(c.routes.OrderStatus, id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, expand(c.routes.Order, id), nil, nil)
}

func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentDTO, error) {
	var out PaymentDTO
	if err := c.do(ctx, http.MethodPost, c.routes.Payments, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPayment(ctx context.Context, id int64) (*PaymentDTO, error) {
	var out PaymentDTO
	if err := c.do(ctx, http.MethodGet, expand(c.routes.Payment, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]PaymentDTO, error) {
	var out []PaymentDTO
	if err := c.do(ctx, http.MethodGet, expand(c.routes.PaymentsByOrder, orderID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
