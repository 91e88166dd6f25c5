package remote

import (
	"context"
	"net/http"
)

// Login posts the credentials. A 2xx with success=false is still returned as a
// payload; interpreting it is up to the caller.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, c.routes.Login, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, c.routes.Register, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
