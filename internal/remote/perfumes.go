package remote

import (
	"context"
	"net/http"
)

func (c *Client) ListPerfumes(ctx context.Context) ([]PerfumeDTO, error) {
	var out []PerfumeDTO
	if err := c.do(ctx, http.MethodGet, c.routes.Perfumes, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetPerfume(ctx context.Context, id int64) (*PerfumeDTO, error) {
	var out PerfumeDTO
	if err := c.do(ctx, http.MethodGet, expand(c.routes.Perfume, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePerfume(ctx context.Context, req PerfumeRequest) (*PerfumeDTO, error) {
	var out PerfumeDTO
	if err := c.do(ctx, http.MethodPost, c.routes.Perfumes, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePerfume(ctx context.Context, id int64, req PerfumeRequest) (*PerfumeDTO, error) {
	var out PerfumeDTO
	if err := c.do(ctx, http.MethodPut, expand(c.routes.Perfume, id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePerfume(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, expand(c.routes.Perfume, id), nil, nil)
}
