package remote

import (
	"context"
	"net/http"
)

func (c *Client) ListUsers(ctx context.Context) ([]UserDTO, error) {
	var out []UserDTO
	if err := c.do(ctx, http.MethodGet, c.routes.Users, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*UserDTO, error) {
	var out UserDTO
	if err := c.do(ctx, http.MethodGet, expand(c.routes.User, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*UserDTO, error) {
	var out UserDTO
	if err := c.do(ctx, http.MethodPut, expand(c.routes.User, id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangeUserRole(ctx context.Context, id int64, roleID int) (*UserDTO, error) {
	var out UserDTO
	req := ChangeRoleRequest{RolID: roleID}
	if err := c.do(ctx, http.MethodPut, expand(c.routes.UserRole, id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, expand(c.routes.User, id), nil, nil)
}
