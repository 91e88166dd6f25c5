package user

import (
	"context"

	"github.com/fekuna/superfume-sync/internal/remote"
)

type Gateway interface {
	Login(ctx context.Context, req remote.LoginRequest) (*remote.AuthResponse, error)
	Register(ctx context.Context, req remote.RegisterRequest) (*remote.AuthResponse, error)
	ListUsers(ctx context.Context) ([]remote.UserDTO, error)
	UpdateUser(ctx context.Context, id int64, req remote.UpdateUserRequest) (*remote.UserDTO, error)
	ChangeUserRole(ctx context.Context, id int64, roleID int) (*remote.UserDTO, error)
	DeleteUser(ctx context.Context, id int64) error
}
