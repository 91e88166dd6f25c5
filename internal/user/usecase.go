package user

import (
	"context"

	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/model"
	"github.com/fekuna/superfume-sync/internal/user/dto"
)

type UseCase interface {
	Login(ctx context.Context, email, password string) (*dto.Session, error)
	Register(ctx context.Context, input *dto.RegisterInput) (*dto.Session, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (*model.User, error)
	UpdateProfile(ctx context.Context, input *dto.UpdateProfileInput) (*model.User, error)

	// Admin ops
	ListUsers(ctx context.Context) ([]model.User, error)
	WatchUsers(ctx context.Context) (*live.Subscription[[]model.User], error)
	ChangeRole(ctx context.Context, userID int64, roleID int) (*model.User, error)
	DeleteUser(ctx context.Context, userID int64) error

	// Describe turns an error from this usecase into a localized message.
	Describe(err error) string
}
