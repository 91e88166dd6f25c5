package user

import (
	"context"

	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/model"
)

type Repository interface {
	// Upsert replaces the row with u.ID. A different row holding the same
	// email is dropped so the email stays unique. An empty PasswordHash
	// keeps the stored one.
	Upsert(ctx context.Context, u *model.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, id int64) error
	WatchAll(ctx context.Context) (*live.Subscription[[]model.User], error)
}
