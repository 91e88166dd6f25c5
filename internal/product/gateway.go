package product

import (
	"context"

	"github.com/fekuna/superfume-sync/internal/remote"
)

// Gateway is the part of the backend the catalog talks to.
type Gateway interface {
	ListPerfumes(ctx context.Context) ([]remote.PerfumeDTO, error)
	GetPerfume(ctx context.Context, id int64) (*remote.PerfumeDTO, error)
	CreatePerfume(ctx context.Context, req remote.PerfumeRequest) (*remote.PerfumeDTO, error)
	UpdatePerfume(ctx context.Context, id int64, req remote.PerfumeRequest) (*remote.PerfumeDTO, error)
	DeletePerfume(ctx context.Context, id int64) error
}
