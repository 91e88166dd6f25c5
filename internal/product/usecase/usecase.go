package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fekuna/superfume-sync/config"
	"github.com/fekuna/superfume-sync/internal/apperr"
	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/lock"
	"github.com/fekuna/superfume-sync/internal/model"
	"github.com/fekuna/superfume-sync/internal/product"
	"github.com/fekuna/superfume-sync/internal/product/dto"
	"github.com/fekuna/superfume-sync/internal/validator"
	"github.com/fekuna/superfume-sync/pkg/logger"
	"github.com/fekuna/superfume-sync/pkg/utilities"
)

// Every catalog query is backed by the same remote list, so they share one
// in-flight refresh.
const catalogKey = "catalog"

type productUseCase struct {
	repo    product.Repository
	remote  product.Gateway
	locker  lock.Locker
	ids     *utilities.IDGenerator
	timeout time.Duration
	logger  logger.ZapLogger

	group singleflight.Group
	wg    sync.WaitGroup
	now   func() time.Time
}

func NewProductUseCase(
	repo product.Repository,
	remote product.Gateway,
	locker lock.Locker,
	ids *utilities.IDGenerator,
	cfg *config.SyncConfig,
	log logger.ZapLogger,
) product.UseCase {
	timeout := cfg.RefreshTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &productUseCase{
		repo:    repo,
		remote:  remote,
		locker:  locker,
		ids:     ids,
		timeout: timeout,
		logger:  log,
		now:     time.Now,
	}
}

func (uc *productUseCase) AvailableProducts(ctx context.Context) (*live.Subscription[[]model.Product], error) {
	return uc.watchAndRefresh(ctx, uc.repo.WatchAvailable)
}

func (uc *productUseCase) SearchProducts(ctx context.Context, text string) (*live.Subscription[[]model.Product], error) {
	return uc.watchAndRefresh(ctx, func(ctx context.Context) (*live.Subscription[[]model.Product], error) {
		return uc.repo.WatchSearch(ctx, text)
	})
}

func (uc *productUseCase) ProductsByCategory(ctx context.Context, category string) (*live.Subscription[[]model.Product], error) {
	return uc.watchAndRefresh(ctx, func(ctx context.Context) (*live.Subscription[[]model.Product], error) {
		return uc.repo.WatchByCategory(ctx, category)
	})
}

func (uc *productUseCase) ProductsByGender(ctx context.Context, gender model.Gender) (*live.Subscription[[]model.Product], error) {
	return uc.watchAndRefresh(ctx, func(ctx context.Context) (*live.Subscription[[]model.Product], error) {
		return uc.repo.WatchByGender(ctx, gender)
	})
}

func (uc *productUseCase) AllProducts(ctx context.Context) (*live.Subscription[[]model.Product], error) {
	return uc.watchAndRefresh(ctx, uc.repo.WatchAll)
}

func (uc *productUseCase) watchAndRefresh(
	ctx context.Context,
	open func(context.Context) (*live.Subscription[[]model.Product], error),
) (*live.Subscription[[]model.Product], error) {
	// The subscription loads the cached rows before the refresh starts, so
	// its first value is always the pre-call local state.
	sub, err := open(ctx)
	if err != nil {
		return nil, err
	}
	uc.refreshInBackground(ctx)
	return sub, nil
}

// refreshInBackground outlives the caller: closing a subscription only
// detaches its listener.
func (uc *productUseCase) refreshInBackground(ctx context.Context) {
	bg := context.WithoutCancel(ctx)

	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()

		err := uc.refreshShared(bg)
		switch {
		case err == nil:
		case apperr.IsRemote(err):
			uc.logger.Warn("catalog refresh skipped, serving cached data", zap.Error(err))
		default:
			uc.logger.Error("catalog refresh failed", zap.Error(err))
		}
	}()
}

func (uc *productUseCase) Wait() {
	uc.wg.Wait()
}

// Refresh returns early with ctx's error when ctx ends first; the shared
// refresh itself keeps running for the other callers.
func (uc *productUseCase) Refresh(ctx context.Context) error {
	return uc.refreshShared(ctx)
}

func (uc *productUseCase) refreshShared(ctx context.Context) error {
	uc.wg.Add(1)
	ch := uc.group.DoChan(catalogKey, func() (interface{}, error) {
		// Joined callers share this flight, so it runs on none of their
		// cancellations.
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.timeout)
		defer cancel()
		return nil, uc.refreshAll(fctx)
	})

	done := make(chan error, 1)
	go func() {
		defer uc.wg.Done()
		done <- (<-ch).Err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (uc *productUseCase) refreshAll(ctx context.Context) error {
	start := uc.now()
	perfumes, err := uc.remote.ListPerfumes(ctx)
	if err != nil {
		return fmt.Errorf("list perfumes: %w", err)
	}

	for _, d := range perfumes {
		if err := uc.store(ctx, fromDTO(d, uc.now())); err != nil {
			return err
		}
	}

	uc.logger.Info("catalog refreshed",
		zap.Int("count", len(perfumes)),
		zap.Duration("elapsed", uc.now().Sub(start)),
	)
	return nil
}

func (uc *productUseCase) RefreshProduct(ctx context.Context, id int64) error {
	d, err := uc.remote.GetPerfume(ctx, id)
	if err != nil {
		return fmt.Errorf("get perfume %d: %w", id, err)
	}
	return uc.store(ctx, fromDTO(*d, uc.now()))
}

func (uc *productUseCase) store(ctx context.Context, p *model.Product) error {
	return uc.withLock(ctx, p.ID, func() error {
		_, err := uc.repo.Upsert(ctx, p)
		return err
	})
}

func (uc *productUseCase) withLock(ctx context.Context, id int64, fn func() error) error {
	unlock, err := uc.locker.Lock(ctx, lock.ProductKey(id))
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

// GetProduct serves the local row and falls back to the backend on a miss.
func (uc *productUseCase) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	d, err := uc.remote.GetPerfume(ctx, id)
	if err != nil {
		if apperr.StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("perfume %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get perfume %d: %w", id, err)
	}
	p = fromDTO(*d, uc.now())
	if err := uc.store(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProduct stores the product under a provisional id and pushes it to
// the backend. On a push failure the stored product is returned along with
// the error; it stays in the local catalog.
func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	in := *input
	in.Name, in.Brand = strings.TrimSpace(in.Name), strings.TrimSpace(in.Brand)
	if err := validator.Struct(&in); err != nil {
		return nil, err
	}
	input = &in

	p := &model.Product{
		ID:          uc.ids.Next(),
		Name:        input.Name,
		Brand:       input.Brand,
		Price:       input.Price,
		Description: input.Description,
		ImageURI:    input.ImageURI,
		Gender:      input.Gender,
		Category:    input.Category,
		Notes:       input.Notes,
		Profile:     input.Profile,
		Size:        input.Size,
		Stock:       input.Stock,
		IsAvailable: input.Stock > 0,
		UpdatedAt:   uc.now().UnixMilli(),
	}
	if err := uc.store(ctx, p); err != nil {
		return nil, err
	}

	created, err := uc.remote.CreatePerfume(ctx, toRequest(p))
	if err != nil {
		uc.logger.Warn("perfume kept locally, push failed", zap.Int64("perfume_id", p.ID), zap.Error(err))
		return p, fmt.Errorf("create perfume: %w", err)
	}

	if created != nil && created.ID != 0 && created.ID != p.ID {
		provisional := p.ID
		if err := uc.withLock(ctx, provisional, func() error {
			return uc.repo.ReplaceID(ctx, provisional, created.ID)
		}); err != nil {
			return p, err
		}
		p.ID = created.ID
		uc.logger.Debug("perfume id assigned by server",
			zap.Int64("provisional_id", provisional),
			zap.Int64("perfume_id", p.ID),
		)
	}
	return p, nil
}

// UpdateProduct writes locally first, then pushes. The local row stays
// authoritative until the next refresh even when the push fails.
func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	in := *input
	in.Name, in.Brand = strings.TrimSpace(in.Name), strings.TrimSpace(in.Brand)
	if err := validator.Struct(&in); err != nil {
		return nil, err
	}
	input = &in

	var p *model.Product
	err := uc.withLock(ctx, input.ID, func() error {
		existing, err := uc.repo.GetByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("perfume %d: %w", input.ID, apperr.ErrNotFound)
		}

		existing.Name = input.Name
		existing.Brand = input.Brand
		existing.Price = input.Price
		existing.Description = input.Description
		existing.ImageURI = input.ImageURI
		existing.Gender = input.Gender
		existing.Category = input.Category
		existing.Notes = input.Notes
		existing.Profile = input.Profile
		existing.Size = input.Size
		existing.Stock = input.Stock
		existing.IsAvailable = input.IsAvailable && input.Stock > 0
		existing.UpdatedAt = uc.now().UnixMilli()

		if _, err := uc.repo.Upsert(ctx, existing); err != nil {
			return err
		}
		p = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := uc.remote.UpdatePerfume(ctx, p.ID, toRequest(p)); err != nil {
		return p, fmt.Errorf("update perfume %d: %w", p.ID, err)
	}
	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id int64) error {
	if err := uc.withLock(ctx, id, func() error {
		return uc.repo.Delete(ctx, id)
	}); err != nil {
		return err
	}

	if err := uc.remote.DeletePerfume(ctx, id); err != nil {
		// Already gone on the server.
		if apperr.StatusCode(err) == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("delete perfume %d: %w", id, err)
	}
	return nil
}

// UpdateStock is a local adjustment. The next refresh brings the server's
// figure back.
func (uc *productUseCase) UpdateStock(ctx context.Context, id int64, stock int) error {
	if stock < 0 {
		return apperr.Validation("stock", "must not be negative")
	}
	return uc.withLock(ctx, id, func() error {
		return uc.repo.UpdateStock(ctx, id, stock)
	})
}
