package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fekuna/superfume-sync/internal/apperr"
	"github.com/fekuna/superfume-sync/internal/cart"
	"github.com/fekuna/superfume-sync/internal/cart/dto"
	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/lock"
	"github.com/fekuna/superfume-sync/internal/model"
	"github.com/fekuna/superfume-sync/internal/remote"
	"github.com/fekuna/superfume-sync/internal/schema"
	"github.com/fekuna/superfume-sync/pkg/logger"
)

type cartUseCase struct {
	repo     cart.Repository
	products cart.ProductReader
	remote   cart.Gateway
	locker   lock.Locker
	hub      *live.Hub
	logger   logger.ZapLogger
}

func NewCartUseCase(
	repo cart.Repository,
	products cart.ProductReader,
	remote cart.Gateway,
	locker lock.Locker,
	hub *live.Hub,
	log logger.ZapLogger,
) cart.UseCase {
	return &cartUseCase{
		repo:     repo,
		products: products,
		remote:   remote,
		locker:   locker,
		hub:      hub,
		logger:   log,
	}
}

func (uc *cartUseCase) withLine(ctx context.Context, userID, productID int64, fn func() error) error {
	unlock, err := uc.locker.Lock(ctx, lock.CartKey(userID, productID))
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

func (uc *cartUseCase) AddToCart(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity < 1 {
		return apperr.Validation("quantity", "must be at least 1")
	}

	return uc.withLine(ctx, userID, productID, func() error {
		p, err := uc.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return apperr.Validation("product", "unknown product")
		}

		line, err := uc.repo.GetLine(ctx, userID, productID)
		if err != nil {
			return err
		}
		if line == nil {
			line = &model.CartLine{UserID: userID, ProductID: productID}
		}
		line.Quantity += quantity

		if line.Quantity > p.Stock {
			return apperr.Validation("quantity", fmt.Sprintf("only %d in stock", p.Stock))
		}
		_, err = uc.repo.Upsert(ctx, line)
		return err
	})
}

func (uc *cartUseCase) UpdateQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity <= 0 {
		return uc.RemoveFromCart(ctx, userID, productID)
	}

	return uc.withLine(ctx, userID, productID, func() error {
		line, err := uc.repo.GetLine(ctx, userID, productID)
		if err != nil {
			return err
		}
		// Nothing to update; the line may have been removed meanwhile.
		if line == nil {
			return nil
		}

		p, err := uc.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p != nil && quantity > p.Stock {
			return apperr.Validation("quantity", fmt.Sprintf("only %d in stock", p.Stock))
		}

		line.Quantity = quantity
		_, err = uc.repo.Upsert(ctx, line)
		return err
	})
}

func (uc *cartUseCase) RemoveFromCart(ctx context.Context, userID, productID int64) error {
	return uc.withLine(ctx, userID, productID, func() error {
		return uc.repo.DeleteLine(ctx, userID, productID)
	})
}

func (uc *cartUseCase) ClearCart(ctx context.Context, userID int64) error {
	return uc.repo.ClearForUser(ctx, userID)
}

func (uc *cartUseCase) ComputeTotals(ctx context.Context, userID int64) (*dto.Totals, error) {
	items, err := uc.repo.ListItemsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals := dto.TotalsOf(items)
	return &totals, nil
}

func (uc *cartUseCase) WatchCart(ctx context.Context, userID int64) (*live.Subscription[[]model.CartItem], error) {
	return uc.repo.WatchItemsForUser(ctx, userID)
}

func (uc *cartUseCase) WatchTotals(ctx context.Context, userID int64) (*live.Subscription[dto.Totals], error) {
	tables := []string{schema.TableCartItems, schema.TablePerfumes}
	return live.Watch(ctx, uc.hub, tables, func(ctx context.Context) (dto.Totals, error) {
		items, err := uc.repo.ListItemsForUser(ctx, userID)
		if err != nil {
			return dto.Totals{}, err
		}
		return dto.TotalsOf(items), nil
	})
}

func (uc *cartUseCase) Checkout(ctx context.Context, userID int64, paymentMethod string) (*dto.CheckoutResult, error) {
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		return nil, apperr.Validation("payment_method", "required")
	}

	items, err := uc.repo.ListItemsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.Validation("cart", "empty")
	}
	totals := dto.TotalsOf(items)

	serverCart, err := uc.remote.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get server cart: %w", err)
	}
	// The server cart is rebuilt from the local one.
	if len(serverCart.Items) > 0 {
		if err := uc.remote.ClearCart(ctx, serverCart.ID); err != nil {
			return nil, fmt.Errorf("clear server cart %d: %w", serverCart.ID, err)
		}
	}
	for _, it := range items {
		req := remote.CartItemRequest{PerfumeID: it.ProductID, Cantidad: it.Quantity}
		if _, err := uc.remote.AddCartItem(ctx, serverCart.ID, req); err != nil {
			return nil, fmt.Errorf("push cart line for perfume %d: %w", it.ProductID, err)
		}
	}

	order, err := uc.remote.CreateOrder(ctx, serverCart.ID)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	amount := decimal.NewFromInt(totals.TotalPrice)
	if order.Total > 0 {
		amount = decimal.NewFromFloat(order.Total)
	}
	payment, err := uc.remote.CreatePayment(ctx, remote.PaymentRequest{
		PedidoID:   order.ID,
		Monto:      amount.InexactFloat64(),
		MetodoPago: paymentMethod,
	})
	if err != nil {
		return nil, fmt.Errorf("pay order %d: %w", order.ID, err)
	}

	if err := uc.repo.ClearForUser(ctx, userID); err != nil {
		return nil, err
	}

	uc.logger.Info("checkout completed",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", order.ID),
		zap.Int64("payment_id", payment.ID),
		zap.Int("lines", totals.LineCount),
	)
	return &dto.CheckoutResult{
		OrderID:       order.ID,
		PaymentID:     payment.ID,
		Total:         amount.Round(0).IntPart(),
		OrderStatus:   order.Estado,
		PaymentStatus: payment.Estado,
	}, nil
}
