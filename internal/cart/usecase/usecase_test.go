package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/superfume-sync/internal/apperr"
	"github.com/fekuna/superfume-sync/internal/cart"
	"github.com/fekuna/superfume-sync/internal/cart/dto"
	cartrepo "github.com/fekuna/superfume-sync/internal/cart/repository"
	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/lock"
	"github.com/fekuna/superfume-sync/internal/model"
	productrepo "github.com/fekuna/superfume-sync/internal/product/repository"
	"github.com/fekuna/superfume-sync/internal/remote"
	"github.com/fekuna/superfume-sync/internal/testutil"
	"github.com/fekuna/superfume-sync/pkg/logger"
)

type fakeGateway struct {
	mu sync.Mutex

	serverCart remote.CartDTO
	orderTotal float64
	failOn     string

	cleared  []int64
	added    []remote.CartItemRequest
	orders   []int64
	payments []remote.PaymentRequest
}

var errBackend = &apperr.NetworkError{Err: errors.New("connection refused")}

func (g *fakeGateway) fail(step string) error {
	if g.failOn == step {
		return errBackend
	}
	return nil
}

func (g *fakeGateway) GetCart(ctx context.Context, userID int64) (*remote.CartDTO, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("get"); err != nil {
		return nil, err
	}
	c := g.serverCart
	c.UsuarioID = userID
	return &c, nil
}

func (g *fakeGateway) ClearCart(ctx context.Context, cartID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cleared = append(g.cleared, cartID)
	return g.fail("clear")
}

func (g *fakeGateway) AddCartItem(ctx context.Context, cartID int64, req remote.CartItemRequest) (*remote.CartDTO, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("add"); err != nil {
		return nil, err
	}
	g.added = append(g.added, req)
	return &g.serverCart, nil
}

func (g *fakeGateway) CreateOrder(ctx context.Context, cartID int64) (*remote.OrderDTO, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("order"); err != nil {
		return nil, err
	}
	g.orders = append(g.orders, cartID)
	return &remote.OrderDTO{ID: 300, Total: g.orderTotal, Estado: "PENDIENTE"}, nil
}

func (g *fakeGateway) CreatePayment(ctx context.Context, req remote.PaymentRequest) (*remote.PaymentDTO, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("pay"); err != nil {
		return nil, err
	}
	g.payments = append(g.payments, req)
	return &remote.PaymentDTO{ID: 900, PedidoID: req.PedidoID, Monto: req.Monto, Estado: "COMPLETADO"}, nil
}

type fixture struct {
	uc       cart.UseCase
	products *productrepo.SQLiteRepository
	lines    *cartrepo.SQLiteRepository
	gw       *fakeGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	hub := live.NewHub()
	products := productrepo.NewSQLiteRepository(db, hub)
	lines := cartrepo.NewSQLiteRepository(db, hub)
	gw := &fakeGateway{serverCart: remote.CartDTO{ID: 77}}
	return &fixture{
		uc:       NewCartUseCase(lines, products, gw, lock.NewKeyedMutex(), hub, logger.NewNop()),
		products: products,
		lines:    lines,
		gw:       gw,
	}
}

func (f *fixture) seed(t *testing.T, id, price int64, stock int) {
	t.Helper()
	_, err := f.products.Upsert(context.Background(), &model.Product{
		ID: id, Name: "Perfume", Brand: "Marca", Price: price,
		Stock: stock, IsAvailable: stock > 0,
	})
	require.NoError(t, err)
}

func TestAddToCartAccumulatesQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, 1, 10000, 5)

	require.NoError(t, f.uc.AddToCart(ctx, 7, 1, 2))
	require.NoError(t, f.uc.AddToCart(ctx, 7, 1, 1))

	line, err := f.lines.GetLine(ctx, 7, 1)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, 3, line.Quantity)
}

func TestAddToCartRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, 1, 10000, 2)

	tests := []struct {
		name      string
		productID int64
		qty       int
	}{
		{"zero quantity", 1, 0},
		{"negative quantity", 1, -3},
		{"unknown product", 404, 1},
		{"over stock", 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.uc.AddToCart(ctx, 7, tt.productID, tt.qty)
			assert.True(t, apperr.IsValidation(err), "got %v", err)
		})
	}

	lines, err := f.lines.ListForUser(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestAddToCartStockCountsExistingLine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, 1, 10000, 3)

	require.NoError(t, f.uc.AddToCart(ctx, 7, 1, 2))
	err := f.uc.AddToCart(ctx, 7, 1, 2)
	assert.True(t, apperr.IsValidation(err))

	line, err := f.lines.GetLine(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, 1, 5000, 100)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, f.uc.AddToCart(ctx, 7, 1, 1))
		}()
	}
	wg.Wait()

	line, err := f.lines.GetLine(ctx, 7, 1)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, 20, line.Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, 1, 10000, 4)
	require.NoError(t, f.uc.AddToCart(ctx, 7, 1, 1))

	require.NoError(t, f.uc.UpdateQuantity(ctx, 7, 1, 4))
	line, err := f.lines.GetLine(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)

	assert.True(t, apperr.IsValidation(f.uc.UpdateQuantity(ctx, 7, 1, 5)))
	require.NoError(t, f.uc.UpdateQuantity(ctx, 7, 2, 1))
	missing, err := f.lines.GetLine(ctx, 7, 2)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, f.uc.UpdateQuantity(ctx, 7, 1, 0))
	line, err = f.lines.GetLine(ctx, 7, 1)
	require.NoError(t, err)
	assert.Nil(t, line)
}

func TestTotalsSkipMissingProducts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, 1, 12990, 10)
	f.seed(t, 2, 45000, 10)

	require.NoError(t, f.uc.AddToCart(ctx, 7, 1, 2))
	require.NoError(t, f.uc.AddToCart(ctx, 7, 2, 1))
	_, err := f.lines.Upsert(ctx, &model.CartLine{UserID: 7, ProductID: 99, Quantity: 5})
	require.NoError(t, err)

	totals, err := f.uc.ComputeTotals(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, dto.Totals{LineCount: 2, TotalQuantity: 3, TotalPrice: 2*12990 + 45000}, *totals)
}

func TestEmptyCartTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	totals, err := f.uc.ComputeTotals(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, dto.Totals{}, *totals)

	sub, err := f.uc.WatchTotals(ctx, 7)
	require.NoError(t, err)
	defer sub.Close()
	assert.Equal(t, dto.Totals{}, testutil.Receive(t, sub.C()))
}

func TestWatchTotalsFollowsPriceChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, 1, 1000, 10)
	require.NoError(t, f.uc.AddToCart(ctx, 7, 1, 3))

	sub, err := f.uc.WatchTotals(ctx, 7)
	require.NoError(t, err)
	defer sub.Close()
	assert.Equal(t, int64(3000), testutil.Receive(t, sub.C()).TotalPrice)

	f.seed(t, 1, 2000, 10)
	got := testutil.ReceiveUntil(t, sub.C(), func(v dto.Totals) bool { return v.TotalPrice != 3000 })
	assert.Equal(t, int64(6000), got.TotalPrice)

	require.NoError(t, f.uc.RemoveFromCart(ctx, 7, 1))
	got = testutil.ReceiveUntil(t, sub.C(), func(v dto.Totals) bool { return v.LineCount == 0 })
	assert.Equal(t, int64(0), got.TotalPrice)
}

func TestWatchCartEmitsItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, 1, 1000, 10)

	sub, err := f.uc.WatchCart(ctx, 7)
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, testutil.Receive(t, sub.C()))

	require.NoError(t, f.uc.AddToCart(ctx, 7, 1, 2))
	items := testutil.ReceiveUntil(t, sub.C(), func(v []model.CartItem) bool { return len(v) == 1 })
	assert.Equal(t, int64(2000), items[0].Subtotal())
}

func TestCheckoutPushesCartAndClearsLocally(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, 1, 10000, 10)
	f.seed(t, 2, 5000, 10)
	require.NoError(t, f.uc.AddToCart(ctx, 7, 1, 2))
	require.NoError(t, f.uc.AddToCart(ctx, 7, 2, 1))
	f.gw.serverCart.Items = []remote.CartItemDTO{{ID: 1, PerfumeID: 9, Cantidad: 1}}

	res, err := f.uc.Checkout(ctx, 7, "TARJETA")
	require.NoError(t, err)

	assert.Equal(t, []int64{77}, f.gw.cleared)
	assert.ElementsMatch(t, []remote.CartItemRequest{
		{PerfumeID: 1, Cantidad: 2},
		{PerfumeID: 2, Cantidad: 1},
	}, f.gw.added)
	require.Len(t, f.gw.payments, 1)
	assert.Equal(t, remote.PaymentRequest{PedidoID: 300, Monto: 25000, MetodoPago: "TARJETA"}, f.gw.payments[0])
	assert.Equal(t, &dto.CheckoutResult{
		OrderID: 300, PaymentID: 900, Total: 25000,
		OrderStatus: "PENDIENTE", PaymentStatus: "COMPLETADO",
	}, res)

	lines, err := f.lines.ListForUser(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCheckoutPaysServerTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, 1, 10000, 10)
	require.NoError(t, f.uc.AddToCart(ctx, 7, 1, 1))
	f.gw.orderTotal = 11900

	res, err := f.uc.Checkout(ctx, 7, "EFECTIVO")
	require.NoError(t, err)
	assert.Equal(t, int64(11900), res.Total)
	assert.Empty(t, f.gw.cleared)
	assert.Equal(t, float64(11900), f.gw.payments[0].Monto)
}

func TestCheckoutFailureKeepsLocalCart(t *testing.T) {
	for _, step := range []string{"get", "add", "order", "pay"} {
		t.Run(step, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			f.seed(t, 1, 10000, 10)
			require.NoError(t, f.uc.AddToCart(ctx, 7, 1, 2))
			f.gw.failOn = step

			res, err := f.uc.Checkout(ctx, 7, "TARJETA")
			assert.Nil(t, res)
			var netErr *apperr.NetworkError
			assert.ErrorAs(t, err, &netErr)

			line, err := f.lines.GetLine(ctx, 7, 1)
			require.NoError(t, err)
			require.NotNil(t, line)
			assert.Equal(t, 2, line.Quantity)
		})
	}
}

func TestCheckoutValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.uc.Checkout(ctx, 7, "TARJETA")
	var vErr *apperr.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "cart", vErr.Field)

	f.seed(t, 1, 10000, 10)
	require.NoError(t, f.uc.AddToCart(ctx, 7, 1, 1))
	_, err = f.uc.Checkout(ctx, 7, "  ")
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, f.gw.orders)
}
