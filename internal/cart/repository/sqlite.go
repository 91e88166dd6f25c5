package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/superfume-sync/internal/apperr"
	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/model"
	"github.com/fekuna/superfume-sync/internal/schema"
)

type SQLiteRepository struct {
	DB  *sqlx.DB
	hub *live.Hub
}

func NewSQLiteRepository(db *sqlx.DB, hub *live.Hub) *SQLiteRepository {
	return &SQLiteRepository{DB: db, hub: hub}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, line *model.CartLine) (int64, error) {
	if line.Quantity < 1 {
		return 0, apperr.Validation("quantity", "must be at least 1")
	}
	if line.AddedAt == 0 {
		line.AddedAt = time.Now().UnixMilli()
	}

	query := `
		INSERT INTO cart_items (user_id, perfume_id, quantity, added_at)
		VALUES (:user_id, :perfume_id, :quantity, :added_at)
		ON CONFLICT (user_id, perfume_id) DO UPDATE SET quantity = excluded.quantity
		RETURNING id
	`
	q, args, err := sqlx.Named(query, line)
	if err != nil {
		return 0, apperr.Storage("upsert cart line", err)
	}
	var id int64
	if err := r.DB.GetContext(ctx, &id, r.DB.Rebind(q), args...); err != nil {
		return 0, apperr.Storage("upsert cart line", err)
	}
	line.ID = id

	r.hub.Notify(schema.TableCartItems)
	return id, nil
}

func (r *SQLiteRepository) GetLine(ctx context.Context, userID, productID int64) (*model.CartLine, error) {
	var line model.CartLine
	query := `SELECT id, user_id, perfume_id, quantity, added_at FROM cart_items WHERE user_id = ? AND perfume_id = ? LIMIT 1`
	if err := r.DB.GetContext(ctx, &line, query, userID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage("get cart line", err)
	}
	return &line, nil
}

func (r *SQLiteRepository) ListForUser(ctx context.Context, userID int64) ([]model.CartLine, error) {
	lines := []model.CartLine{}
	query := `SELECT id, user_id, perfume_id, quantity, added_at FROM cart_items WHERE user_id = ? ORDER BY added_at, id`
	if err := r.DB.SelectContext(ctx, &lines, query, userID); err != nil {
		return nil, apperr.Storage("list cart lines", err)
	}
	return lines, nil
}

func (r *SQLiteRepository) ListItemsForUser(ctx context.Context, userID int64) ([]model.CartItem, error) {
	items := []model.CartItem{}
	query := `
		SELECT c.id, c.user_id, c.perfume_id, c.quantity, c.added_at,
			p.name, p.brand, p.price, p.image_uri, p.stock
		FROM cart_items c
		JOIN perfumes p ON p.id = c.perfume_id
		WHERE c.user_id = ?
		ORDER BY c.added_at, c.id
	`
	if err := r.DB.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, apperr.Storage("list cart items", err)
	}
	return items, nil
}

func (r *SQLiteRepository) DeleteLine(ctx context.Context, userID, productID int64) error {
	return r.exec(ctx, "delete cart line", `DELETE FROM cart_items WHERE user_id = ? AND perfume_id = ?`, userID, productID)
}

func (r *SQLiteRepository) ClearForUser(ctx context.Context, userID int64) error {
	return r.exec(ctx, "clear cart", `DELETE FROM cart_items WHERE user_id = ?`, userID)
}

func (r *SQLiteRepository) exec(ctx context.Context, op, query string, args ...interface{}) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.Storage(op, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.hub.Notify(schema.TableCartItems)
	}
	return nil
}

func (r *SQLiteRepository) WatchForUser(ctx context.Context, userID int64) (*live.Subscription[[]model.CartLine], error) {
	return live.Watch(ctx, r.hub, []string{schema.TableCartItems}, func(ctx context.Context) ([]model.CartLine, error) {
		return r.ListForUser(ctx, userID)
	})
}

// WatchItemsForUser also follows the products table, so price or name
// changes show up in the joined view.
func (r *SQLiteRepository) WatchItemsForUser(ctx context.Context, userID int64) (*live.Subscription[[]model.CartItem], error) {
	tables := []string{schema.TableCartItems, schema.TablePerfumes}
	return live.Watch(ctx, r.hub, tables, func(ctx context.Context) ([]model.CartItem, error) {
		return r.ListItemsForUser(ctx, userID)
	})
}
