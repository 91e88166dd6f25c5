package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fekuna/superfume-sync/internal/apperr"
	"github.com/fekuna/superfume-sync/internal/live"
	"github.com/fekuna/superfume-sync/internal/model"
	"github.com/fekuna/superfume-sync/internal/product/dto"
	"github.com/fekuna/superfume-sync/internal/schema"
	"github.com/fekuna/superfume-sync/pkg/database"
)

const productColumns = `id, name, brand, price, description, image_uri, gender, category,
	notes, profile, size, stock, is_available, updated_at`

type SQLiteRepository struct {
	DB  *sqlx.DB
	hub *live.Hub
}

func NewSQLiteRepository(db *sqlx.DB, hub *live.Hub) *SQLiteRepository {
	return &SQLiteRepository{DB: db, hub: hub}
}

// Upsert inserts p or replaces the stored row with the same id as a whole.
func (r *SQLiteRepository) Upsert(ctx context.Context, p *model.Product) (int64, error) {
	if p.ID == 0 {
		return 0, apperr.Validation("id", "required")
	}
	p.Normalize()
	if p.UpdatedAt == 0 {
		p.UpdatedAt = time.Now().UnixMilli()
	}

	query := `
		INSERT INTO perfumes (` + productColumns + `)
		VALUES (
			:id, :name, :brand, :price, :description, :image_uri, :gender, :category,
			:notes, :profile, :size, :stock, :is_available, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			brand = excluded.brand,
			price = excluded.price,
			description = excluded.description,
			image_uri = excluded.image_uri,
			gender = excluded.gender,
			category = excluded.category,
			notes = excluded.notes,
			profile = excluded.profile,
			size = excluded.size,
			stock = excluded.stock,
			is_available = excluded.is_available,
			updated_at = excluded.updated_at
	`
	if _, err := r.DB.NamedExecContext(ctx, query, p); err != nil {
		return 0, apperr.Storage("upsert perfume", err)
	}
	r.hub.Notify(schema.TablePerfumes)
	return p.ID, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	query := `SELECT ` + productColumns + ` FROM perfumes WHERE id = ? LIMIT 1`
	if err := r.DB.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage("get perfume", err)
	}
	return &p, nil
}

func (r *SQLiteRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM perfumes WHERE id IN (?)`, ids)
	if err != nil {
		return nil, apperr.Storage("get perfumes", err)
	}
	var products []model.Product
	if err := r.DB.SelectContext(ctx, &products, r.DB.Rebind(query), args...); err != nil {
		return nil, apperr.Storage("get perfumes", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *SQLiteRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	if f == nil {
		f = &dto.ProductFilters{}
	}

	conditions := []string{}
	args := map[string]interface{}{}

	if f.OnlyAvailable {
		conditions = append(conditions, "is_available = 1")
	}
	if q := strings.TrimSpace(f.SearchQuery); q != "" {
		conditions = append(conditions, `(fold(name) LIKE :search ESCAPE '\' OR fold(brand) LIKE :search ESCAPE '\')`)
		args["search"] = "%" + escapeLike(database.Fold(q)) + "%"
	}
	if f.Category != "" {
		conditions = append(conditions, "category = :category")
		args["category"] = f.Category
	}
	if f.Gender != "" {
		conditions = append(conditions, "gender = :gender")
		args["gender"] = string(f.Gender)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Count. Rows are never held open across statements: the store runs on
	// a single connection.
	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM perfumes"+whereClause, args)
	if err != nil {
		return nil, 0, apperr.Storage("count perfumes", err)
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, apperr.Storage("count perfumes", err)
	}

	orderBy := "name COLLATE NOCASE ASC, id ASC"
	if f.SortBy != "" {
		switch f.SortBy {
		case "price":
			orderBy = "price"
		case "brand":
			orderBy = "brand COLLATE NOCASE"
		case "updated_at":
			orderBy = "updated_at"
		default:
			orderBy = "name COLLATE NOCASE"
		}
		if strings.ToLower(f.SortOrder) == "desc" {
			orderBy += " DESC, id DESC"
		} else {
			orderBy += " ASC, id ASC"
		}
	}

	query := fmt.Sprintf("SELECT %s FROM perfumes%s ORDER BY %s", productColumns, whereClause, orderBy)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	listQuery, listArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, 0, apperr.Storage("list perfumes", err)
	}
	products := []model.Product{}
	if err := r.DB.SelectContext(ctx, &products, r.DB.Rebind(listQuery), listArgs...); err != nil {
		return nil, 0, apperr.Storage("list perfumes", err)
	}
	return products, count, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM perfumes WHERE id = ?", id)
	if err != nil {
		return apperr.Storage("delete perfume", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		r.hub.Notify(schema.TablePerfumes)
	}
	return nil
}

// UpdateStock sets the stock of a product and re-derives its availability.
// Unknown ids are reported as apperr.ErrNotFound.
func (r *SQLiteRepository) UpdateStock(ctx context.Context, id int64, stock int) error {
	if stock < 0 {
		stock = 0
	}
	query := `
		UPDATE perfumes
		SET stock = ?, is_available = CASE WHEN ? > 0 THEN 1 ELSE 0 END, updated_at = ?
		WHERE id = ?
	`
	res, err := r.DB.ExecContext(ctx, query, stock, stock, time.Now().UnixMilli(), id)
	if err != nil {
		return apperr.Storage("update stock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage("update stock", err)
	}
	if n == 0 {
		return fmt.Errorf("perfume %d: %w", id, apperr.ErrNotFound)
	}
	r.hub.Notify(schema.TablePerfumes)
	return nil
}

func (r *SQLiteRepository) ReplaceID(ctx context.Context, oldID, newID int64) error {
	if oldID == newID {
		return nil
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Storage("replace perfume id", err)
	}
	defer tx.Rollback()

	// The server copy may already have arrived through a refresh.
	if _, err := tx.ExecContext(ctx, "DELETE FROM perfumes WHERE id = ?", newID); err != nil {
		return apperr.Storage("replace perfume id", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE perfumes SET id = ? WHERE id = ?", newID, oldID); err != nil {
		return apperr.Storage("replace perfume id", err)
	}
	// A user with lines for both ids keeps the larger quantity.
	mergeQuery := `
		UPDATE cart_items
		SET quantity = max(quantity, (
			SELECT c.quantity FROM cart_items c
			WHERE c.user_id = cart_items.user_id AND c.perfume_id = ?
		))
		WHERE perfume_id = ? AND EXISTS (
			SELECT 1 FROM cart_items c
			WHERE c.user_id = cart_items.user_id AND c.perfume_id = ?
		)
	`
	if _, err := tx.ExecContext(ctx, mergeQuery, oldID, newID, oldID); err != nil {
		return apperr.Storage("replace perfume id", err)
	}
	deleteDupes := `
		DELETE FROM cart_items
		WHERE perfume_id = ? AND EXISTS (
			SELECT 1 FROM cart_items c
			WHERE c.user_id = cart_items.user_id AND c.perfume_id = ?
		)
	`
	if _, err := tx.ExecContext(ctx, deleteDupes, oldID, newID); err != nil {
		return apperr.Storage("replace perfume id", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE cart_items SET perfume_id = ? WHERE perfume_id = ?", newID, oldID); err != nil {
		return apperr.Storage("replace perfume id", err)
	}
	if err := tx.Commit(); err != nil {
		return apperr.Storage("replace perfume id", err)
	}

	r.hub.Notify(schema.TablePerfumes, schema.TableCartItems)
	return nil
}

func (r *SQLiteRepository) WatchAvailable(ctx context.Context) (*live.Subscription[[]model.Product], error) {
	return r.watch(ctx, &dto.ProductFilters{OnlyAvailable: true})
}

func (r *SQLiteRepository) WatchSearch(ctx context.Context, text string) (*live.Subscription[[]model.Product], error) {
	return r.watch(ctx, &dto.ProductFilters{SearchQuery: text})
}

func (r *SQLiteRepository) WatchByCategory(ctx context.Context, category string) (*live.Subscription[[]model.Product], error) {
	return r.watch(ctx, &dto.ProductFilters{Category: category})
}

func (r *SQLiteRepository) WatchByGender(ctx context.Context, gender model.Gender) (*live.Subscription[[]model.Product], error) {
	return r.watch(ctx, &dto.ProductFilters{Gender: gender})
}

func (r *SQLiteRepository) WatchAll(ctx context.Context) (*live.Subscription[[]model.Product], error) {
	return r.watch(ctx, &dto.ProductFilters{})
}

func (r *SQLiteRepository) watch(ctx context.Context, f *dto.ProductFilters) (*live.Subscription[[]model.Product], error) {
	return live.Watch(ctx, r.hub, []string{schema.TablePerfumes}, func(ctx context.Context) ([]model.Product, error) {
		products, _, err := r.FindAll(ctx, f)
		return products, err
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
